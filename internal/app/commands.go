package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"storechat/internal/store"
	"storechat/internal/support"
	"storechat/internal/types"
)

const (
	defaultRequestTimeout = 10 * time.Second
	spinnerInterval       = 100 * time.Millisecond
)

// tick is tea.Tick; tests swap it for an immediate variant.
var tick = tea.Tick

func pollTickCmd(generation uint64, interval time.Duration) tea.Cmd {
	return tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{generation: generation}
	})
}

func spinnerTickCmd() tea.Cmd {
	return tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func redrawAfterCmd(d time.Duration) tea.Cmd {
	if d <= 0 {
		return nil
	}
	return tick(d, func(time.Time) tea.Msg {
		return redrawMsg{}
	})
}

func followUpCmd(f *support.FollowUp) tea.Cmd {
	if f == nil {
		return nil
	}
	followUp := *f
	return tick(followUp.Delay, func(time.Time) tea.Msg {
		return followUpMsg{followUp: followUp}
	})
}

func fetchMessagesCmd(backend support.Backend, ticket support.FetchTicket, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msgs, err := backend.FetchMessages(ctx)
		return fetchResultMsg{ticket: ticket, messages: msgs, err: err}
	}
}

func sendMessageCmd(backend support.Backend, ticket support.SendTicket, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := backend.SendMessage(ctx, ticket.Request)
		return sendResultMsg{ticket: ticket, err: err}
	}
}

func lookupOrderCmd(backend support.Backend, ticket support.LookupTicket, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		orders, err := backend.ListOrders(ctx)
		return lookupResultMsg{ticket: ticket, orders: orders, err: err}
	}
}

func helpRequestCmd(backend support.Backend, ticket support.HelpTicket, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := backend.SendMessage(ctx, ticket.Request)
		return helpResultMsg{ticket: ticket, err: err}
	}
}

func closeMessagesCmd(backend support.Backend, ticket support.CloseTicket, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		failed, err := support.CloseAll(ctx, backend, ticket.IDs)
		return closeResultMsg{ticket: ticket, failed: failed, err: err}
	}
}

func fetchAppStateCmd(states store.AppStateStore) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		state, err := states.Load(ctx)
		return appStateMsg{state: state, err: err}
	}
}

func saveAppStateCmd(states store.AppStateStore, state types.AppState) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return appStateSavedMsg{err: states.Save(ctx, &state)}
	}
}
