package support

import (
	"context"

	"storechat/internal/client"
	"storechat/internal/types"
)

// Backend is the message store and order listing the widget talks to.
// *client.Client satisfies it.
type Backend interface {
	FetchMessages(ctx context.Context) ([]types.Message, error)
	SendMessage(ctx context.Context, req client.SendMessageRequest) (*client.SendMessageResponse, error)
	CloseMessage(ctx context.Context, id int64) error
	ListOrders(ctx context.Context) ([]types.Order, error)
}

// Driver runs widget actions synchronously against a Backend for the
// headless commands: polling for watch, and ending or restarting the
// conversation for close. The TUI drives the widget through commands
// instead.
type Driver struct {
	Widget  *Widget
	Backend Backend
}

func NewDriver(widget *Widget, backend Backend) *Driver {
	return &Driver{Widget: widget, Backend: backend}
}

// Poll runs one scheduler tick: fetch if due and apply the result.
func (d *Driver) Poll(ctx context.Context) (FetchOutcome, bool) {
	ticket, ok := d.Widget.BeginFetch(d.Widget.Generation())
	if !ok {
		return FetchOutcome{}, false
	}
	return d.fetch(ctx, ticket), true
}

// Refresh fetches regardless of cadence.
func (d *Driver) Refresh(ctx context.Context) (FetchOutcome, bool) {
	ticket, ok := d.Widget.BeginRefresh()
	if !ok {
		return FetchOutcome{}, false
	}
	return d.fetch(ctx, ticket), true
}

func (d *Driver) fetch(ctx context.Context, ticket FetchTicket) FetchOutcome {
	msgs, err := d.Backend.FetchMessages(ctx)
	return d.Widget.ApplyFetch(ticket, msgs, err)
}

// EndChat closes the active conversation. The confirmation step is
// implied.
func (d *Driver) EndChat(ctx context.Context) (CloseOutcome, error) {
	if !d.Widget.RequestEndChat() {
		return CloseOutcome{}, ErrNoFlow
	}
	ticket, err := d.Widget.BeginEndChat()
	if err != nil {
		return CloseOutcome{}, err
	}
	failed, closeErr := CloseAll(ctx, d.Backend, ticket.IDs)
	return d.Widget.CompleteClose(ticket, failed, closeErr), nil
}

// StartNew closes the messages of a conversation support already ended.
func (d *Driver) StartNew(ctx context.Context) (CloseOutcome, error) {
	ticket, err := d.Widget.BeginStartNew()
	if err != nil {
		return CloseOutcome{}, err
	}
	failed, closeErr := CloseAll(ctx, d.Backend, ticket.IDs)
	return d.Widget.CompleteClose(ticket, failed, closeErr), nil
}
