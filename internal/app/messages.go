package app

import (
	"time"

	"storechat/internal/support"
	"storechat/internal/types"
)

// pollTickMsg drives the poll loop for one widget generation. Ticks from an
// older generation end their chain.
type pollTickMsg struct {
	generation uint64
}

type spinnerTickMsg time.Time

// redrawMsg forces a re-render, used when the talking indicator expires.
type redrawMsg struct{}

type fetchResultMsg struct {
	ticket   support.FetchTicket
	messages []types.Message
	err      error
}

type sendResultMsg struct {
	ticket support.SendTicket
	err    error
}

type lookupResultMsg struct {
	ticket support.LookupTicket
	orders []types.Order
	err    error
}

type helpResultMsg struct {
	ticket support.HelpTicket
	err    error
}

type closeResultMsg struct {
	ticket support.CloseTicket
	failed []int64
	err    error
}

type followUpMsg struct {
	followUp support.FollowUp
}

type appStateMsg struct {
	state *types.AppState
	err   error
}

type appStateSavedMsg struct {
	err error
}
