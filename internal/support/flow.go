package support

import (
	"errors"
	"fmt"
	"strings"

	"storechat/internal/client"
	"storechat/internal/types"
)

var (
	// ErrValidation is returned for blank required input. The UI disables
	// the control instead of showing it.
	ErrValidation = errors.New("required field is empty")
	ErrPending    = errors.New("request already in progress")
	ErrNoFlow     = errors.New("action not available in the current step")
)

type Intent int

const (
	IntentOrderHelp Intent = iota
	IntentAccountHelp
	IntentProductQuestion
)

type IntentOption struct {
	Intent Intent
	Label  string
	Text   string
}

var intentOptions = []IntentOption{
	{Intent: IntentOrderHelp, Label: "Help with my order", Text: "I need help with my order"},
	{Intent: IntentAccountHelp, Label: "Help with my account", Text: "I need help with my account"},
	{Intent: IntentProductQuestion, Label: "Question about a product", Text: "I have a question about a product"},
}

func Intents() []IntentOption {
	out := make([]IntentOption, len(intentOptions))
	copy(out, intentOptions)
	return out
}

func (i Intent) Text() string {
	for _, opt := range intentOptions {
		if opt.Intent == i {
			return opt.Text
		}
	}
	return ""
}

// botHandledPhrases mark opener messages the bot answers without paging an
// agent.
var botHandledPhrases = []string{
	"help with my order",
	"help with my account",
	"question about a product",
}

func SkipTelegram(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range botHandledPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func IsOrderHelp(text string) bool {
	return strings.Contains(strings.ToLower(text), botHandledPhrases[0])
}

type Stage int

const (
	StageIdle Stage = iota
	StageLookupForm
	StageConfirm
	StageHelpOptions
)

func (s Stage) String() string {
	switch s {
	case StageLookupForm:
		return "lookup_form"
	case StageConfirm:
		return "confirm"
	case StageHelpOptions:
		return "help_options"
	default:
		return "idle"
	}
}

type HelpOption int

const (
	HelpTrack HelpOption = iota
	HelpCancelRefund
	HelpOther
)

func (h HelpOption) Label() string {
	switch h {
	case HelpTrack:
		return "Track my order"
	case HelpCancelRefund:
		return "Cancel or refund order"
	default:
		return "Other issue"
	}
}

func HelpOptions() []HelpOption {
	return []HelpOption{HelpTrack, HelpCancelRefund, HelpOther}
}

type OrderDraft struct {
	Name        string
	OrderNumber string
}

func (d OrderDraft) Ready() bool {
	return strings.TrimSpace(d.Name) != "" && strings.TrimSpace(d.OrderNumber) != ""
}

const (
	connectingPrefix  = "📞 Connecting you to a support agent...\n\n"
	connectingCancel  = connectingPrefix + "Please wait while we transfer your request to our team. An agent will respond shortly."
	connectingOther   = connectingPrefix + "Please describe your issue in detail. An agent will respond shortly to assist you."
	lookupFailedText  = "❌ Unable to verify order at this time. Please try again or contact support directly."
	noTrackingText    = "Tracking information will be available once your order ships."
	helpFailedText    = "❌ We couldn't send your request right now. Please try again."
	notFoundTemplate  = "❌ I couldn't find an order with number \"%s\".\n\nPlease double-check the order number and try again."
	trackingTemplate  = "Your order is currently: %s\n\n%s"
	trackMessage      = "I need help with tracking for Order #%s"
	cancelMessage     = "I want to cancel/refund Order #%s\nCustomer: %s"
	otherIssueMessage = "I have another issue with Order #%s\nCustomer: %s"
)

type LookupOutcomeKind int

const (
	LookupFound LookupOutcomeKind = iota
	LookupNotFound
	LookupFailed
)

type LookupOutcome struct {
	Kind    LookupOutcomeKind
	Order   types.Order
	BotText string
}

// HelpRequest is the message a help option sends and the bot reply shown
// once it has gone through.
type HelpRequest struct {
	Option   HelpOption
	Request  client.SendMessageRequest
	FollowUp string
}

// Flow is the bot-guided decision tree: lookup form, confirmation and help
// options. Each remote step has its own pending flag.
type Flow struct {
	stage         Stage
	draft         OrderDraft
	verified      *types.Order
	customer      string
	lookupPending bool
	helpPending   bool
}

func NewFlow() *Flow {
	return &Flow{}
}

func (f *Flow) Stage() Stage {
	return f.stage
}

func (f *Flow) Draft() OrderDraft {
	return f.draft
}

func (f *Flow) Verified() (types.Order, bool) {
	if f.verified == nil {
		return types.Order{}, false
	}
	return *f.verified, true
}

func (f *Flow) LookupPending() bool {
	return f.lookupPending
}

func (f *Flow) HelpPending() bool {
	return f.helpPending
}

// CanSubmitLookup mirrors the disabled state of the submit control.
func (f *Flow) CanSubmitLookup() bool {
	return f.stage == StageLookupForm && f.draft.Ready() && !f.lookupPending
}

func (f *Flow) OpenLookupForm() {
	f.stage = StageLookupForm
	f.verified = nil
}

func (f *Flow) SetDraft(draft OrderDraft) {
	f.draft = draft
}

func (f *Flow) BeginLookup() (string, error) {
	if f.stage != StageLookupForm {
		return "", ErrNoFlow
	}
	if f.lookupPending {
		return "", ErrPending
	}
	if !f.draft.Ready() {
		return "", ErrValidation
	}
	f.lookupPending = true
	return f.draft.OrderNumber, nil
}

// CompleteLookup resolves a pending lookup. Misses and failures close the
// form and produce the bot text to append.
func (f *Flow) CompleteLookup(orders []types.Order, err error) LookupOutcome {
	f.lookupPending = false
	number := f.draft.OrderNumber
	if err != nil {
		f.stage = StageIdle
		return LookupOutcome{Kind: LookupFailed, BotText: lookupFailedText}
	}
	order, ok := MatchOrder(orders, number)
	if !ok {
		f.stage = StageIdle
		f.draft = OrderDraft{}
		return LookupOutcome{Kind: LookupNotFound, BotText: fmt.Sprintf(notFoundTemplate, number)}
	}
	f.verified = &order
	f.customer = strings.TrimSpace(f.draft.Name)
	f.stage = StageConfirm
	return LookupOutcome{Kind: LookupFound, Order: order}
}

// Confirm answers the "is this your order" prompt. No discards the order
// and reopens the form.
func (f *Flow) Confirm(yes bool) error {
	if f.stage != StageConfirm || f.verified == nil {
		return ErrNoFlow
	}
	if yes {
		f.stage = StageHelpOptions
		return nil
	}
	f.verified = nil
	f.stage = StageLookupForm
	return nil
}

func (f *Flow) BeginHelp(option HelpOption) (HelpRequest, error) {
	if f.stage != StageHelpOptions || f.verified == nil {
		return HelpRequest{}, ErrNoFlow
	}
	if f.helpPending {
		return HelpRequest{}, ErrPending
	}
	order := *f.verified
	label := orderLabel(order)
	req := HelpRequest{
		Option:  option,
		Request: client.SendMessageRequest{OrderID: order.OrderIDPtr()},
	}
	switch option {
	case HelpTrack:
		req.Request.Message = fmt.Sprintf(trackMessage, label)
		req.Request.SkipTelegram = true
		req.FollowUp = trackingReply(order)
	case HelpCancelRefund:
		req.Request.Message = fmt.Sprintf(cancelMessage, label, f.customer)
		req.FollowUp = connectingCancel
	case HelpOther:
		req.Request.Message = fmt.Sprintf(otherIssueMessage, label, f.customer)
		req.FollowUp = connectingOther
	default:
		return HelpRequest{}, fmt.Errorf("unknown help option %d", option)
	}
	f.helpPending = true
	return req, nil
}

// CompleteHelp clears the pending flag. On success the options close and
// the request's follow-up is returned; on failure the options stay open and
// an error bot text is returned instead.
func (f *Flow) CompleteHelp(req HelpRequest, err error) string {
	f.helpPending = false
	if err != nil {
		return helpFailedText
	}
	if f.stage == StageHelpOptions {
		f.stage = StageIdle
	}
	return req.FollowUp
}

func (f *Flow) Reset() {
	*f = Flow{}
}

func trackingReply(order types.Order) string {
	tracking := noTrackingText
	if number := strings.TrimSpace(order.TrackingNumber); number != "" {
		tracking = "Tracking Number: " + number
	}
	return fmt.Sprintf(trackingTemplate, order.Status, tracking)
}
