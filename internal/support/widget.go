package support

import (
	"errors"
	"strings"
	"time"

	"storechat/internal/client"
	"storechat/internal/logging"
	"storechat/internal/types"
)

var (
	ErrSessionEnded = errors.New("conversation has ended; start a new one")
	ErrBusy         = errors.New("conversation is being closed")
)

const (
	defaultFormDelay  = 500 * time.Millisecond
	defaultReplyDelay = 500 * time.Millisecond

	sendFailedText = "❌ Your message could not be sent. Please try again."
	signedOutText  = "🔒 Please sign in again to keep chatting with support."
)

// TranscriptSink stores ended conversations locally.
type TranscriptSink interface {
	SaveTranscript(transcript types.Transcript) error
}

type Options struct {
	Clock       Clock
	Policy      PollPolicy
	Goodbye     GoodbyePredicate
	TalkingFor  time.Duration
	FormDelay   time.Duration
	ReplyDelay  time.Duration
	Transcripts TranscriptSink
	Logger      logging.Logger
	Credential  types.Credential
}

// Widget composes the session machine, poll policy and flow controller.
// It performs no network I/O: callers take a ticket from a Begin method,
// run the request, and hand the result to the matching Complete method.
// Not safe for concurrent use.
type Widget struct {
	clock       Clock
	policy      PollPolicy
	session     *Session
	flow        *Flow
	ids         *idSource
	transcripts TranscriptSink
	logger      logging.Logger
	formDelay   time.Duration
	replyDelay  time.Duration
	credential  types.Credential

	open         bool
	generation   uint64
	epoch        uint64
	fetchSeq     uint64
	fetching     bool
	lastActivity time.Time
	lastFetch    time.Time

	sending    bool
	closing    bool
	confirmEnd bool
	lastSaved  string
}

func NewWidget(opts Options) *Widget {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	formDelay := opts.FormDelay
	if formDelay <= 0 {
		formDelay = defaultFormDelay
	}
	replyDelay := opts.ReplyDelay
	if replyDelay <= 0 {
		replyDelay = defaultReplyDelay
	}
	return &Widget{
		clock:       clock,
		policy:      opts.Policy.normalized(),
		session:     NewSession(opts.Goodbye, opts.TalkingFor),
		flow:        NewFlow(),
		ids:         newIDSource(),
		transcripts: opts.Transcripts,
		logger:      logger,
		formDelay:   formDelay,
		replyDelay:  replyDelay,
		credential:  opts.Credential,
	}
}

func (w *Widget) Policy() PollPolicy {
	return w.policy
}

func (w *Widget) SetCredential(cred types.Credential) {
	w.credential = cred
}

// Available reports whether the signed-in account may use support chat.
func (w *Widget) Available() bool {
	return w.credential.CanChat()
}

// Open shows the widget and starts a new poll generation. Opening counts
// as activity.
func (w *Widget) Open() uint64 {
	if w.open {
		return w.generation
	}
	w.open = true
	w.generation++
	w.fetching = false
	w.lastFetch = time.Time{}
	w.lastActivity = w.clock.Now()
	w.logger.Debug("widget_opened", logging.F("generation", w.generation))
	return w.generation
}

// Close hides the widget. Pending ticks and in-flight fetches of the old
// generation are dropped when they arrive.
func (w *Widget) Close() {
	if !w.open {
		return
	}
	w.open = false
	w.generation++
	w.fetching = false
	w.confirmEnd = false
	w.logger.Debug("widget_closed", logging.F("generation", w.generation))
}

func (w *Widget) Toggle() uint64 {
	if w.open {
		w.Close()
	} else {
		w.Open()
	}
	return w.generation
}

func (w *Widget) IsOpen() bool {
	return w.open
}

func (w *Widget) Generation() uint64 {
	return w.generation
}

// Live reports whether ticks carrying gen should keep running.
func (w *Widget) Live(gen uint64) bool {
	return w.open && gen == w.generation
}

// Typing records composer activity.
func (w *Widget) Typing() {
	w.lastActivity = w.clock.Now()
}

func (w *Widget) LastActivity() time.Time {
	return w.lastActivity
}

type FetchTicket struct {
	Generation uint64
	Seq        uint64
	epoch      uint64
}

// BeginFetch returns a ticket when a poll should run now. It refuses while
// another fetch is outstanding, while the session is latched ended, and
// while a close is in progress.
func (w *Widget) BeginFetch(gen uint64) (FetchTicket, bool) {
	return w.beginFetch(gen, false)
}

// BeginRefresh is BeginFetch without the cadence check, used right after
// a send.
func (w *Widget) BeginRefresh() (FetchTicket, bool) {
	return w.beginFetch(w.generation, true)
}

func (w *Widget) beginFetch(gen uint64, force bool) (FetchTicket, bool) {
	if !w.Live(gen) || w.fetching || w.closing || w.session.Ended() || !w.Available() {
		return FetchTicket{}, false
	}
	now := w.clock.Now()
	if !force && !w.policy.Due(now, w.lastActivity, w.lastFetch) {
		return FetchTicket{}, false
	}
	w.fetchSeq++
	w.fetching = true
	w.lastFetch = now
	return FetchTicket{Generation: gen, Seq: w.fetchSeq, epoch: w.epoch}, true
}

type FetchOutcome struct {
	Applied    bool
	Result     ApplyResult
	Err        error
	Transcript *types.Transcript
}

// ApplyFetch feeds a fetch result to the session. Results from a closed
// widget, an older generation, a superseded sequence or a reset session
// are discarded.
func (w *Widget) ApplyFetch(ticket FetchTicket, msgs []types.Message, err error) FetchOutcome {
	if ticket.Seq == w.fetchSeq {
		w.fetching = false
	}
	if !w.Live(ticket.Generation) || ticket.Seq != w.fetchSeq || ticket.epoch != w.epoch {
		w.logger.Debug("fetch_discarded",
			logging.F("generation", ticket.Generation),
			logging.F("seq", ticket.Seq),
		)
		return FetchOutcome{}
	}
	if err != nil {
		if client.IsUnauthenticated(err) {
			w.logger.Debug("fetch_unauthenticated")
		} else {
			w.logger.Debug("fetch_failed", logging.Err(err))
		}
		return FetchOutcome{Err: err}
	}
	result := w.session.Apply(msgs, w.clock.Now())
	out := FetchOutcome{Applied: !result.Ignored, Result: result}
	if result.AgentJoined {
		w.logger.Info("agent_joined")
	}
	if result.Ended {
		w.epoch++
		w.flow.Reset()
		w.confirmEnd = false
		w.logger.Info("session_ended", logging.F("archived", len(result.Archived)))
		out.Transcript = w.archive(result.Archived)
	}
	return out
}

func (w *Widget) archive(entries []types.Entry) *types.Transcript {
	now := w.clock.Now()
	transcript := types.Transcript{
		ID:       w.ids.New(now),
		Entries:  entries,
		Reason:   types.TranscriptReasonAgentGoodbye,
		EndedAt:  now,
		Customer: w.credential.Email,
	}
	if w.transcripts == nil {
		return &transcript
	}
	if err := w.transcripts.SaveTranscript(transcript); err != nil {
		w.logger.Warn("transcript_save_failed", logging.Err(err))
		return &transcript
	}
	w.session.MarkArchived()
	w.lastSaved = transcript.ID
	return &transcript
}

// LastTranscriptID is the id of the most recently saved transcript.
func (w *Widget) LastTranscriptID() string {
	return w.lastSaved
}

// FollowUp is a delayed effect: a bot message or the lookup form. It is
// dropped if the conversation was reset or ended before it fires.
type FollowUp struct {
	Delay      time.Duration
	Text       string
	LookupForm bool
	epoch      uint64
}

type SendTicket struct {
	Request   client.SendMessageRequest
	orderHelp bool
	epoch     uint64
}

func (w *Widget) BeginSend(text string) (SendTicket, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return SendTicket{}, ErrValidation
	case w.sending:
		return SendTicket{}, ErrPending
	case !w.credential.Valid():
		return SendTicket{}, client.ErrUnauthenticated
	case w.session.Ended():
		return SendTicket{}, ErrSessionEnded
	case w.closing:
		return SendTicket{}, ErrBusy
	}
	w.sending = true
	w.lastActivity = w.clock.Now()
	return SendTicket{
		Request:   client.SendMessageRequest{Message: text, SkipTelegram: SkipTelegram(text)},
		orderHelp: IsOrderHelp(text),
		epoch:     w.epoch,
	}, nil
}

type SendOutcome struct {
	OK       bool
	Refresh  bool
	FollowUp *FollowUp
}

// CompleteSend clears the pending send. Failures surface as a bot bubble
// and keep the composer text.
func (w *Widget) CompleteSend(ticket SendTicket, err error) SendOutcome {
	w.sending = false
	w.lastActivity = w.clock.Now()
	if err != nil {
		w.logger.Warn("send_failed", logging.Err(err))
		text := sendFailedText
		if client.IsUnauthenticated(err) {
			text = signedOutText
		}
		w.appendBot(text)
		return SendOutcome{}
	}
	out := SendOutcome{OK: true, Refresh: true}
	if ticket.orderHelp && ticket.epoch == w.epoch {
		out.FollowUp = &FollowUp{Delay: w.formDelay, LookupForm: true, epoch: w.epoch}
	}
	return out
}

// Deliver applies a follow-up whose delay has elapsed.
func (w *Widget) Deliver(f FollowUp) bool {
	if f.epoch != w.epoch || w.session.Ended() {
		return false
	}
	if f.LookupForm {
		w.flow.OpenLookupForm()
		return true
	}
	return w.appendBot(f.Text)
}

func (w *Widget) appendBot(text string) bool {
	now := w.clock.Now()
	return w.session.AppendEphemeral(types.Ephemeral(w.ids.New(now), text, now))
}

func (w *Widget) SetOrderDraft(draft OrderDraft) {
	w.flow.SetDraft(draft)
}

type LookupTicket struct {
	OrderNumber string
	epoch       uint64
}

func (w *Widget) BeginLookup() (LookupTicket, error) {
	if !w.credential.Valid() {
		return LookupTicket{}, client.ErrUnauthenticated
	}
	number, err := w.flow.BeginLookup()
	if err != nil {
		return LookupTicket{}, err
	}
	w.lastActivity = w.clock.Now()
	return LookupTicket{OrderNumber: number, epoch: w.epoch}, nil
}

func (w *Widget) CompleteLookup(ticket LookupTicket, orders []types.Order, err error) (LookupOutcome, bool) {
	if ticket.epoch != w.epoch {
		return LookupOutcome{}, false
	}
	if err != nil {
		w.logger.Warn("order_lookup_failed", logging.Err(err))
	}
	outcome := w.flow.CompleteLookup(orders, err)
	if outcome.BotText != "" {
		w.appendBot(outcome.BotText)
	}
	return outcome, true
}

func (w *Widget) ConfirmOrder(yes bool) error {
	return w.flow.Confirm(yes)
}

type HelpTicket struct {
	HelpRequest
	epoch uint64
}

func (w *Widget) BeginHelp(option HelpOption) (HelpTicket, error) {
	if !w.credential.Valid() {
		return HelpTicket{}, client.ErrUnauthenticated
	}
	req, err := w.flow.BeginHelp(option)
	if err != nil {
		return HelpTicket{}, err
	}
	w.lastActivity = w.clock.Now()
	return HelpTicket{HelpRequest: req, epoch: w.epoch}, nil
}

// CompleteHelp returns the delayed bot reply for a help option. Failures
// reply immediately.
func (w *Widget) CompleteHelp(ticket HelpTicket, err error) SendOutcome {
	if ticket.epoch != w.epoch {
		return SendOutcome{}
	}
	text := w.flow.CompleteHelp(ticket.HelpRequest, err)
	if err != nil {
		w.logger.Warn("help_request_failed", logging.Err(err))
		w.appendBot(text)
		return SendOutcome{}
	}
	return SendOutcome{
		OK:       true,
		Refresh:  true,
		FollowUp: &FollowUp{Delay: w.replyDelay, Text: text, epoch: w.epoch},
	}
}

// RequestEndChat opens the end-chat confirmation.
func (w *Widget) RequestEndChat() bool {
	if w.closing || w.session.Ended() || len(w.session.active) == 0 {
		return false
	}
	w.confirmEnd = true
	return true
}

func (w *Widget) CancelEndChat() {
	w.confirmEnd = false
}

type CloseKind int

const (
	CloseEndChat CloseKind = iota
	CloseStartNew
)

func (k CloseKind) String() string {
	if k == CloseStartNew {
		return "start_new"
	}
	return "end_chat"
}

type CloseTicket struct {
	Kind CloseKind
	IDs  []int64
}

// BeginEndChat starts the user-confirmed close of the active conversation.
func (w *Widget) BeginEndChat() (CloseTicket, error) {
	if !w.confirmEnd {
		return CloseTicket{}, ErrNoFlow
	}
	if w.closing {
		return CloseTicket{}, ErrPending
	}
	w.closing = true
	w.confirmEnd = false
	return CloseTicket{Kind: CloseEndChat, IDs: w.session.ClosableActive()}, nil
}

// BeginStartNew closes the archived transcript's messages before a new
// conversation starts.
func (w *Widget) BeginStartNew() (CloseTicket, error) {
	if !w.session.Ended() {
		return CloseTicket{}, ErrNoFlow
	}
	if w.closing {
		return CloseTicket{}, ErrPending
	}
	w.closing = true
	return CloseTicket{Kind: CloseStartNew, IDs: w.session.ClosableArchived()}, nil
}

type CloseOutcome struct {
	Kind         CloseKind
	Failed       []int64
	WidgetClosed bool
}

// CompleteClose resets the conversation whether or not every remote close
// succeeded. Closed ids are dismissed locally so they never return.
func (w *Widget) CompleteClose(ticket CloseTicket, failed []int64, err error) CloseOutcome {
	w.closing = false
	if err != nil {
		w.logger.Warn("close_messages_failed",
			logging.F("kind", ticket.Kind.String()),
			logging.F("failed", len(failed)),
			logging.Err(err),
		)
	}
	w.session.Dismiss(ticket.IDs)
	w.session.Reset()
	w.flow.Reset()
	w.epoch++
	w.fetching = false
	w.confirmEnd = false
	w.lastSaved = ""
	out := CloseOutcome{Kind: ticket.Kind, Failed: failed}
	if ticket.Kind == CloseEndChat {
		w.Close()
		out.WidgetClosed = true
	}
	w.logger.Info("conversation_reset", logging.F("kind", ticket.Kind.String()))
	return out
}

type EntryView struct {
	types.Entry
	Fresh bool
}

// View is a read-only snapshot for rendering.
type View struct {
	Open           bool
	Available      bool
	State          State
	Active         []EntryView
	Archived       []types.Entry
	AgentConnected bool
	Talking        bool
	ShowIntents    bool
	Stage          Stage
	Draft          OrderDraft
	Order          *types.Order
	CanSubmit      bool
	Sending        bool
	LookingUp      bool
	HelpPending    bool
	Closing        bool
	ConfirmEnd     bool
	CanEndChat     bool
	CanStartNew    bool
}

func (w *Widget) View() View {
	now := w.clock.Now()
	active := w.session.Active()
	entries := make([]EntryView, 0, len(active))
	for _, entry := range active {
		entries = append(entries, EntryView{Entry: entry, Fresh: w.session.IsFresh(entry)})
	}
	v := View{
		Open:           w.open,
		Available:      w.Available(),
		State:          w.session.State(),
		Active:         entries,
		Archived:       w.session.Archived(),
		AgentConnected: w.session.AgentConnected(),
		Talking:        w.session.Talking(now),
		ShowIntents:    w.session.Empty() && w.flow.Stage() == StageIdle,
		Stage:          w.flow.Stage(),
		Draft:          w.flow.Draft(),
		CanSubmit:      w.flow.CanSubmitLookup(),
		Sending:        w.sending,
		LookingUp:      w.flow.LookupPending(),
		HelpPending:    w.flow.HelpPending(),
		Closing:        w.closing,
		ConfirmEnd:     w.confirmEnd,
		CanEndChat:     !w.closing && !w.session.Ended() && len(active) > 0,
		CanStartNew:    !w.closing && w.session.Ended(),
	}
	if order, ok := w.flow.Verified(); ok {
		v.Order = &order
	}
	return v
}

// Session exposes the underlying state machine for inspection.
func (w *Widget) Session() *Session {
	return w.session
}
