package app

import (
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"storechat/internal/client"
	"storechat/internal/logging"
	"storechat/internal/store"
	"storechat/internal/support"
	"storechat/internal/types"
)

const (
	minViewportWidth  = 20
	minContentHeight  = 4
	minPanelWidth     = 24
	maxBubbleWidth    = 72
	composerCharLimit = 2000
)

type Options struct {
	Widget   *support.Widget
	Backend  support.Backend
	AppState store.AppStateStore
	Logger   logging.Logger
	Timeout  time.Duration
	Markdown bool
}

type Model struct {
	widget   *support.Widget
	backend  support.Backend
	states   store.AppStateStore
	logger   logging.Logger
	timeout  time.Duration
	markdown bool

	viewport viewport.Model
	composer textinput.Model
	lookup   *LookupForm
	confirm  *ConfirmController
	loader   spinner.Model
	spinning bool

	width   int
	height  int
	status  string
	isError bool
	panel   string
	follow  bool

	appState types.AppState
}

func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	vp := viewport.New(viewport.WithWidth(minViewportWidth), viewport.WithHeight(minContentHeight))
	composer := textinput.New()
	composer.Prompt = "› "
	composer.Placeholder = "Type your message..."
	composer.CharLimit = composerCharLimit
	loader := spinner.New()
	loader.Spinner = spinner.Line
	loader.Style = lipgloss.NewStyle()

	return Model{
		widget:   opts.Widget,
		backend:  opts.Backend,
		states:   opts.AppState,
		logger:   logger,
		timeout:  timeout,
		markdown: opts.Markdown,
		viewport: vp,
		composer: composer,
		lookup:   NewLookupForm(),
		confirm:  NewConfirmController(),
		loader:   loader,
		follow:   true,
	}
}

func Run(opts Options) error {
	model := NewModel(opts)
	p := tea.NewProgram(&model)
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.openWidget()}
	if cmd := fetchAppStateCmd(m.states); cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.syncView()
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.syncView()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case pollTickMsg:
		return m.reducePollTick(msg)
	case fetchResultMsg:
		return m.reduceFetch(msg)
	case sendResultMsg:
		return m.reduceSend(msg)
	case lookupResultMsg:
		return m.reduceLookup(msg)
	case helpResultMsg:
		return m.reduceHelp(msg)
	case closeResultMsg:
		return m.reduceClose(msg)
	case followUpMsg:
		return m.reduceFollowUp(msg)
	case spinnerTickMsg:
		return m.reduceSpinnerTick(msg)
	case redrawMsg:
		return nil
	case appStateMsg:
		m.reduceAppState(msg)
		return nil
	case appStateSavedMsg:
		if msg.err != nil {
			m.logger.Warn("app_state_save_failed", logging.Err(msg.err))
		}
		return nil
	}
	// Cursor blink and other component messages.
	var vpCmd, composerCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.composer, composerCmd = m.composer.Update(msg)
	return tea.Batch(vpCmd, composerCmd, m.lookup.Update(msg))
}

// openWidget opens the widget, fetches right away and starts the poll loop
// for the new generation.
func (m *Model) openWidget() tea.Cmd {
	if m.widget == nil {
		return nil
	}
	gen := m.widget.Open()
	m.follow = true
	cmds := []tea.Cmd{m.composer.Focus(), pollTickCmd(gen, m.widget.Policy().Tick)}
	if cmd := m.beginFetch(gen); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) toggleWidget() tea.Cmd {
	if m.widget.IsOpen() {
		m.widget.Close()
		m.composer.Blur()
		m.lookup.Blur()
		m.confirm.Close()
		m.setStatusInfo("chat hidden")
		return m.saveAppState()
	}
	return tea.Batch(m.openWidget(), m.saveAppState())
}

func (m *Model) beginFetch(gen uint64) tea.Cmd {
	ticket, ok := m.widget.BeginFetch(gen)
	if !ok {
		return nil
	}
	return fetchMessagesCmd(m.backend, ticket, m.timeout)
}

func (m *Model) beginRefresh() tea.Cmd {
	ticket, ok := m.widget.BeginRefresh()
	if !ok {
		return nil
	}
	return fetchMessagesCmd(m.backend, ticket, m.timeout)
}

func (m *Model) reducePollTick(msg pollTickMsg) tea.Cmd {
	if !m.widget.Live(msg.generation) {
		return nil
	}
	cmds := []tea.Cmd{pollTickCmd(msg.generation, m.widget.Policy().Tick)}
	if cmd := m.beginFetch(msg.generation); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) reduceFetch(msg fetchResultMsg) tea.Cmd {
	out := m.widget.ApplyFetch(msg.ticket, msg.messages, msg.err)
	if out.Err != nil {
		return nil
	}
	if !out.Applied && out.Transcript == nil {
		return nil
	}
	if out.Result.AgentJoined {
		m.setStatusInfo("an agent joined the conversation")
	}
	if out.Transcript != nil {
		m.lookup.Blur()
		m.confirm.Close()
		if m.widget.LastTranscriptID() == out.Transcript.ID {
			m.setStatusInfo("conversation ended by support; transcript saved")
		} else {
			m.setStatusInfo("conversation ended by support")
		}
	}
	if out.Result.NewAdmin > 0 {
		m.follow = true
		return redrawAfterCmd(time.Until(m.widget.Session().TalkingUntil()))
	}
	if len(out.Result.NewIDs) > 0 {
		m.follow = true
	}
	return nil
}

func (m *Model) sendComposer() tea.Cmd {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" {
		return nil
	}
	ticket, err := m.widget.BeginSend(text)
	if err != nil {
		m.reportActionError(err)
		return nil
	}
	m.setStatusInfo("sending")
	return tea.Batch(sendMessageCmd(m.backend, ticket, m.timeout), m.startSpinner())
}

func (m *Model) reduceSend(msg sendResultMsg) tea.Cmd {
	out := m.widget.CompleteSend(msg.ticket, msg.err)
	m.follow = true
	if !out.OK {
		m.setStatusError("message not sent")
		return nil
	}
	if strings.TrimSpace(m.composer.Value()) == msg.ticket.Request.Message {
		m.composer.SetValue("")
	}
	m.clearStatus()
	return m.afterSend(out)
}

func (m *Model) afterSend(out support.SendOutcome) tea.Cmd {
	var cmds []tea.Cmd
	if out.Refresh {
		cmds = append(cmds, m.beginRefresh())
	}
	cmds = append(cmds, followUpCmd(out.FollowUp), m.saveAppState())
	return tea.Batch(cmds...)
}

func (m *Model) reduceFollowUp(msg followUpMsg) tea.Cmd {
	if !m.widget.Deliver(msg.followUp) {
		return nil
	}
	m.follow = true
	if msg.followUp.LookupForm {
		if m.appState.LastOrderNo != "" && m.lookup.Draft().OrderNumber == "" {
			m.lookup.SetDraft(support.OrderDraft{OrderNumber: m.appState.LastOrderNo})
		}
		m.widget.SetOrderDraft(m.lookup.Draft())
		m.composer.Blur()
		return m.lookup.Focus()
	}
	return nil
}

func (m *Model) submitLookup() tea.Cmd {
	m.widget.SetOrderDraft(m.lookup.Draft())
	ticket, err := m.widget.BeginLookup()
	if err != nil {
		m.reportActionError(err)
		return nil
	}
	m.appState.LastOrderNo = ticket.OrderNumber
	return tea.Batch(lookupOrderCmd(m.backend, ticket, m.timeout), m.startSpinner())
}

func (m *Model) reduceLookup(msg lookupResultMsg) tea.Cmd {
	outcome, ok := m.widget.CompleteLookup(msg.ticket, msg.orders, msg.err)
	if !ok {
		return nil
	}
	m.follow = true
	switch outcome.Kind {
	case support.LookupFound:
		m.lookup.Blur()
		m.clearStatus()
	case support.LookupNotFound:
		m.lookup.Reset()
		m.lookup.Blur()
		m.appState.LastOrderNo = ""
		return m.composer.Focus()
	case support.LookupFailed:
		m.lookup.Blur()
		return m.composer.Focus()
	}
	return nil
}

func (m *Model) confirmOrder(yes bool) tea.Cmd {
	if err := m.widget.ConfirmOrder(yes); err != nil {
		return nil
	}
	if yes {
		return nil
	}
	return m.lookup.Focus()
}

func (m *Model) chooseHelp(option support.HelpOption) tea.Cmd {
	ticket, err := m.widget.BeginHelp(option)
	if err != nil {
		m.reportActionError(err)
		return nil
	}
	return tea.Batch(helpRequestCmd(m.backend, ticket, m.timeout), m.startSpinner())
}

func (m *Model) reduceHelp(msg helpResultMsg) tea.Cmd {
	out := m.widget.CompleteHelp(msg.ticket, msg.err)
	m.follow = true
	if !out.OK {
		return nil
	}
	return tea.Batch(m.afterSend(out), m.composer.Focus())
}

func (m *Model) requestEndChat() {
	if !m.widget.RequestEndChat() {
		return
	}
	m.confirm.Open("End chat", "End this conversation? Your messages will be closed and the chat hidden.", "End chat", "Keep chatting")
}

func (m *Model) endChat() tea.Cmd {
	m.confirm.Close()
	ticket, err := m.widget.BeginEndChat()
	if err != nil {
		m.reportActionError(err)
		return nil
	}
	m.setStatusInfo("ending chat")
	return tea.Batch(closeMessagesCmd(m.backend, ticket, m.timeout), m.startSpinner())
}

func (m *Model) startNew() tea.Cmd {
	ticket, err := m.widget.BeginStartNew()
	if err != nil {
		return nil
	}
	m.setStatusInfo("starting a new conversation")
	return tea.Batch(closeMessagesCmd(m.backend, ticket, m.timeout), m.startSpinner())
}

func (m *Model) reduceClose(msg closeResultMsg) tea.Cmd {
	out := m.widget.CompleteClose(msg.ticket, msg.failed, msg.err)
	m.lookup.Reset()
	m.lookup.Blur()
	m.follow = true
	if out.WidgetClosed {
		m.composer.Blur()
		m.composer.SetValue("")
		m.setStatusInfo("chat ended")
		return m.saveAppState()
	}
	if len(out.Failed) > 0 {
		m.setStatusError("some messages could not be closed")
	} else {
		m.setStatusInfo("new conversation")
	}
	return tea.Batch(m.composer.Focus(), m.beginRefresh())
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return spinnerTickCmd()
}

func (m *Model) reduceSpinnerTick(msg spinnerTickMsg) tea.Cmd {
	if !m.pending() {
		m.spinning = false
		return nil
	}
	m.loader, _ = m.loader.Update(spinner.TickMsg{Time: time.Time(msg), ID: m.loader.ID()})
	return spinnerTickCmd()
}

func (m *Model) pending() bool {
	v := m.widget.View()
	return v.Sending || v.LookingUp || v.HelpPending || v.Closing
}

func (m *Model) reduceAppState(msg appStateMsg) {
	if msg.err != nil {
		m.logger.Warn("app_state_load_failed", logging.Err(msg.err))
		return
	}
	if msg.state == nil {
		return
	}
	m.appState = *msg.state
	if m.composer.Value() == "" && m.appState.Draft != "" {
		m.composer.SetValue(m.appState.Draft)
	}
}

func (m *Model) saveAppState() tea.Cmd {
	m.appState.Draft = m.composer.Value()
	m.appState.WidgetOpen = m.widget.IsOpen()
	return saveAppStateCmd(m.states, m.appState)
}

func (m *Model) copyTranscript() {
	text := transcriptText(m.widget.View())
	m.copyWithStatus(text, "transcript copied")
}

func (m *Model) reportActionError(err error) {
	switch {
	case errors.Is(err, support.ErrValidation), errors.Is(err, support.ErrPending), errors.Is(err, support.ErrNoFlow):
		return
	case client.IsUnauthenticated(err):
		m.setStatusError("signed out: run storechat login")
	default:
		m.setStatusError(err.Error())
	}
}

func (m *Model) setStatusInfo(text string) {
	m.status = text
	m.isError = false
}

func (m *Model) setStatusError(text string) {
	m.status = text
	m.isError = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.isError = false
}
