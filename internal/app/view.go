package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"storechat/internal/support"
	"storechat/internal/types"
)

const (
	titleText        = "Support"
	agentText        = "Agent connected"
	welcomeText      = "We're here to help!"
	talkingText      = "typing..."
	unavailableText  = "Support chat is available to signed-in customers. Run storechat login to sign in."
	closedText       = "Support chat is hidden. Press ctrl+o to open it."
	emptyText        = "Hi! How can we help you today?"
	sessionEndedText = "This conversation has ended"
	startNewHint     = "Press ctrl+n to start a new conversation"
)

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	lines := []string{m.renderHeader()}
	if m.widget != nil && m.widget.IsOpen() && m.widget.Available() {
		lines = append(lines, m.viewport.View())
		if m.panel != "" {
			lines = append(lines, m.panel)
		}
		if m.composerVisible(m.widget.View()) {
			lines = append(lines, dividerStyle.Render(strings.Repeat("─", m.contentWidth())), m.composer.View())
		}
	} else {
		lines = append(lines, m.viewport.View())
	}
	lines = append(lines, m.renderStatusLine())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// syncView rebuilds the transcript and side panel after every update so
// View stays a pure read.
func (m *Model) syncView() {
	if m.widget == nil {
		return
	}
	width := m.contentWidth()
	m.viewport.SetWidth(width)
	view := m.widget.View()

	var body string
	switch {
	case !view.Available:
		body = helpStyle.Render(unavailableText)
		m.panel = ""
	case !view.Open:
		body = helpStyle.Render(closedText)
		m.panel = ""
	default:
		body = renderTranscript(view, width, m.markdown)
		m.panel = m.renderPanel(view, width)
	}

	reserved := 2 // header + status
	if view.Open && view.Available {
		if m.panel != "" {
			reserved += lipgloss.Height(m.panel)
		}
		if m.composerVisible(view) {
			reserved += 2
		}
	}
	height := minContentHeight
	if m.height > 0 {
		height = max(minContentHeight, m.height-reserved)
	}
	m.viewport.SetHeight(height)
	m.viewport.SetContent(body)
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) composerVisible(view support.View) bool {
	if m.lookup.Focused() || view.Stage != support.StageIdle {
		return false
	}
	return view.State != support.StateEnded && view.State != support.StateArchived
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(minViewportWidth, m.width)
}

func (m *Model) renderHeader() string {
	if m.widget == nil || !m.widget.IsOpen() {
		return headerStyle.Render(titleText)
	}
	view := m.widget.View()
	switch {
	case view.State == support.StateEnded || view.State == support.StateArchived:
		return headerStyle.Render(titleText) + "  " + sessionEndedStyle.Render(sessionEndedText)
	case view.AgentConnected:
		header := headerAgentStyle.Render("● " + agentText)
		if view.Talking {
			header += "  " + talkingStyle.Render(talkingText)
		}
		return header
	default:
		return headerStyle.Render(titleText) + "  " + helpStyle.Render(welcomeText)
	}
}

func (m *Model) renderPanel(view support.View, width int) string {
	if m.confirm.IsOpen() {
		return m.confirm.View(width)
	}
	pending := ""
	if m.spinning {
		pending = m.loader.View()
	}
	switch view.Stage {
	case support.StageLookupForm:
		lookupPending := ""
		if view.LookingUp {
			lookupPending = m.loader.View()
		}
		return m.lookup.View(width, view.CanSubmit, lookupPending)
	case support.StageConfirm:
		return renderOrderConfirm(view.Order, width)
	case support.StageHelpOptions:
		return renderHelpOptions(view.HelpPending, pending, width)
	}
	if view.ShowIntents {
		return renderIntentMenu(width)
	}
	if view.Sending || view.Closing {
		return helpStyle.Render(pending + " working...")
	}
	return ""
}

func renderIntentMenu(width int) string {
	lines := []string{headerStyle.Render("How can we help?")}
	for i, intent := range support.Intents() {
		lines = append(lines, fmt.Sprintf("%s %s", menuOptionStyle.Render(fmt.Sprintf("[%d]", i+1)), truncatePlain(intent.Label, width-4)))
	}
	return strings.Join(lines, "\n")
}

func renderOrderConfirm(order *types.Order, width int) string {
	if order == nil {
		return ""
	}
	lines := []string{
		headerStyle.Render("Is this your order?"),
		truncatePlain("Order #"+order.DisplayNumber(), width-4),
		truncatePlain("Status: "+order.Status, width-4),
		"Total: " + support.FormatTotal(*order),
		menuOptionStyle.Render("[y] Yes") + "  " + menuOptionStyle.Render("[n] No, look up another"),
	}
	return formFrameStyle.Width(max(minPanelWidth, width-2)).Render(strings.Join(lines, "\n"))
}

func renderHelpOptions(pending bool, spinner string, width int) string {
	lines := []string{headerStyle.Render("What do you need help with?")}
	style := menuOptionStyle
	if pending {
		style = menuOptionDisabledStyle
	}
	for i, option := range support.HelpOptions() {
		lines = append(lines, style.Render(fmt.Sprintf("[%d] %s", i+1, truncatePlain(option.Label(), width-8))))
	}
	if pending {
		lines = append(lines, helpStyle.Render(spinner+" sending..."))
	}
	return strings.Join(lines, "\n")
}

func renderTranscript(view support.View, width int, markdown bool) string {
	var blocks []string
	if len(view.Archived) > 0 {
		for _, entry := range view.Archived {
			blocks = append(blocks, renderEntry(entry, false, true, width, markdown))
		}
		blocks = append(blocks, renderSessionEnded(width))
	}
	for _, entry := range view.Active {
		blocks = append(blocks, renderEntry(entry.Entry, entry.Fresh, false, width, markdown))
	}
	if len(blocks) == 0 {
		return helpStyle.Render(emptyText)
	}
	return strings.Join(blocks, "\n")
}

func renderSessionEnded(width int) string {
	label := " " + sessionEndedText + " "
	side := max(2, (width-lipgloss.Width(label))/2)
	line := dividerStyle.Render(strings.Repeat("─", side)) + sessionEndedStyle.Render(label) + dividerStyle.Render(strings.Repeat("─", side))
	return line + "\n" + helpStyle.Render(startNewHint)
}

func renderEntry(entry types.Entry, fresh, archived bool, width int, markdown bool) string {
	bubbleWidth := min(maxBubbleWidth, max(minPanelWidth, width*3/4))
	textWidth := max(1, bubbleWidth-4)
	text := entry.Text
	if markdown && !archived {
		text = renderMarkdown(text, textWidth)
	} else {
		text = plainWrap(text, textWidth)
	}

	style := agentBubbleStyle
	switch {
	case archived:
		style = archivedBubbleStyle
	case entry.IsEphemeral():
		style = botBubbleStyle
	case entry.Sender == types.SenderCustomer:
		style = customerBubbleStyle
	}
	meta := senderLabel(entry)
	if !entry.CreatedAt.IsZero() {
		meta += " · " + entry.CreatedAt.Local().Format("15:04")
	}
	meta = chatMetaStyle.Render(meta)
	if fresh {
		meta = freshMarkerStyle.Render("● new") + " " + meta
	}
	block := meta + "\n" + style.Render(text)
	if entry.Sender == types.SenderCustomer {
		return alignRight(block, width)
	}
	return block
}

func senderLabel(entry types.Entry) string {
	switch {
	case entry.IsEphemeral():
		return "Assistant"
	case entry.Sender == types.SenderCustomer:
		return "You"
	default:
		return "Support"
	}
}

// transcriptText is the plain-text conversation copied to the clipboard:
// the archived transcript once a session ended, the active one otherwise.
func transcriptText(view support.View) string {
	entries := view.Archived
	if len(entries) == 0 {
		entries = make([]types.Entry, 0, len(view.Active))
		for _, entry := range view.Active {
			entries = append(entries, entry.Entry)
		}
	}
	var b strings.Builder
	for _, entry := range entries {
		if !entry.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "[%s] ", entry.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(&b, "%s: %s\n", senderLabel(entry), strings.TrimSpace(entry.Text))
	}
	return b.String()
}

func (m *Model) renderStatusLine() string {
	help := helpStyle.Render(m.hotkeyHelp())
	if m.status == "" {
		return help
	}
	status := toastInfoStyle.Render(" " + m.status + " ")
	if m.isError {
		status = toastErrorStyle.Render(" " + m.status + " ")
	}
	width := m.contentWidth()
	gap := width - lipgloss.Width(help) - lipgloss.Width(status)
	if gap < 1 {
		return status
	}
	return help + strings.Repeat(" ", gap) + status
}

func (m *Model) hotkeyHelp() string {
	if m.widget == nil || !m.widget.IsOpen() {
		return "ctrl+o open · ctrl+c quit"
	}
	view := m.widget.View()
	parts := []string{"enter send"}
	switch view.Stage {
	case support.StageLookupForm:
		parts = []string{"enter look up", "tab next field"}
	case support.StageConfirm:
		parts = []string{"y/n confirm"}
	case support.StageHelpOptions:
		parts = []string{"1-3 choose"}
	}
	if view.CanEndChat {
		parts = append(parts, "ctrl+e end chat")
	}
	if view.CanStartNew {
		parts = append(parts, "ctrl+n new chat")
	}
	parts = append(parts, "ctrl+y copy", "ctrl+o hide", "ctrl+c quit")
	return strings.Join(parts, " · ")
}
