package app

import (
	tea "charm.land/bubbletea/v2"

	"storechat/internal/support"
)

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return tea.Sequence(m.saveAppState(), tea.Quit)
	case "ctrl+o":
		return m.toggleWidget()
	}
	if m.widget == nil || !m.widget.IsOpen() || !m.widget.Available() {
		return nil
	}
	if m.confirm.IsOpen() {
		_, choice := m.confirm.HandleKey(msg)
		switch choice {
		case confirmChoiceConfirm:
			return m.endChat()
		case confirmChoiceCancel:
			m.confirm.Close()
			m.widget.CancelEndChat()
		}
		return nil
	}
	switch key {
	case "ctrl+e":
		m.requestEndChat()
		return nil
	case "ctrl+n":
		return m.startNew()
	case "ctrl+y":
		m.copyTranscript()
		return nil
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()
		return cmd
	}

	view := m.widget.View()
	switch view.Stage {
	case support.StageLookupForm:
		return m.handleLookupKey(msg)
	case support.StageConfirm:
		switch key {
		case "y", "1":
			return m.confirmOrder(true)
		case "n", "2":
			return m.confirmOrder(false)
		}
		return nil
	case support.StageHelpOptions:
		if option, ok := menuIndex(key, len(support.HelpOptions())); ok {
			return m.chooseHelp(support.HelpOptions()[option])
		}
		return nil
	}
	return m.handleComposerKey(msg, view)
}

func (m *Model) handleComposerKey(msg tea.KeyPressMsg, view support.View) tea.Cmd {
	key := msg.String()
	if key == "enter" {
		return m.sendComposer()
	}
	if view.ShowIntents && m.composer.Value() == "" {
		intents := support.Intents()
		if idx, ok := menuIndex(key, len(intents)); ok {
			m.composer.SetValue(intents[idx].Text)
			m.composer.CursorEnd()
			m.widget.Typing()
			return nil
		}
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	m.widget.Typing()
	return cmd
}

func (m *Model) handleLookupKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return m.lookup.Next()
	case "enter":
		return m.submitLookup()
	}
	if !m.lookup.Focused() {
		cmd := m.lookup.Focus()
		m.composer.Blur()
		return tea.Batch(cmd, m.lookupInput(msg))
	}
	return m.lookupInput(msg)
}

func (m *Model) lookupInput(msg tea.Msg) tea.Cmd {
	cmd := m.lookup.Update(msg)
	m.widget.SetOrderDraft(m.lookup.Draft())
	m.widget.Typing()
	return cmd
}

// menuIndex maps the digit keys 1..n to a zero-based option.
func menuIndex(key string, n int) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	idx := int(key[0] - '1')
	if idx >= n {
		return 0, false
	}
	return idx, true
}
