package app

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"storechat/internal/support"
)

const (
	lookupFieldName = iota
	lookupFieldNumber
)

// LookupForm is the order lookup form: customer name and order number.
type LookupForm struct {
	name    textinput.Model
	number  textinput.Model
	focus   int
	focused bool
}

func NewLookupForm() *LookupForm {
	name := textinput.New()
	name.Prompt = "Name:         "
	name.Placeholder = "Full name on the order"
	name.CharLimit = 120
	number := textinput.New()
	number.Prompt = "Order number: "
	number.Placeholder = "e.g. ORD-1001"
	number.CharLimit = 64
	return &LookupForm{name: name, number: number}
}

func (f *LookupForm) Draft() support.OrderDraft {
	return support.OrderDraft{Name: f.name.Value(), OrderNumber: f.number.Value()}
}

func (f *LookupForm) SetDraft(draft support.OrderDraft) {
	f.name.SetValue(draft.Name)
	f.number.SetValue(draft.OrderNumber)
}

func (f *LookupForm) Reset() {
	f.SetDraft(support.OrderDraft{})
	f.focus = lookupFieldName
}

func (f *LookupForm) Focused() bool {
	return f.focused
}

func (f *LookupForm) Focus() tea.Cmd {
	f.focused = true
	if f.focus == lookupFieldNumber {
		f.name.Blur()
		return f.number.Focus()
	}
	f.number.Blur()
	return f.name.Focus()
}

func (f *LookupForm) Blur() {
	f.focused = false
	f.name.Blur()
	f.number.Blur()
}

// Next moves focus to the other field.
func (f *LookupForm) Next() tea.Cmd {
	f.focus = 1 - f.focus
	return f.Focus()
}

func (f *LookupForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == lookupFieldNumber {
		f.number, cmd = f.number.Update(msg)
	} else {
		f.name, cmd = f.name.Update(msg)
	}
	return cmd
}

func (f *LookupForm) View(width int, canSubmit bool, pending string) string {
	lines := []string{
		headerStyle.Render("Find your order"),
		f.name.View(),
		f.number.View(),
	}
	submit := "[enter] Look up order"
	switch {
	case pending != "":
		submit = pending + " Looking up your order..."
	case canSubmit:
		submit = menuOptionStyle.Render(submit)
	default:
		submit = menuOptionDisabledStyle.Render(submit)
	}
	lines = append(lines, submit+"  "+helpStyle.Render("tab switch field"))
	frameWidth := max(minPanelWidth, width-2)
	return formFrameStyle.Width(frameWidth).Render(strings.Join(lines, "\n"))
}
