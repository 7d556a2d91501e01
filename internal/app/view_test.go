package app

import (
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"storechat/internal/support"
	"storechat/internal/types"
)

func sampleEntries() []types.Entry {
	at := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	return []types.Entry{
		types.Persisted(types.Message{ID: 1, Text: "Where is my order?", Sender: types.SenderCustomer, Status: types.MessageStatusPending, CreatedAt: at}),
		types.Persisted(types.Message{ID: 2, Text: "Checking now", Sender: types.SenderAdmin, Status: types.MessageStatusReplied, CreatedAt: at.Add(time.Minute)}),
		types.Ephemeral("01HZX", "📞 Connecting you to a support agent...", at.Add(2*time.Minute)),
	}
}

func TestRenderTranscriptShowsArchivedSeparator(t *testing.T) {
	view := support.View{Archived: sampleEntries()}
	out := xansi.Strip(renderTranscript(view, 80, false))
	if !strings.Contains(out, sessionEndedText) || !strings.Contains(out, startNewHint) {
		t.Fatalf("expected ended separator, got %q", out)
	}
	if !strings.Contains(out, "Checking now") {
		t.Fatalf("expected archived text, got %q", out)
	}
}

func TestRenderTranscriptMarksFreshEntries(t *testing.T) {
	entries := sampleEntries()
	view := support.View{Active: []support.EntryView{
		{Entry: entries[0]},
		{Entry: entries[1], Fresh: true},
	}}
	out := xansi.Strip(renderTranscript(view, 80, false))
	if strings.Count(out, "● new") != 1 {
		t.Fatalf("expected one fresh marker, got %q", out)
	}
	if !strings.Contains(out, "You ·") || !strings.Contains(out, "Support ·") {
		t.Fatalf("expected sender labels, got %q", out)
	}
}

func TestRenderTranscriptEmpty(t *testing.T) {
	out := xansi.Strip(renderTranscript(support.View{}, 80, false))
	if out != emptyText {
		t.Fatalf("expected empty text, got %q", out)
	}
}

func TestRenderEntryAlignsCustomerRight(t *testing.T) {
	entries := sampleEntries()
	customerBlock := xansi.Strip(renderEntry(entries[0], false, false, 80, false))
	agentBlock := xansi.Strip(renderEntry(entries[1], false, false, 80, false))
	if !strings.HasPrefix(strings.Split(customerBlock, "\n")[0], " ") {
		t.Fatalf("expected customer bubble indented, got %q", customerBlock)
	}
	if strings.HasPrefix(agentBlock, " ") {
		t.Fatalf("expected agent bubble flush left, got %q", agentBlock)
	}
}

func TestTranscriptTextPrefersArchived(t *testing.T) {
	entries := sampleEntries()
	view := support.View{
		Archived: entries,
		Active:   []support.EntryView{{Entry: types.Ephemeral("x", "ignored", time.Time{})}},
	}
	text := transcriptText(view)
	if strings.Contains(text, "ignored") {
		t.Fatalf("expected archived transcript only, got %q", text)
	}
	if strings.Count(text, "\n") != 3 {
		t.Fatalf("expected three lines, got %q", text)
	}
	if !strings.Contains(text, "Assistant: 📞 Connecting you") {
		t.Fatalf("expected bot line, got %q", text)
	}
}

func TestTruncatePlainHandlesWideRunes(t *testing.T) {
	got := truncatePlain("📞📞📞📞📞", 5)
	if w := xansi.StringWidth(got); w > 5 {
		t.Fatalf("expected width <= 5, got %d (%q)", w, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
}
