package app

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestBuildStyleConfigDisablesDocumentOuterMargins(t *testing.T) {
	cfg := buildStyleConfig()
	if cfg.Document.StylePrimitive.BlockPrefix != "" {
		t.Fatalf("expected empty document block prefix, got %q", cfg.Document.StylePrimitive.BlockPrefix)
	}
	if cfg.Document.StylePrimitive.BlockSuffix != "" {
		t.Fatalf("expected empty document block suffix, got %q", cfg.Document.StylePrimitive.BlockSuffix)
	}
	if cfg.Document.Margin == nil || *cfg.Document.Margin != 0 {
		t.Fatalf("expected zero document margin")
	}
}

func TestEscapeMarkdownKeepsPlainTextLiteral(t *testing.T) {
	got := escapeMarkdown("# not a heading\n1. not a list\nplain")
	lines := strings.Split(got, "\n")
	if !strings.HasPrefix(lines[0], "\\#") {
		t.Fatalf("expected escaped heading, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "\\1.") {
		t.Fatalf("expected escaped numbered list, got %q", lines[1])
	}
	if lines[2] != "plain" {
		t.Fatalf("expected plain line untouched, got %q", lines[2])
	}
}

func TestRenderMarkdownFitsWidth(t *testing.T) {
	text := "Your order is currently: shipped\n\nTracking Number: 1Z999AA10123456784 " + strings.Repeat("word ", 30)
	out := renderMarkdown(text, 30)
	for _, line := range strings.Split(out, "\n") {
		if w := xansi.StringWidth(line); w > 30 {
			t.Fatalf("expected lines within 30 cells, got %d: %q", w, xansi.Strip(line))
		}
	}
	if !strings.Contains(xansi.Strip(out), "Tracking Number:") {
		t.Fatalf("expected text preserved, got %q", xansi.Strip(out))
	}
}
