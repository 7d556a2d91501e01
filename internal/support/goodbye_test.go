package support

import "testing"

func TestIsGoodbyeSubstring(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Take care, goodbye!", true},
		{"BYE for now", true},
		{"This chat has ended.", true},
		{"I'm closing this ticket", true},
		{"Have a good day", true},
		{"Hi! How can I help?", false},
		{"Your refund is on its way", false},
		// Known false positive of the substring rule.
		{"We will have a good resolution for you shortly", true},
		{"Mr. Byers will assist you", true},
	}
	for _, tc := range cases {
		if got := IsGoodbye(tc.text); got != tc.want {
			t.Fatalf("IsGoodbye(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestIsGoodbyeStrict(t *testing.T) {
	d := NewGoodbyeDetector(GoodbyeOptions{Mode: GoodbyeStrict})
	if d.Mode() != GoodbyeStrict {
		t.Fatalf("expected strict mode")
	}
	cases := []struct {
		text string
		want bool
	}{
		{"Take care, goodbye!", true},
		{"Bye!", true},
		{"Good bye", true},
		{"We will have a good resolution for you shortly", false},
		{"Mr. Byers will assist you", false},
		{"Thanks for reaching out today and goodbye", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := d.IsGoodbye(tc.text); got != tc.want {
			t.Fatalf("strict IsGoodbye(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestGoodbyeCustomKeywordsAndCoverage(t *testing.T) {
	d := NewGoodbyeDetector(GoodbyeOptions{
		Mode:        GoodbyeStrict,
		Keywords:    []string{" Farewell ", ""},
		MinCoverage: 0.2,
	})
	if !d.IsGoodbye("Thanks and farewell friend") {
		t.Fatalf("expected custom keyword to match at 25%% coverage")
	}
	if d.IsGoodbye("bye") {
		t.Fatalf("expected default keywords replaced by custom set")
	}
	sub := NewGoodbyeDetector(GoodbyeOptions{Mode: "bogus"})
	if sub.Mode() != GoodbyeSubstring {
		t.Fatalf("expected unknown mode to fall back to substring")
	}
}
