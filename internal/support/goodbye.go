package support

import (
	"strings"
	"unicode"
)

type GoodbyeMode string

const (
	// GoodbyeSubstring fires when any keyword appears anywhere in the text.
	// It misfires on phrases like "we will have a good resolution".
	GoodbyeSubstring GoodbyeMode = "substring"
	// GoodbyeStrict requires whole-word keyword matches that together cover
	// at least MinCoverage of the words in the message.
	GoodbyeStrict GoodbyeMode = "strict"
)

var DefaultGoodbyeKeywords = []string{
	"bye",
	"goodbye",
	"good bye",
	"closing",
	"ended",
	"end chat",
	"take care",
	"have a good",
}

const defaultGoodbyeCoverage = 0.5

// GoodbyePredicate decides whether an agent message ends the conversation.
type GoodbyePredicate interface {
	IsGoodbye(text string) bool
}

type GoodbyeDetector struct {
	mode        GoodbyeMode
	keywords    []string
	phrases     [][]string
	minCoverage float64
}

type GoodbyeOptions struct {
	Mode        GoodbyeMode
	Keywords    []string
	MinCoverage float64
}

func NewGoodbyeDetector(opts GoodbyeOptions) *GoodbyeDetector {
	keywords := make([]string, 0, len(opts.Keywords))
	for _, kw := range opts.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		keywords = append(keywords, DefaultGoodbyeKeywords...)
	}
	mode := opts.Mode
	if mode != GoodbyeStrict {
		mode = GoodbyeSubstring
	}
	coverage := opts.MinCoverage
	if coverage <= 0 || coverage > 1 {
		coverage = defaultGoodbyeCoverage
	}
	phrases := make([][]string, 0, len(keywords))
	for _, kw := range keywords {
		if tokens := words(kw); len(tokens) > 0 {
			phrases = append(phrases, tokens)
		}
	}
	return &GoodbyeDetector{
		mode:        mode,
		keywords:    keywords,
		phrases:     phrases,
		minCoverage: coverage,
	}
}

// IsGoodbye reports whether text matches the default keyword set in
// substring mode.
func IsGoodbye(text string) bool {
	return defaultDetector.IsGoodbye(text)
}

var defaultDetector = NewGoodbyeDetector(GoodbyeOptions{})

func (d *GoodbyeDetector) Mode() GoodbyeMode {
	return d.mode
}

func (d *GoodbyeDetector) IsGoodbye(text string) bool {
	if d == nil {
		return IsGoodbye(text)
	}
	if d.mode == GoodbyeStrict {
		return d.strictMatch(text)
	}
	lower := strings.ToLower(text)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (d *GoodbyeDetector) strictMatch(text string) bool {
	tokens := words(text)
	if len(tokens) == 0 {
		return false
	}
	covered := make([]bool, len(tokens))
	matched := false
	for _, phrase := range d.phrases {
		for i := 0; i+len(phrase) <= len(tokens); i++ {
			if !phraseAt(tokens, i, phrase) {
				continue
			}
			matched = true
			for j := range phrase {
				covered[i+j] = true
			}
		}
	}
	if !matched {
		return false
	}
	count := 0
	for _, c := range covered {
		if c {
			count++
		}
	}
	return float64(count)/float64(len(tokens)) >= d.minCoverage
}

func phraseAt(tokens []string, start int, phrase []string) bool {
	for j, word := range phrase {
		if tokens[start+j] != word {
			return false
		}
	}
	return true
}

// words lowercases text and splits it on anything that is not a letter,
// digit or apostrophe.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
