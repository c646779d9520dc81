// Package sections turns an assistant reply written in the four-label answer
// format into typed blocks for display.
package sections

import (
	"regexp"
	"strings"
)

type Kind int

const (
	KindPlain Kind = iota
	KindRule
	KindHack
	KindSummary
	KindDisclaimer
)

func (k Kind) String() string {
	switch k {
	case KindRule:
		return "rule"
	case KindHack:
		return "hack"
	case KindSummary:
		return "summary"
	case KindDisclaimer:
		return "disclaimer"
	default:
		return "plain"
	}
}

// Heading is the caption shown above a block. Plain blocks have none.
func (k Kind) Heading() string {
	switch k {
	case KindRule:
		return "Protocol"
	case KindHack:
		return "Insider Way"
	case KindSummary:
		return "The Comparison"
	case KindDisclaimer:
		return "Legal Notice"
	default:
		return ""
	}
}

// Block is one displayable unit of a reply.
type Block struct {
	Kind Kind
	Text string
}

type label struct {
	kind Kind
	re   *regexp.Regexp
}

// Checked in order; the first match wins.
var labels = []label{
	{KindRule, regexp.MustCompile(`(?i)OFFICIAL RULE:?`)},
	{KindHack, regexp.MustCompile(`(?i)COMMUNITY HACK:?`)},
	{KindSummary, regexp.MustCompile(`(?i)STUDYBUDDY SUMMARY & COMPARISON:?`)},
	{KindDisclaimer, regexp.MustCompile(`(?i)LEGAL NOTICE:?|DISCLAIMER:?`)},
}

var bulletRe = regexp.MustCompile(`(?m)^\s*[*+-]\s+`)

// Clean strips emphasis markers and leading bullets.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = bulletRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ParseLine classifies a single line. ok is false when the line yields no block.
func ParseLine(line string) (Block, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Block{}, false
	}

	for _, l := range labels {
		loc := l.re.FindStringIndex(line)
		if loc == nil {
			continue
		}

		// the body ends where the same label repeats
		body := line[loc[1]:]
		if next := l.re.FindStringIndex(body); next != nil {
			body = body[:next[0]]
		}
		if l.kind == KindDisclaimer {
			// the notice keeps its label text
			body = line
		}
		body = Clean(body)
		if body == "" {
			return Block{}, false
		}
		return Block{Kind: l.kind, Text: body}, true
	}

	if text := Clean(line); text != "" {
		return Block{Kind: KindPlain, Text: text}, true
	}
	return Block{}, false
}

// Parse splits text into lines and returns the blocks in order. It is safe to
// call on a reply that is still streaming.
func Parse(text string) []Block {
	var blocks []Block
	for _, line := range strings.Split(text, "\n") {
		if b, ok := ParseLine(line); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
