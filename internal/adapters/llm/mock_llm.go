package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

// MockLLM replays a script instead of calling a provider. With no script it
// answers in the four-label format, echoing the query.
type MockLLM struct {
	Script []domain.Fragment
	// FailAt, when >= 0, makes the stream fail before that fragment.
	FailAt int
	Err    error
	// Delay is slept before every fragment so the UI has something to animate.
	Delay time.Duration
}

func NewMockLLM() *MockLLM {
	return &MockLLM{FailAt: -1}
}

func (m *MockLLM) AskStream(ctx context.Context, query string) iter.Seq2[domain.Fragment, error] {
	script := m.Script
	if script == nil {
		script = defaultScript(query)
	}

	return func(yield func(domain.Fragment, error) bool) {
		for i, f := range script {
			if i == m.FailAt {
				err := m.Err
				if err == nil {
					err = fmt.Errorf("mock stream failure at fragment %d", i)
				}
				yield(domain.Fragment{}, err)
				return
			}
			if m.Delay > 0 {
				select {
				case <-ctx.Done():
					yield(domain.Fragment{}, ctx.Err())
					return
				case <-time.After(m.Delay):
				}
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

func defaultScript(query string) []domain.Fragment {
	q := strings.TrimSpace(query)
	return []domain.Fragment{
		{Text: "OFFICIAL RULE: "},
		{Text: fmt.Sprintf("For %q, check the official rules of your city and university.\n", q)},
		{Citations: []domain.Citation{{URI: "https://www.make-it-in-germany.com/en/", Title: "Make it in Germany"}}},
		{Text: "COMMUNITY HACK: Ask other students which office has the shortest queue.\n"},
		{Text: "STUDYBUDDY SUMMARY & COMPARISON: The official path is slower but safe; the hack saves time.\n"},
		{Text: "LEGAL NOTICE: I am not a lawyer. Verify with official sources."},
	}
}
