package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studybuddy/internal/adapters/llm"
	"github.com/PabloGalante/studybuddy/internal/app/sections"
	"github.com/PabloGalante/studybuddy/internal/app/stream"
	"github.com/PabloGalante/studybuddy/internal/domain"
)

func TestMockDefaultScriptParsesIntoFourSections(t *testing.T) {
	m := llm.NewMockLLM()

	snap, err := stream.Aggregate(context.Background(), m.AskStream(context.Background(), "Anmeldung"), nil)
	require.NoError(t, err)

	var kinds []sections.Kind
	for _, b := range sections.Parse(snap.Text) {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []sections.Kind{sections.KindRule, sections.KindHack, sections.KindSummary, sections.KindDisclaimer}, kinds)
	assert.Len(t, snap.Citations, 1)
}

func TestMockFailsAtConfiguredFragment(t *testing.T) {
	boom := errors.New("offline")
	m := &llm.MockLLM{
		Script: []domain.Fragment{{Text: "a"}, {Text: "b"}},
		FailAt: 1,
		Err:    boom,
	}

	snap, err := stream.Aggregate(context.Background(), m.AskStream(context.Background(), "q"), nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "a", snap.Text)
}
