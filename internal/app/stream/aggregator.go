package stream

import (
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

// Snapshot is the accumulated reply after some prefix of the stream.
type Snapshot struct {
	Text      string
	Citations []domain.Citation
}

// Aggregator folds fragments into a running text and a citation list
// deduplicated by URI. The zero value is ready to use.
type Aggregator struct {
	text      strings.Builder
	citations []domain.Citation
	index     map[string]int
}

// Fold applies one fragment and returns the resulting snapshot.
// Text deltas are concatenated as-is. A citation keeps the position of its
// first occurrence and the title of its latest one.
func (a *Aggregator) Fold(f domain.Fragment) Snapshot {
	a.text.WriteString(f.Text)

	for _, c := range f.Citations {
		if a.index == nil {
			a.index = make(map[string]int)
		}
		if i, ok := a.index[c.URI]; ok {
			a.citations[i].Title = c.Title
			continue
		}
		a.index[c.URI] = len(a.citations)
		a.citations = append(a.citations, c)
	}

	return a.Snapshot()
}

// Snapshot returns the current state. The returned slice is a copy.
func (a *Aggregator) Snapshot() Snapshot {
	return Snapshot{
		Text:      a.text.String(),
		Citations: slices.Clone(a.citations),
	}
}

// Aggregate consumes seq in arrival order and calls emit after every fragment.
// It returns the final snapshot, or the last good snapshot together with the
// error that ended the stream. Nothing already emitted is rolled back.
func Aggregate(
	ctx context.Context,
	seq iter.Seq2[domain.Fragment, error],
	emit func(Snapshot),
) (Snapshot, error) {
	var agg Aggregator

	for frag, err := range seq {
		if err != nil {
			return agg.Snapshot(), err
		}
		if err := ctx.Err(); err != nil {
			return agg.Snapshot(), err
		}

		snap := agg.Fold(frag)
		if emit != nil {
			emit(snap)
		}
	}

	return agg.Snapshot(), nil
}
