package domain

import (
	"context"
	"errors"
	"iter"
)

// ErrKeyNotFound is returned by a StateStore for keys that were never set or were deleted.
var ErrKeyNotFound = errors.New("key not found")

// StreamClient is the AI provider. The returned sequence is lazy, finite and
// can be ranged over once; the first non-nil error ends it.
type StreamClient interface {
	AskStream(ctx context.Context, query string) iter.Seq2[Fragment, error]
}

// StateStore is the client-local key/value storage that persisted preferences
// and the session list live in.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// LogEntry is a finished exchange shared with the logging server.
type LogEntry struct {
	SessionID     SessionID
	UserText      string
	AssistantText string
	Citations     []Citation
}

// LogSink receives finished exchanges when the user opted into log sharing.
type LogSink interface {
	Send(ctx context.Context, entry LogEntry) error
}

// KeyLister is implemented by state stores that can enumerate their keys.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}
