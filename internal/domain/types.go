package domain

import "time"

type SessionID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Timestamp is milliseconds since the Unix epoch, the unit persisted client state uses.
type Timestamp = int64

// TimestampOf converts t into a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return t.UnixMilli()
}
