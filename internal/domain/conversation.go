package domain

import "slices"

// Citation is a source the model grounded its answer in. URI is the identity.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Message is one entry in a session timeline (user or assistant).
// Assistant messages are rewritten while their reply streams in.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"sources,omitempty"`
	Timestamp Timestamp  `json:"timestamp"`
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	m.Citations = slices.Clone(m.Citations)
	return m
}

// Session is one conversation thread.
type Session struct {
	ID        SessionID `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	msgs := make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		msgs[i] = m.Clone()
	}
	s.Messages = msgs
	return s
}

// Fragment is one incremental unit of a streamed reply. Either field may be empty.
type Fragment struct {
	Text      string
	Citations []Citation
}
