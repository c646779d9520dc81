package sessions

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

// TitleLimit is the number of characters of the first query kept as a session title.
const TitleLimit = 30

// Hooks are called after the store changes. The store itself never touches storage.
type Hooks struct {
	OnSessionsChanged func([]domain.Session)
}

// Store keeps the ordered session list (newest first) and the active session pointer.
type Store struct {
	// hookMu orders mutations and their hook calls, so hooks see lists in
	// mutation order and the last persisted list is the current one.
	hookMu sync.Mutex

	mu       sync.RWMutex
	sessions []*domain.Session
	active   domain.SessionID
	hooks    Hooks

	now   func() time.Time
	newID func() string
}

func NewStore(hooks Hooks) *Store {
	return &Store{
		hooks: hooks,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Title derives a session title from the query that opened it.
func Title(query string) string {
	r := []rune(query)
	if len(r) > TitleLimit {
		return string(r[:TitleLimit]) + "..."
	}
	return query
}

// CreateSession prepends a new empty session and makes it active.
func (s *Store) CreateSession(firstQuery string) domain.Session {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()

	s.mu.Lock()
	sess := &domain.Session{
		ID:        domain.SessionID(s.newID()),
		Title:     Title(firstQuery),
		Messages:  []domain.Message{},
		CreatedAt: domain.TimestampOf(s.now()),
	}
	s.sessions = slices.Insert(s.sessions, 0, sess)
	s.active = sess.ID
	out := sess.Clone()
	s.mu.Unlock()

	s.changed()
	return out
}

// AppendMessages appends msgs to the session in order. Unknown ids are ignored
// so a reply finishing after its session was deleted is simply dropped.
func (s *Store) AppendMessages(id domain.SessionID, msgs ...domain.Message) bool {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()

	s.mu.Lock()
	sess := s.find(id)
	if sess == nil {
		s.mu.Unlock()
		return false
	}
	for _, m := range msgs {
		sess.Messages = append(sess.Messages, m.Clone())
	}
	s.mu.Unlock()

	s.changed()
	return true
}

// SetAssistantReply overwrites content and citations of the trailing assistant
// message. It reports false when the session or the placeholder is gone.
func (s *Store) SetAssistantReply(id domain.SessionID, text string, citations []domain.Citation) bool {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()

	s.mu.Lock()
	sess := s.find(id)
	if sess == nil || len(sess.Messages) == 0 {
		s.mu.Unlock()
		return false
	}
	last := &sess.Messages[len(sess.Messages)-1]
	if last.Role != domain.RoleAssistant {
		s.mu.Unlock()
		return false
	}
	last.Content = text
	last.Citations = nil
	if len(citations) > 0 {
		last.Citations = slices.Clone(citations)
	}
	s.mu.Unlock()

	s.changed()
	return true
}

// DeleteSession removes the session and clears the active pointer if it pointed there.
func (s *Store) DeleteSession(id domain.SessionID) bool {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.sessions = slices.Delete(s.sessions, i, i+1)
	if s.active == id {
		s.active = ""
	}
	s.mu.Unlock()

	s.changed()
	return true
}

// SelectSession points the active reference at id. Unknown ids leave it unchanged.
func (s *Store) SelectSession(id domain.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		return false
	}
	s.active = id
	return true
}

// SelectNone switches to the "new chat" view.
func (s *Store) SelectNone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
}

func (s *Store) ActiveID() (domain.SessionID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

func (s *Store) Active() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == "" {
		return domain.Session{}, false
	}
	return s.get(s.active)
}

func (s *Store) Get(id domain.SessionID) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

// Sessions returns deep copies, newest first.
func (s *Store) Sessions() []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Replace swaps in a previously persisted list without firing hooks.
func (s *Store) Replace(list []domain.Session) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make([]*domain.Session, 0, len(list))
	for _, sess := range list {
		c := sess.Clone()
		s.sessions = append(s.sessions, &c)
	}
	if s.find(s.active) == nil {
		s.active = ""
	}
}

// Clear removes every session.
func (s *Store) Clear() {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()

	s.mu.Lock()
	s.sessions = nil
	s.active = ""
	s.mu.Unlock()

	s.changed()
}

// --- internal helpers --- //

// changed must be called with hookMu held.
func (s *Store) changed() {
	if s.hooks.OnSessionsChanged == nil {
		return
	}
	s.mu.RLock()
	list := s.snapshot()
	s.mu.RUnlock()
	s.hooks.OnSessionsChanged(list)
}

func (s *Store) snapshot() []domain.Session {
	out := make([]domain.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

func (s *Store) get(id domain.SessionID) (domain.Session, bool) {
	sess := s.find(id)
	if sess == nil {
		return domain.Session{}, false
	}
	return sess.Clone(), true
}

func (s *Store) find(id domain.SessionID) *domain.Session {
	if i := s.indexOf(id); i >= 0 {
		return s.sessions[i]
	}
	return nil
}

func (s *Store) indexOf(id domain.SessionID) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.sessions, func(sess *domain.Session) bool {
		return sess.ID == id
	})
}
