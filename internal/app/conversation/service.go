package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PabloGalante/studybuddy/internal/app/sessions"
	"github.com/PabloGalante/studybuddy/internal/app/stream"
	"github.com/PabloGalante/studybuddy/internal/domain"
	"github.com/PabloGalante/studybuddy/internal/observability"
)

var (
	ErrEmptyQuery = errors.New("query is empty")
	ErrBusy       = errors.New("a reply is still streaming")
	// ErrConnection is returned when the stream fails. The cause is only logged.
	ErrConnection = errors.New("stream failed")
)

// ConnectionErrorMessage is the text shown to the user when ErrConnection is returned.
const ConnectionErrorMessage = "Connection error. Please try again."

// UserMessage maps err to the text shown to the user.
func UserMessage(err error) string {
	if errors.Is(err, ErrConnection) {
		return ConnectionErrorMessage
	}
	return err.Error()
}

// QuickPrompts are the topics offered as one-tap questions.
var QuickPrompts = []string{"Anmeldung", "Insurance", "Jobs"}

// QuickPrompt turns a topic into the question it submits.
func QuickPrompt(topic string) string {
	return "Tell me about " + topic
}

// Preferences is the part of the preference state the submit flow reads.
type Preferences interface {
	ShareLogs() bool
}

type Service struct {
	llm      domain.StreamClient
	sessions *sessions.Store
	prefs    Preferences
	sink     domain.LogSink
	now      func() time.Time

	busy    atomic.Bool
	pending sync.WaitGroup
}

// NewService wires the submit flow. prefs and sink may be nil, which disables log sharing.
func NewService(
	llm domain.StreamClient,
	store *sessions.Store,
	prefs Preferences,
	sink domain.LogSink,
) *Service {
	return &Service{
		llm:      llm,
		sessions: store,
		prefs:    prefs,
		sink:     sink,
		now:      time.Now,
	}
}

// Update is passed to the caller after every streamed fragment.
type Update struct {
	SessionID domain.SessionID
	Snapshot  stream.Snapshot
}

type SubmitResult struct {
	SessionID domain.SessionID
	Reply     stream.Snapshot
}

// Busy reports whether a reply is streaming.
func (s *Service) Busy() bool {
	return s.busy.Load()
}

// Submit sends query to the model and streams the reply into the active
// session, creating one if none is active. A query that is only whitespace is
// rejected; any other query is stored and sent exactly as given. On
// ErrConnection the partial reply stays in the session and the result carries it.
func (s *Service) Submit(ctx context.Context, query string, onUpdate func(Update)) (*SubmitResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	id, ok := s.sessions.ActiveID()
	if !ok {
		id = s.sessions.CreateSession(query).ID
	}

	log := observability.LoggerFromContext(ctx).With("session_id", id)
	log.Info("submitting query", "chars", len(query))

	now := domain.TimestampOf(s.now())
	s.sessions.AppendMessages(id,
		domain.Message{Role: domain.RoleUser, Content: query, Timestamp: now},
		domain.Message{Role: domain.RoleAssistant, Content: "", Timestamp: now},
	)

	reply, err := stream.Aggregate(ctx, s.llm.AskStream(ctx, query), func(snap stream.Snapshot) {
		s.sessions.SetAssistantReply(id, snap.Text, snap.Citations)
		if onUpdate != nil {
			onUpdate(Update{SessionID: id, Snapshot: snap})
		}
	})
	res := &SubmitResult{SessionID: id, Reply: reply}
	if err != nil {
		log.Error("stream failed", "error", err, "partial_chars", len(reply.Text))
		return res, ErrConnection
	}

	log.Info("reply completed", "chars", len(reply.Text), "citations", len(reply.Citations))

	if s.sink != nil && s.prefs != nil && s.prefs.ShareLogs() {
		s.shareLog(domain.LogEntry{
			SessionID:     id,
			UserText:      query,
			AssistantText: reply.Text,
			Citations:     reply.Citations,
		})
	}
	return res, nil
}

// Timeline returns the messages of a session.
func (s *Service) Timeline(ctx context.Context, id domain.SessionID) (domain.Session, bool) {
	sess, ok := s.sessions.Get(id)
	observability.LoggerFromContext(ctx).Debug("fetched session timeline",
		"session_id", id, "found", ok, "message_count", len(sess.Messages))
	return sess, ok
}

// Wait blocks until every log send started by Submit has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// shareLog sends the entry in the background. Failures are only logged.
func (s *Service) shareLog(entry domain.LogEntry) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.sink.Send(ctx, entry); err != nil {
			observability.WithFields("session_id", entry.SessionID).Warn("failed to share log", "error", err)
		}
	}()
}
