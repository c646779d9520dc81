package httpadapter

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/PabloGalante/studybuddy/internal/logstore"
	"github.com/PabloGalante/studybuddy/internal/observability"
)

// DefaultMaxBodyBytes caps /log request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Appender persists accepted log records.
type Appender interface {
	Append(rec logstore.Record) error
}

type Options struct {
	MaxBodyBytes int64
	// RateLimit is requests per second across all clients; 0 disables limiting.
	RateLimit float64
	Burst     int
}

type Server struct {
	logs    Appender
	maxBody int64
	now     func() time.Time
}

// NewServer returns the logging server handler with its middleware chain applied.
func NewServer(logs Appender, opts Options) http.Handler {
	s := &Server{
		logs:    logs,
		maxBody: opts.MaxBodyBytes,
		now:     time.Now,
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/log", s.handleLog)

	// applied inside out: CORS answers preflights before the limiter sees them
	return chainMiddlewares(mux,
		withRateLimit(opts.RateLimit, opts.Burst),
		withCORS,
		withLogging,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type logRequest struct {
	Consent       any            `json:"consent"`
	UserText      string         `json:"userText"`
	AssistantText string         `json:"assistantText"`
	Sources       []string       `json:"sources"`
	Meta          map[string]any `json:"meta"`
}

type okResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	log := observability.LoggerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, okResponse{Error: "request body too large"})
			return
		}
		badRequest(w, "invalid JSON body")
		return
	}

	if !truthy(req.Consent) {
		badRequest(w, "User did not consent")
		return
	}

	rec := logstore.Record{
		Timestamp:     s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		UserText:      logstore.Redact(req.UserText),
		AssistantText: logstore.Redact(req.AssistantText),
		Sources:       req.Sources,
		Meta:          req.Meta,
	}
	if err := s.logs.Append(rec); err != nil {
		log.Error("failed to append log record", "error", err)
		internalError(w, err)
		return
	}

	log.Info("log record stored", "sources", len(rec.Sources))
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// truthy treats false, 0, "", null and a missing field as no consent.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, okResponse{Error: msg})
}

func internalError(w http.ResponseWriter, _ error) {
	writeJSON(w, http.StatusInternalServerError, okResponse{Error: "internal server error"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, okResponse{Error: "method not allowed"})
}
