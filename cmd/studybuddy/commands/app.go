package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PabloGalante/studybuddy/internal/adapters/llm"
	"github.com/PabloGalante/studybuddy/internal/adapters/logclient"
	filestore "github.com/PabloGalante/studybuddy/internal/adapters/storage/file"
	firestorestore "github.com/PabloGalante/studybuddy/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/studybuddy/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/studybuddy/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/studybuddy/internal/app/conversation"
	"github.com/PabloGalante/studybuddy/internal/app/prefs"
	"github.com/PabloGalante/studybuddy/internal/app/sessions"
	"github.com/PabloGalante/studybuddy/internal/config"
	"github.com/PabloGalante/studybuddy/internal/domain"
	"github.com/PabloGalante/studybuddy/internal/observability"
)

// app is the client wired from config: persisted state, the session store
// bound to it and the conversation service. Without an LLM the service can
// only read sessions.
type app struct {
	cfg      *config.Config
	state    domain.StateStore
	binder   *prefs.Binder
	sessions *sessions.Store
	svc      *conversation.Service

	closeState func() error
}

func newApp(ctx context.Context, cfg *config.Config, withLLM bool) (*app, error) {
	state, closeState, err := openState(ctx, cfg)
	if err != nil {
		return nil, err
	}

	binder := prefs.NewBinder(state)
	store := sessions.NewStore(sessions.Hooks{OnSessionsChanged: binder.OnSessionsChanged})

	loaded, err := binder.Load(ctx)
	if err != nil {
		_ = closeState()
		return nil, fmt.Errorf("loading saved state: %w", err)
	}
	store.Replace(loaded.Sessions)

	a := &app{
		cfg:        cfg,
		state:      state,
		binder:     binder,
		sessions:   store,
		closeState: closeState,
	}

	if !withLLM {
		a.svc = conversation.NewService(nil, store, nil, nil)
		return a, nil
	}

	client, err := newStreamClient(ctx, cfg)
	if err != nil {
		_ = closeState()
		return nil, err
	}
	a.svc = conversation.NewService(client, store, binder, logclient.New(cfg.LoggerURL))
	return a, nil
}

// Close waits for pending log sends and releases the state backend.
func (a *app) Close() error {
	a.svc.Wait()
	return a.closeState()
}

func openState(ctx context.Context, cfg *config.Config) (domain.StateStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StateBackend {
	case config.BackendMemory:
		return memstore.NewStateStore(), noop, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o700); err != nil {
			return nil, nil, fmt.Errorf("creating state dir: %w", err)
		}
		st, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil

	case config.BackendFirestore:
		st, err := firestorestore.NewStore(ctx, cfg.GCPProjectID, cfg.ClientID)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil

	default:
		st, err := filestore.NewStateStore(cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		return st, noop, nil
	}
}

func newStreamClient(ctx context.Context, cfg *config.Config) (domain.StreamClient, error) {
	log := observability.Logger()
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		return llm.NewMockLLM(), nil
	}

	log.Info("using Gemini LLM client", "model", cfg.ModelName, "vertex", cfg.Mode == config.ModeGCP)
	client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:       cfg.APIKey,
		Project:      cfg.GCPProjectID,
		Location:     cfg.GCPLocation,
		Model:        cfg.ModelName,
		UseVertex:    cfg.Mode == config.ModeGCP,
		GoogleSearch: cfg.GoogleSearch,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing Gemini client: %w", err)
	}
	return client, nil
}

// initLogging sends client logs to the configured file so they never mix
// with terminal output.
func initLogging(cfg *config.Config) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	observability.Init(f, cfg.LogLevel)
	return f.Close, nil
}
