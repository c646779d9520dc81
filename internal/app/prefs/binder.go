// Package prefs connects the session store and the two user preferences to a
// domain.StateStore.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/PabloGalante/studybuddy/internal/domain"
	"github.com/PabloGalante/studybuddy/internal/observability"
)

// Storage keys, shared with the web client's local storage layout.
const (
	KeySavePreference    = "studybuddy_save_preference"
	KeyLoggingPreference = "studybuddy_logging_preference"
	KeySessions          = "studybuddy_sessions"
)

// State is what Load recovers at startup.
type State struct {
	SaveHistory bool
	ShareLogs   bool
	Sessions    []domain.Session
}

// Binder writes preference changes and session lists through to a StateStore.
// Session writes happen only while history saving is enabled.
type Binder struct {
	store domain.StateStore

	mu          sync.RWMutex
	saveHistory bool
	shareLogs   bool
}

func NewBinder(store domain.StateStore) *Binder {
	return &Binder{
		store:       store,
		saveHistory: true,
	}
}

// Load reads both preferences and, when history saving is on, the session list.
// Save history defaults to on and log sharing to off. A corrupt session list is
// logged and treated as empty.
func (b *Binder) Load(ctx context.Context) (State, error) {
	log := observability.LoggerFromContext(ctx)

	saveRaw, saveSet, err := b.get(ctx, KeySavePreference)
	if err != nil {
		return State{}, err
	}
	logRaw, _, err := b.get(ctx, KeyLoggingPreference)
	if err != nil {
		return State{}, err
	}

	st := State{
		SaveHistory: !saveSet || saveRaw == "true",
		ShareLogs:   logRaw == "true",
	}

	if st.SaveHistory {
		raw, ok, err := b.get(ctx, KeySessions)
		if err != nil {
			return State{}, err
		}
		if ok {
			if err := json.Unmarshal([]byte(raw), &st.Sessions); err != nil {
				log.Warn("discarding unreadable saved sessions", "error", err)
				st.Sessions = nil
			}
		}
	}

	b.mu.Lock()
	b.saveHistory = st.SaveHistory
	b.shareLogs = st.ShareLogs
	b.mu.Unlock()

	log.Info("client state loaded",
		"save_history", st.SaveHistory,
		"share_logs", st.ShareLogs,
		"sessions", len(st.Sessions),
	)
	return st, nil
}

func (b *Binder) SaveHistory() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.saveHistory
}

func (b *Binder) ShareLogs() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.shareLogs
}

// OnSavePreferenceChanged persists the preference. Turning it off deletes the
// saved sessions; turning it back on does not bring them back.
func (b *Binder) OnSavePreferenceChanged(ctx context.Context, enabled bool) error {
	b.mu.Lock()
	b.saveHistory = enabled
	b.mu.Unlock()

	if err := b.store.Set(ctx, KeySavePreference, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	if !enabled {
		if err := b.store.Delete(ctx, KeySessions); err != nil {
			return fmt.Errorf("clear saved sessions: %w", err)
		}
	}
	return nil
}

func (b *Binder) OnLoggingPreferenceChanged(ctx context.Context, enabled bool) error {
	b.mu.Lock()
	b.shareLogs = enabled
	b.mu.Unlock()

	if err := b.store.Set(ctx, KeyLoggingPreference, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("logging preference: %w", err)
	}
	return nil
}

// OnSessionsChanged matches sessions.Hooks.OnSessionsChanged. Persistence is
// best effort: failures are logged and the in-memory list stays authoritative.
func (b *Binder) OnSessionsChanged(list []domain.Session) {
	if !b.SaveHistory() {
		return
	}

	if err := b.saveSessions(context.Background(), list); err != nil {
		observability.Logger().Warn("failed to persist sessions", "error", err)
	}
}

func (b *Binder) saveSessions(ctx context.Context, list []domain.Session) error {
	if list == nil {
		list = []domain.Session{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	return b.store.Set(ctx, KeySessions, string(data))
}

func (b *Binder) get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, true, nil
}
