package prefs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studybuddy/internal/adapters/storage/memory"
	"github.com/PabloGalante/studybuddy/internal/app/prefs"
	"github.com/PabloGalante/studybuddy/internal/app/sessions"
	"github.com/PabloGalante/studybuddy/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	b := prefs.NewBinder(memory.NewStateStore())

	st, err := b.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, st.SaveHistory)
	assert.False(t, st.ShareLogs)
	assert.Empty(t, st.Sessions)
}

func TestSessionsPersistWhileSaving(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStateStore()
	b := prefs.NewBinder(kv)
	_, err := b.Load(ctx)
	require.NoError(t, err)

	store := sessions.NewStore(sessions.Hooks{OnSessionsChanged: b.OnSessionsChanged})
	sess := store.CreateSession("Where do I register my address?")
	store.AppendMessages(sess.ID, domain.Message{Role: domain.RoleUser, Content: "Where do I register my address?"})

	st, err := prefs.NewBinder(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, st.Sessions, 1)
	assert.Equal(t, sess.ID, st.Sessions[0].ID)
	assert.Len(t, st.Sessions[0].Messages, 1)
}

func TestDisablingSaveClearsPersistedSessions(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStateStore()
	b := prefs.NewBinder(kv)
	_, err := b.Load(ctx)
	require.NoError(t, err)

	b.OnSessionsChanged([]domain.Session{{ID: "a", Title: "a"}})
	_, err = kv.Get(ctx, prefs.KeySessions)
	require.NoError(t, err)

	require.NoError(t, b.OnSavePreferenceChanged(ctx, false))
	_, err = kv.Get(ctx, prefs.KeySessions)
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	// no writes while disabled
	b.OnSessionsChanged([]domain.Session{{ID: "b", Title: "b"}})
	_, err = kv.Get(ctx, prefs.KeySessions)
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	st, err := prefs.NewBinder(kv).Load(ctx)
	require.NoError(t, err)
	assert.False(t, st.SaveHistory)
	assert.Empty(t, st.Sessions)

	// re-enabling does not resurrect "a"
	require.NoError(t, b.OnSavePreferenceChanged(ctx, true))
	st, err = prefs.NewBinder(kv).Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.SaveHistory)
	assert.Empty(t, st.Sessions)
}

func TestLoadSkipsSessionsWhenSavingDisabled(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStateStore()
	require.NoError(t, kv.Set(ctx, prefs.KeySavePreference, "false"))
	require.NoError(t, kv.Set(ctx, prefs.KeySessions, `[{"id":"stale","title":"t","messages":[],"createdAt":1}]`))

	st, err := prefs.NewBinder(kv).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Sessions)
}

func TestLoadFallsBackOnCorruptSessions(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStateStore()
	require.NoError(t, kv.Set(ctx, prefs.KeySessions, `{not json`))

	st, err := prefs.NewBinder(kv).Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.SaveHistory)
	assert.Empty(t, st.Sessions)
}

func TestLoggingPreference(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStateStore()
	b := prefs.NewBinder(kv)

	require.NoError(t, b.OnLoggingPreferenceChanged(ctx, true))
	assert.True(t, b.ShareLogs())

	st, err := prefs.NewBinder(kv).Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.ShareLogs)
}

func TestPersistedSessionShape(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStateStore()
	b := prefs.NewBinder(kv)

	b.OnSessionsChanged([]domain.Session{{
		ID:    "abc",
		Title: "t",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "q", Timestamp: 1},
			{Role: domain.RoleAssistant, Content: "a", Timestamp: 2, Citations: []domain.Citation{{URI: "https://x", Title: "X"}}},
		},
		CreatedAt: 1,
	}})

	raw, err := kv.Get(ctx, prefs.KeySessions)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"abc","title":"t","createdAt":1,"messages":[
		{"role":"user","content":"q","timestamp":1},
		{"role":"assistant","content":"a","timestamp":2,"sources":[{"uri":"https://x","title":"X"}]}
	]}]`, raw)
}

// slowSessionsStore delays one write of the session list once armed.
type slowSessionsStore struct {
	*memory.StateStore

	mu      sync.Mutex
	armed   bool
	started chan struct{}
}

func (s *slowSessionsStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	delay := s.armed && key == prefs.KeySessions
	if delay {
		s.armed = false
	}
	s.mu.Unlock()

	if delay {
		close(s.started)
		time.Sleep(100 * time.Millisecond)
	}
	return s.StateStore.Set(ctx, key, value)
}

func TestDeleteDuringSlowWriteStaysDeleted(t *testing.T) {
	ctx := context.Background()
	kv := &slowSessionsStore{StateStore: memory.NewStateStore(), started: make(chan struct{})}
	b := prefs.NewBinder(kv)
	_, err := b.Load(ctx)
	require.NoError(t, err)

	store := sessions.NewStore(sessions.Hooks{OnSessionsChanged: b.OnSessionsChanged})
	sess := store.CreateSession("Jobs?")
	store.AppendMessages(sess.ID,
		domain.Message{Role: domain.RoleUser, Content: "Jobs?"},
		domain.Message{Role: domain.RoleAssistant},
	)

	kv.mu.Lock()
	kv.armed = true
	kv.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.SetAssistantReply(sess.ID, "OFFICIAL RULE: 20 hours a week.", nil)
	}()

	<-kv.started
	require.True(t, store.DeleteSession(sess.ID))
	<-done

	assert.Equal(t, 0, store.Len())
	st, err := prefs.NewBinder(kv).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Sessions, "a deleted session must not come back from storage")
}
