package firestore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studybuddy/internal/adapters/storage/firestore"
	"github.com/PabloGalante/studybuddy/internal/domain"
)

// newEmulatorStore connects to the emulator named by FIRESTORE_EMULATOR_HOST.
// Each call gets its own client id so tests never share documents.
func newEmulatorStore(t *testing.T) *firestore.Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	s, err := firestore.NewStore(context.Background(), "studybuddy-test", "client-"+uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStoreRequiresIDs(t *testing.T) {
	ctx := context.Background()

	_, err := firestore.NewStore(ctx, "", "client")
	assert.Error(t, err)

	_, err = firestore.NewStore(ctx, "project", "")
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newEmulatorStore(t)

	_, err := s.Get(ctx, "studybuddy_save_preference")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "studybuddy_save_preference", "true"))
	require.NoError(t, s.Set(ctx, "studybuddy_save_preference", "false"))
	require.NoError(t, s.Set(ctx, "studybuddy_sessions", `[{"id":"a"}]`))

	v, err := s.Get(ctx, "studybuddy_save_preference")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"studybuddy_save_preference", "studybuddy_sessions"}, keys)

	require.NoError(t, s.Delete(ctx, "studybuddy_sessions"))
	_, err = s.Get(ctx, "studybuddy_sessions")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreDeleteMissingKey(t *testing.T) {
	s := newEmulatorStore(t)
	assert.NoError(t, s.Delete(context.Background(), "never-written"))
}

func TestStoreClientsAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := newEmulatorStore(t)
	b := newEmulatorStore(t)

	require.NoError(t, a.Set(ctx, "studybuddy_logging_preference", "true"))

	_, err := b.Get(ctx, "studybuddy_logging_preference")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
