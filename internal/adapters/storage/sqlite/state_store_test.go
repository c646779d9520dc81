package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studybuddy/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/studybuddy/internal/domain"
)

func TestStateStoreUpsertAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "studybuddy_save_preference")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "studybuddy_save_preference", "true"))
	require.NoError(t, s.Set(ctx, "studybuddy_save_preference", "false"))
	require.NoError(t, s.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	v, err := reopened.Get(ctx, "studybuddy_save_preference")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	keys, err := reopened.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"studybuddy_save_preference"}, keys)

	require.NoError(t, reopened.Delete(ctx, "studybuddy_save_preference"))
	_, err = reopened.Get(ctx, "studybuddy_save_preference")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}
