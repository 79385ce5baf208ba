package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/ridewise/internal/core/ports"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ridewise.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)

	_, err = s.GetItem(ctx, "ridewise-data")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	require.NoError(t, s.SetItem(ctx, "ridewise-data", []byte(`{"v":1}`)))
	require.NoError(t, s.SetItem(ctx, "ridewise-data", []byte(`{"v":2}`)))
	got, err := s.GetItem(ctx, "ridewise-data")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err = reopened.GetItem(ctx, "ridewise-data")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	require.NoError(t, reopened.RemoveItem(ctx, "ridewise-data"))
	_, err = reopened.GetItem(ctx, "ridewise-data")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}
