package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.GetSetting(ctx, "profileImage")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutSetting(ctx, "profileImage", "data:image/png;base64,AAA"))
	require.NoError(t, s.PutSetting(ctx, "profileImage", "data:image/png;base64,BBB"))

	v, ok, err := s.GetSetting(ctx, "profileImage")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,BBB", v)
}

func TestSettings_PersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/library.db"

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.PutSetting(ctx, "theme", "dark"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}
