package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractqa/internal/domain"
	"contractqa/internal/embedding/zero"
	"contractqa/internal/vectorstore"
)

func TestSessionReplaceAndLoad(t *testing.T) {
	var s Session
	assert.Nil(t, s.Current())

	chunks := []domain.Chunk{{Text: "Delaware law governs.", Page: 3}}
	idx, err := vectorstore.Build(context.Background(), chunks, zero.NewEmbedder(4), 2)
	require.NoError(t, err)
	s.Replace(idx)
	assert.Same(t, idx, s.Current())

	dir := filepath.Join(t.TempDir(), "index")
	require.NoError(t, idx.Save(dir))

	var restored Session
	require.NoError(t, restored.Load(dir, 2))
	require.NotNil(t, restored.Current())
	assert.Equal(t, chunks, restored.Current().Chunks())
}

func TestSessionLoadMissingKeepsCurrent(t *testing.T) {
	var s Session
	idx, err := vectorstore.Build(context.Background(), []domain.Chunk{{Text: "x", Page: 1}}, zero.NewEmbedder(2), 1)
	require.NoError(t, err)
	s.Replace(idx)

	err = s.Load(filepath.Join(t.TempDir(), "absent"), 1)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Same(t, idx, s.Current())
}
