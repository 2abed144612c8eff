package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, 1536, cfg.Embedder.Dimension)
	assert.Equal(t, 800, cfg.Chunker.Size)
	assert.Equal(t, 150, cfg.Chunker.Overlap)
	assert.Equal(t, filepath.Join("data", "faiss_index"), cfg.VectorStore.Path)
	assert.Equal(t, 3, cfg.VectorStore.MaxSources)
	assert.Equal(t, filepath.Join("data", "feedback.jsonl"), cfg.Feedback.Path)
	assert.Equal(t, 20, cfg.Feedback.HistoryLimit)
	assert.Equal(t, MatchContains, cfg.Feedback.MatchMode)
	assert.Equal(t, 60, cfg.OpenAI.TimeoutSecs)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
chunker:
  size: 400
  overlap: 50
vector_store:
  max_sources: 5
feedback:
  match_mode: tokens
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Chunker.Size)
	assert.Equal(t, 50, cfg.Chunker.Overlap)
	assert.Equal(t, 5, cfg.VectorStore.MaxSources)
	assert.Equal(t, MatchTokens, cfg.Feedback.MatchMode)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoadLegacyEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  size: 400\n"), 0o644))

	t.Setenv("CHUNK_SIZE", "1200")
	t.Setenv("OPENAI_API_KEY", " sk-test ")
	t.Setenv("MAX_SOURCES", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1200, cfg.Chunker.Size)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, 4, cfg.VectorStore.MaxSources)
	assert.True(t, cfg.HasCredential())
}

func TestLoadPrefixedEnv(t *testing.T) {
	t.Setenv("CONTRACTQA_LLM_MODEL", "gpt-4o")
	t.Setenv("CONTRACTQA_FEEDBACK_MATCH_MODE", "tokens")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, MatchTokens, cfg.Feedback.MatchMode)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feedback:\n  match_mode: fuzzy\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "match_mode")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CONTRACTQA_OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Chunker.Size = 640
	cfg.LLM.Model = "gpt-4.1-mini"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 640, loaded.Chunker.Size)
	assert.Equal(t, "gpt-4.1-mini", loaded.LLM.Model)
	assert.False(t, loaded.HasCredential())
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))
	assert.True(t, zap.L().Core().Enabled(zap.WarnLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
