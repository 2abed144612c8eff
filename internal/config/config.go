package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Match modes for associating feedback with a question.
const (
	MatchContains = "contains"
	MatchTokens   = "tokens"
)

// OpenAIConfig holds the credential and transport settings shared by the
// embedding and generation backends.
type OpenAIConfig struct {
	APIKey      string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EmbedderConfig configures the embedding provider.
type EmbedderConfig struct {
	Model     string `yaml:"model" mapstructure:"model"`
	Dimension int    `yaml:"dimension" mapstructure:"dimension"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// LLMConfig configures the generation model.
type LLMConfig struct {
	Model string `yaml:"model" mapstructure:"model"`
}

// ChunkerConfig configures how pages are split into chunks.
type ChunkerConfig struct {
	Size    int `yaml:"size" mapstructure:"size"`
	Overlap int `yaml:"overlap" mapstructure:"overlap"`
}

// VectorStoreConfig configures where the index lives and how much it returns.
type VectorStoreConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	MaxSources int    `yaml:"max_sources" mapstructure:"max_sources"`
}

// FeedbackConfig configures the feedback log.
type FeedbackConfig struct {
	Path         string `yaml:"path" mapstructure:"path"`
	HistoryLimit int    `yaml:"history_limit" mapstructure:"history_limit"`
	MatchMode    string `yaml:"match_mode" mapstructure:"match_mode"`
}

// SummarizerConfig configures the document overview shown after an upload.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences" mapstructure:"max_sentences"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	OpenAI      OpenAIConfig      `yaml:"openai" mapstructure:"openai"`
	Embedder    EmbedderConfig    `yaml:"embedder" mapstructure:"embedder"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Chunker     ChunkerConfig     `yaml:"chunker" mapstructure:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store" mapstructure:"vector_store"`
	Feedback    FeedbackConfig    `yaml:"feedback" mapstructure:"feedback"`
	Summarizer  SummarizerConfig  `yaml:"summarizer" mapstructure:"summarizer"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// legacyEnv maps config keys to the plain environment variable names the
// application has always honoured, next to the CONTRACTQA_ prefixed ones.
var legacyEnv = map[string]string{
	"openai.api_key":           "OPENAI_API_KEY",
	"llm.model":                "LLM_MODEL",
	"embedder.model":           "EMBEDDING_MODEL",
	"chunker.size":             "CHUNK_SIZE",
	"chunker.overlap":          "CHUNK_OVERLAP",
	"vector_store.path":        "FAISS_INDEX_PATH",
	"vector_store.max_sources": "MAX_SOURCES",
	"feedback.path":            "FEEDBACK_FILE_PATH",
	"feedback.history_limit":   "FEEDBACK_HISTORY_LIMIT",
}

// Load reads configuration from the given YAML file (or the default search
// locations when path is empty) and the environment. A missing file is not an
// error; defaults apply.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	readFile := true
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
		} else if errors.Is(err, os.ErrNotExist) {
			readFile = false
		} else {
			return nil, eris.Wrapf(err, "config: stat %s", path)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if dir, err := userConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("CONTRACTQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "CONTRACTQA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", env)
		}
	}

	setDefaults(v)

	if readFile {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, eris.Wrap(err, "config: read file")
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		OpenAI:      OpenAIConfig{TimeoutSecs: 60},
		Embedder:    EmbedderConfig{Model: "text-embedding-3-small", Dimension: 1536, BatchSize: 64},
		LLM:         LLMConfig{Model: "gpt-4o-mini"},
		Chunker:     ChunkerConfig{Size: 800, Overlap: 150},
		VectorStore: VectorStoreConfig{Path: filepath.Join("data", "faiss_index"), MaxSources: 3},
		Feedback:    FeedbackConfig{Path: filepath.Join("data", "feedback.jsonl"), HistoryLimit: 20, MatchMode: MatchContains},
		Summarizer:  SummarizerConfig{MaxSentences: 3},
		Log:         LogConfig{Level: "info", Format: "console"},
	}
	return cfg
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "config: create dir for %s", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}
	return nil
}

// DefaultPath is where `config init` writes when no path is given.
func DefaultPath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *AppConfig) Validate() error {
	if c.Chunker.Size <= 0 {
		return eris.New("config: chunker.size must be positive")
	}
	if c.Chunker.Overlap < 0 {
		return eris.New("config: chunker.overlap must not be negative")
	}
	if c.VectorStore.MaxSources <= 0 {
		return eris.New("config: vector_store.max_sources must be positive")
	}
	if c.Embedder.Dimension <= 0 {
		return eris.New("config: embedder.dimension must be positive")
	}
	switch c.Feedback.MatchMode {
	case MatchContains, MatchTokens:
	default:
		return eris.Errorf("config: unknown feedback.match_mode %q", c.Feedback.MatchMode)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	return nil
}

// HasCredential reports whether a generation/embedding API key is configured.
func (c *AppConfig) HasCredential() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.timeout_secs", d.OpenAI.TimeoutSecs)
	v.SetDefault("embedder.model", d.Embedder.Model)
	v.SetDefault("embedder.dimension", d.Embedder.Dimension)
	v.SetDefault("embedder.batch_size", d.Embedder.BatchSize)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("chunker.size", d.Chunker.Size)
	v.SetDefault("chunker.overlap", d.Chunker.Overlap)
	v.SetDefault("vector_store.path", d.VectorStore.Path)
	v.SetDefault("vector_store.max_sources", d.VectorStore.MaxSources)
	v.SetDefault("feedback.path", d.Feedback.Path)
	v.SetDefault("feedback.history_limit", d.Feedback.HistoryLimit)
	v.SetDefault("feedback.match_mode", d.Feedback.MatchMode)
	v.SetDefault("summarizer.max_sentences", d.Summarizer.MaxSentences)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func userConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "contractqa"), nil
}

func applyConfigDefaults(cfg *AppConfig) {
	d := Default()
	if cfg.OpenAI.TimeoutSecs <= 0 {
		cfg.OpenAI.TimeoutSecs = d.OpenAI.TimeoutSecs
	}
	if cfg.Embedder.BatchSize <= 0 {
		cfg.Embedder.BatchSize = d.Embedder.BatchSize
	}
	if cfg.Feedback.HistoryLimit <= 0 {
		cfg.Feedback.HistoryLimit = d.Feedback.HistoryLimit
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = d.Summarizer.MaxSentences
	}
	cfg.Feedback.MatchMode = strings.ToLower(strings.TrimSpace(cfg.Feedback.MatchMode))
	cfg.OpenAI.APIKey = strings.TrimSpace(cfg.OpenAI.APIKey)
}
