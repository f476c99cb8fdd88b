package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Embedding provider names accepted by the embedder factory.
const (
	ProviderOpenAI = "openai"
	ProviderJina   = "jina"
	ProviderLocal  = "local"
)

// GitHubSettings configures the source repository provider.
type GitHubSettings struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"` // for GitHub Enterprise; empty means github.com
}

// ScannerSettings configures file-tree filtering.
type ScannerSettings struct {
	MaxFileSize    int64    `mapstructure:"max_file_size"`
	IgnorePatterns []string `mapstructure:"ignore_patterns"`
}

// ParserSettings configures fallback line-window chunking.
type ParserSettings struct {
	WindowMinLines int `mapstructure:"window_min_lines"`
	WindowMaxLines int `mapstructure:"window_max_lines"`
}

// EmbedderSettings configures the embedding provider adapter.
type EmbedderSettings struct {
	Provider      string `mapstructure:"provider"`
	Model         string `mapstructure:"model"`
	APIKey        string `mapstructure:"api_key"`
	CacheSize     int    `mapstructure:"cache_size"`
	MaxBatchItems int    `mapstructure:"max_batch_items"`
	MaxBatchChars int    `mapstructure:"max_batch_chars"`
}

// IndexerSettings tunes the orchestrator's pools and flush threshold.
// These are deployment configuration, not architectural constants.
type IndexerSettings struct {
	ParsingConcurrency    int `mapstructure:"parsing_concurrency"`
	BatchConcurrency      int `mapstructure:"batch_concurrency"`
	BatchSegmentThreshold int `mapstructure:"batch_segment_threshold"`
}

// Settings is the resolved application configuration.
type Settings struct {
	LogLevel string           `mapstructure:"log_level"`
	DBPath   string           `mapstructure:"db_path"`
	GitHub   GitHubSettings   `mapstructure:"github"`
	Scanner  ScannerSettings  `mapstructure:"scanner"`
	Parser   ParserSettings   `mapstructure:"parser"`
	Embedder EmbedderSettings `mapstructure:"embedder"`
	Indexer  IndexerSettings  `mapstructure:"indexer"`
}

// LoadSettings loads settings from environment variables and an optional
// .env file.
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("db_path", defaultDBPath())

	v.SetDefault("scanner.max_file_size", int64(512*1024)) // 512KB
	v.SetDefault("scanner.ignore_patterns", defaultIgnorePatterns())

	v.SetDefault("parser.window_min_lines", 5)
	v.SetDefault("parser.window_max_lines", 60)

	v.SetDefault("embedder.provider", ProviderLocal)
	v.SetDefault("embedder.cache_size", 10000)
	v.SetDefault("embedder.max_batch_items", 50)
	v.SetDefault("embedder.max_batch_chars", 64*1024)

	v.SetDefault("indexer.parsing_concurrency", 8)
	v.SetDefault("indexer.batch_concurrency", 2)
	v.SetDefault("indexer.batch_segment_threshold", 60)

	v.SetEnvPrefix("REVIEWLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("github.token", "REVIEWLENS_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("embedder.api_key", "REVIEWLENS_EMBEDDER_API_KEY")
	_ = v.BindEnv("embedder.provider", "REVIEWLENS_EMBEDDER_PROVIDER")
	_ = v.BindEnv("embedder.model", "REVIEWLENS_EMBEDDER_MODEL")

	if flags != nil {
		_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
		_ = v.BindPFlag("db_path", flags.Lookup("db-path"))
		_ = v.BindPFlag("github.token", flags.Lookup("github-token"))
		_ = v.BindPFlag("embedder.provider", flags.Lookup("embedder-provider"))
		_ = v.BindPFlag("embedder.model", flags.Lookup("embedder-model"))
		_ = v.BindPFlag("indexer.parsing_concurrency", flags.Lookup("parsing-concurrency"))
		_ = v.BindPFlag("indexer.batch_concurrency", flags.Lookup("batch-concurrency"))
		_ = v.BindPFlag("indexer.batch_segment_threshold", flags.Lookup("batch-segment-threshold"))
	}

	// Optional .env file in the working directory
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	settings.DBPath = expandHomeDir(settings.DBPath)

	return &settings, nil
}

// ValidateSettings checks for invalid or inconsistent configuration.
func ValidateSettings(s *Settings) error {
	switch s.Embedder.Provider {
	case ProviderOpenAI, ProviderJina, ProviderLocal:
	default:
		return errors.New("embedder provider must be 'openai', 'jina' or 'local', got: " + s.Embedder.Provider)
	}

	if (s.Embedder.Provider == ProviderOpenAI || s.Embedder.Provider == ProviderJina) && s.Embedder.APIKey == "" {
		return errors.New("embedder provider '" + s.Embedder.Provider + "' requires an API key")
	}

	if s.Scanner.MaxFileSize <= 0 {
		return errors.New("scanner max_file_size must be positive")
	}

	if s.Parser.WindowMinLines <= 0 || s.Parser.WindowMaxLines <= 0 {
		return errors.New("parser window sizes must be positive")
	}
	if s.Parser.WindowMinLines > s.Parser.WindowMaxLines {
		return errors.New("parser window_min_lines must not exceed window_max_lines")
	}

	if s.Indexer.ParsingConcurrency <= 0 {
		return errors.New("indexer parsing_concurrency must be positive")
	}
	if s.Indexer.BatchConcurrency <= 0 {
		return errors.New("indexer batch_concurrency must be positive")
	}
	if s.Indexer.BatchSegmentThreshold <= 0 {
		return errors.New("indexer batch_segment_threshold must be positive")
	}

	return nil
}

// defaultIgnorePatterns covers dependency, build and VCS directories plus
// minified assets. Patterns support a single '*' wildcard token.
func defaultIgnorePatterns() []string {
	return []string{
		".git",
		"node_modules",
		"vendor",
		"dist",
		"build",
		"target",
		"__pycache__",
		".next",
		"*.min.js",
		"*.lock",
		"*.generated.go",
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reviewlens/index.db"
	}
	return filepath.Join(home, ".reviewlens", "index.db")
}

// expandHomeDir expands ~ to the user's home directory.
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}
