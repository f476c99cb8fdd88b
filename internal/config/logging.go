package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds a structured logger writing to w. stdout is reserved
// for the MCP stdio transport, so callers pass stderr.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Log logs the resolved settings in a granular way, masking secrets.
func Log(s *Settings, logger *slog.Logger) {
	logger.Info("config: db_path", "value", s.DBPath)
	logger.Info("config: embedder.provider", "value", s.Embedder.Provider)
	if s.Embedder.Model != "" {
		logger.Info("config: embedder.model", "value", s.Embedder.Model)
	}
	if s.Embedder.APIKey != "" {
		logger.Info("config: embedder.api_key", "value", "****")
	}
	if s.GitHub.Token != "" {
		logger.Info("config: github.token", "value", "****")
	}
	logger.Info("config: indexer.parsing_concurrency", "value", s.Indexer.ParsingConcurrency)
	logger.Info("config: indexer.batch_concurrency", "value", s.Indexer.BatchConcurrency)
	logger.Info("config: indexer.batch_segment_threshold", "value", s.Indexer.BatchSegmentThreshold)
}
