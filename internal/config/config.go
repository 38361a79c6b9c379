// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/usestring/ctxdts/pkg/dts"
	"github.com/usestring/ctxdts/pkg/registry"
)

// Declaration defaults
const (
	DefaultVarName = "contexto"
)

// Processing safety cap defaults
const (
	DefaultInferWorkersValue       = 8
	DefaultMaxSourceBytesValue     = 1 << 20
	DefaultMaxBatchSourcesValue    = 32
	DefaultDeclarationCacheEntries = 256
)

// Config holds all configuration for the server.
type Config struct {
	VarName     string // CTXDTS_VAR_NAME, default "contexto"
	VirtualFile string // CTXDTS_VIRTUAL_FILE, default "ts:filename/contexto.d.ts"

	// Inference
	InferMaxDepth     int    // INFER_MAX_DEPTH, default 64
	InferCommentLabel string // INFER_COMMENT_LABEL, default "Property"
	InferWorkers      int    // INFER_WORKERS, default 8

	// Processing safety caps
	MaxSourceBytes          int // MAX_SOURCE_BYTES, default 1MiB
	MaxBatchSources         int // MAX_BATCH_SOURCES, default 32
	DeclarationCacheEntries int // DECLARATION_CACHE_MAX_ITEMS, default 256

	// Initial context loaded when the server starts
	InitialContextFile string // CTXDTS_CONTEXT_FILE, default "" (empty object)

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		VarName:     getEnvString("CTXDTS_VAR_NAME", DefaultVarName),
		VirtualFile: getEnvString("CTXDTS_VIRTUAL_FILE", registry.DefaultFilePath),

		InferMaxDepth:     getEnvInt("INFER_MAX_DEPTH", dts.DefaultMaxDepth),
		InferCommentLabel: getEnvString("INFER_COMMENT_LABEL", dts.DefaultCommentLabel),
		InferWorkers:      getEnvInt("INFER_WORKERS", DefaultInferWorkersValue),

		MaxSourceBytes:          getEnvInt("MAX_SOURCE_BYTES", DefaultMaxSourceBytesValue),
		MaxBatchSources:         getEnvInt("MAX_BATCH_SOURCES", DefaultMaxBatchSourcesValue),
		DeclarationCacheEntries: getEnvInt("DECLARATION_CACHE_MAX_ITEMS", DefaultDeclarationCacheEntries),

		InitialContextFile: getEnvString("CTXDTS_CONTEXT_FILE", ""),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// InferOptions returns the inferencer options described by the config.
func (c *Config) InferOptions() dts.Options {
	return dts.Options{
		MaxDepth:     c.InferMaxDepth,
		CommentLabel: c.InferCommentLabel,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
