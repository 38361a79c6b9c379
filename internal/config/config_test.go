package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usestring/ctxdts/pkg/dts"
	"github.com/usestring/ctxdts/pkg/registry"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, DefaultVarName, cfg.VarName)
	assert.Equal(t, registry.DefaultFilePath, cfg.VirtualFile)
	assert.Equal(t, dts.DefaultMaxDepth, cfg.InferMaxDepth)
	assert.Equal(t, dts.DefaultCommentLabel, cfg.InferCommentLabel)
	assert.Equal(t, DefaultInferWorkersValue, cfg.InferWorkers)
	assert.Equal(t, DefaultMaxSourceBytesValue, cfg.MaxSourceBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogCompress)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CTXDTS_VAR_NAME", "ctx")
	t.Setenv("INFER_MAX_DEPTH", "8")
	t.Setenv("INFER_COMMENT_LABEL", "Propiedad")
	t.Setenv("LOG_COMPRESS", "off")

	cfg := Load()
	assert.Equal(t, "ctx", cfg.VarName)
	assert.Equal(t, 8, cfg.InferMaxDepth)
	assert.False(t, cfg.LogCompress)
	assert.Equal(t, dts.Options{MaxDepth: 8, CommentLabel: "Propiedad"}, cfg.InferOptions())
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("INFER_WORKERS", "many")
	t.Setenv("LOG_COMPRESS", "maybe")

	cfg := Load()
	assert.Equal(t, DefaultInferWorkersValue, cfg.InferWorkers)
	assert.True(t, cfg.LogCompress)
}
