// Package prompts contains MCP prompt implementations for ctxdts.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	VarName     string
	VirtualFile string
}
