package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "type_context",
		Description: "RECOMMENDED: Walk through typing a JSON or YAML context so an editor can autocomplete it. Start here - explains the tools, their order, and how the declaration is registered.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "sample",
				Description: "A sample context document to start from",
				Required:    false,
			},
			{
				Name:        "format",
				Description: "Format of the sample: json (default) or yaml",
				Required:    false,
			},
		},
	}, HandleTypeContext(cfg))
}
