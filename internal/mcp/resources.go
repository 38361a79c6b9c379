package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/ctxdts/internal/langsvc"
	"github.com/usestring/ctxdts/internal/mcp/tools"
	"github.com/usestring/ctxdts/pkg/value"
)

// Resource URI scheme: ctxdts://
// Supported URIs:
//   ctxdts://context
//   ctxdts://libs
//   ctxdts://lib/{name}

// registerResources registers resources and their handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         tools.ContextResourceURI,
		Name:        "Context",
		Description: "The current workspace context as JSON, keys in insertion order.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceContext)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         tools.LibsResourceURI,
		Name:        "Declaration Files",
		Description: "Every live declaration file with its registration counters. More than one live file means registrations leaked.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceLibs)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.LibResourcePrefix + "{name}",
		Name:        "Declaration File",
		Description: "Text of a registered declaration file. Tools already return the declaration; fetch this to see exactly what the language service holds.",
		MIMEType:    tools.MimeTypeScript,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceLib)
}

// Resource handlers

func (s *Server) handleResourceContext(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	if _, err := parseResourceURI(req.Params.URI); err != nil {
		return nil, err
	}

	data, err := value.Marshal(s.deps.Workspace.Context())
	if err != nil {
		return nil, fmt.Errorf("serializing context: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("serializing context: %w", err)
	}

	return textResult(req.Params.URI, tools.MimeJSON, buf.String()), nil
}

func (s *Server) handleResourceLibs(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	if _, err := parseResourceURI(req.Params.URI); err != nil {
		return nil, err
	}

	content := map[string]any{
		"stats": tools.BuildLibStats(s.deps.Service),
		"libs":  []langsvc.ExtraLib{},
	}
	if s.deps.Service != nil {
		content["libs"] = s.deps.Service.ExtraLibs()
	}
	return toResourceResult(req.Params.URI, content)
}

func (s *Server) handleResourceLib(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if s.deps.Service == nil {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	name := params["name"]
	for _, lib := range s.deps.Service.ExtraLibs() {
		if tools.LibResourceURI(lib.FilePath) == tools.LibResourcePrefix+name {
			return textResult(req.Params.URI, tools.MimeTypeScript, lib.Content), nil
		}
	}
	return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
}

// Helper functions

// parseResourceURI extracts parameters from a ctxdts:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, "ctxdts://") {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected ctxdts://")
	}

	path := strings.TrimPrefix(uri, "ctxdts://")
	parts := strings.Split(path, "/")

	params := make(map[string]string)
	resourceType := parts[0]

	switch resourceType {
	case "":
		return nil, tools.ErrInvalidInput("empty resource path")

	case "context":
		if len(parts) > 1 {
			return nil, tools.ErrInvalidInput("context URI takes no path")
		}

	case "libs":
		if len(parts) > 1 {
			return nil, tools.ErrInvalidInput("libs URI takes no path")
		}

	case "lib":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("lib URI requires a file name")
		}
		params["name"] = strings.Join(parts[1:], "/")

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}
	return textResult(uri, tools.MimeJSON, string(data)), nil
}

func textResult(uri, mime, text string) *sdkmcp.ReadResourceResult {
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: mime,
				Text:     text,
			},
		},
	}
}
