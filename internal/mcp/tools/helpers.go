// Package tools contains MCP tool implementations for ctxdts.
package tools

import (
	"fmt"
	"path"

	"github.com/usestring/ctxdts/internal/langsvc"
	"github.com/usestring/ctxdts/internal/workspace"
	"github.com/usestring/ctxdts/pkg/contenttype"
	"github.com/usestring/ctxdts/pkg/types"
	"github.com/usestring/ctxdts/pkg/value"
)

// MIME type constants.
const (
	MimeJSON       = "application/json"
	MimeTypeScript = "application/typescript"
)

// Resource URIs.
const (
	ContextResourceURI = "ctxdts://context"
	LibsResourceURI    = "ctxdts://libs"
	LibResourcePrefix  = "ctxdts://lib/"
)

// LibResourceURI returns the resource URI for a virtual file.
func LibResourceURI(filePath string) string {
	return LibResourcePrefix + path.Base(filePath)
}

// BuildDeclarationInfo converts a workspace snapshot into its tool form.
func BuildDeclarationInfo(snap workspace.Snapshot) types.DeclarationInfo {
	info := types.DeclarationInfo{
		VarName:     snap.VarName,
		VirtualFile: snap.VirtualFile,
		State:       snap.State.String(),
		Declaration: snap.Declaration,
		Active:      snap.Active,
		Updates:     snap.Updates,
	}
	if !snap.UpdatedAt.IsZero() {
		info.UpdatedAtMs = snap.UpdatedAt.UnixMilli()
	}
	return info
}

// BuildLibStats converts language service counters into their tool form.
func BuildLibStats(svc *langsvc.Service) types.LibStats {
	if svc == nil {
		return types.LibStats{}
	}
	s := svc.Stats()
	return types.LibStats{
		Live:      s.Live,
		Added:     s.Added,
		Disposed:  s.Disposed,
		Conflicts: s.Conflicts,
	}
}

// parseFormat validates a format argument; empty means JSON. Media types
// such as application/json are accepted too.
func parseFormat(s string) (value.Format, error) {
	f, err := contenttype.SourceFormat(s)
	if err != nil {
		return "", ErrInvalidInput("format must be 'json', 'yaml', or a JSON/YAML media type")
	}
	return f, nil
}

// checkSourceSize enforces the MAX_SOURCE_BYTES cap.
func (d *Deps) checkSourceSize(src string) error {
	if src == "" {
		return ErrInvalidInput("source is required")
	}
	if limit := d.Config.MaxSourceBytes; limit > 0 && len(src) > limit {
		return ErrInvalidInput(fmt.Sprintf("source is %d bytes, limit is %d", len(src), limit))
	}
	return nil
}
