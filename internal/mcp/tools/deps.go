package tools

import (
	"github.com/usestring/ctxdts/internal/cache"
	"github.com/usestring/ctxdts/internal/config"
	"github.com/usestring/ctxdts/internal/langsvc"
	"github.com/usestring/ctxdts/internal/query"
	"github.com/usestring/ctxdts/internal/workspace"
	"github.com/usestring/ctxdts/pkg/dts"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Workspace  *workspace.Workspace
	Service    *langsvc.Service
	Config     *config.Config
	Cache      *cache.DeclarationCache
	Inferencer *dts.Inferencer
	Query      *query.Engine
}

// inferencerFor returns d.Inferencer, or a copy with maxDepth when it is
// positive.
func (d *Deps) inferencerFor(maxDepth int) *dts.Inferencer {
	if maxDepth <= 0 {
		return d.Inferencer
	}
	opts := d.Inferencer.Options()
	opts.MaxDepth = maxDepth
	return dts.New(opts)
}
