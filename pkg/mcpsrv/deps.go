package mcpsrv

import (
	"github.com/usestring/ctxdts/internal/cache"
	"github.com/usestring/ctxdts/internal/config"
	"github.com/usestring/ctxdts/internal/langsvc"
	"github.com/usestring/ctxdts/internal/query"
	"github.com/usestring/ctxdts/internal/workspace"
	"github.com/usestring/ctxdts/pkg/dts"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Workspace  *workspace.Workspace
	Service    *langsvc.Service
	Config     *config.Config
	Cache      *cache.DeclarationCache
	Inferencer *dts.Inferencer
	Query      *query.Engine
}
