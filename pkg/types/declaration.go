package types

// DeclarationInfo describes the registration held by the workspace.
type DeclarationInfo struct {
	VarName     string `json:"var_name"`
	VirtualFile string `json:"virtual_file"`
	State       string `json:"state"`                 // uninitialized, idle, active, terminated
	Declaration string `json:"declaration,omitempty"` // empty when nothing is registered
	Active      bool   `json:"active"`
	Updates     int    `json:"updates"`
	UpdatedAtMs int64  `json:"updated_at_ms,omitempty"`
}

// LibStats summarizes language service activity.
type LibStats struct {
	Live      int `json:"live"`
	Added     int `json:"added"`
	Disposed  int `json:"disposed"`
	Conflicts int `json:"conflicts"`
}

// SourceDeclaration is the inference result for one source.
type SourceDeclaration struct {
	Index       int    `json:"index"`
	Type        string `json:"type,omitempty"`
	Declaration string `json:"declaration,omitempty"`
	Error       string `json:"error,omitempty"`
}
