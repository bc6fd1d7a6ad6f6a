package domain

// Feature is a capability the scaffold generator can add to a project.
type Feature string

const (
	FeatureA2A  Feature = "a2a"
	FeatureMCP  Feature = "mcp"
	FeatureX402 Feature = "x402"
)

// Well-known paths inside a generated project.
const (
	A2AEntrypoint = "a2a-server.ts"
	MCPEntrypoint = "mcp-server.ts"

	A2AServerFile   = "src/a2a-server.ts"
	MCPServerFile   = "src/mcp-server.ts"
	AgentFile       = "src/agent.ts"
	ToolsFile       = "src/tools.ts"
	RegisterFile    = "src/register.ts"
	AgentCardFile   = ".well-known/agent-card.json"
	PackageJSONFile = "package.json"
	ReadmeFile      = "README.md"
	EnvFile         = ".env"
	EnvExampleFile  = ".env.example"
)

// ProjectSpec describes one project the scaffold generator must produce.
type ProjectSpec struct {
	Name      string    `json:"name" yaml:"name"`
	Chain     ChainKey  `json:"chain" yaml:"chain"`
	Features  []Feature `json:"features" yaml:"features"`
	Streaming bool      `json:"streaming" yaml:"streaming"`
}

// HasFeature reports whether the project enables f.
func (p ProjectSpec) HasFeature(f Feature) bool {
	for _, feat := range p.Features {
		if feat == f {
			return true
		}
	}
	return false
}

// Project is a generated project on disk.
type Project struct {
	Spec ProjectSpec
	Dir  string
}
