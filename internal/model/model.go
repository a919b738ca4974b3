package model

// Capability tags what a backend can do. Routing matches on capability
// subsets, not on any ranking between capabilities.
type Capability string

const (
	CapabilityCode     Capability = "code"
	CapabilitySecurity Capability = "security"
	CapabilityGeneral  Capability = "general"
	CapabilityAnalysis Capability = "analysis"
	CapabilityCreative Capability = "creative"
)

// Capabilities returns all known capability tags.
func Capabilities() []Capability {
	return []Capability{
		CapabilityCode,
		CapabilitySecurity,
		CapabilityGeneral,
		CapabilityAnalysis,
		CapabilityCreative,
	}
}

// TaskType classifies a task for routing purposes.
type TaskType string

const (
	TaskCode      TaskType = "code"
	TaskSecurity  TaskType = "security"
	TaskGeneral   TaskType = "general"
	TaskAnalysis  TaskType = "analysis"
	TaskMultiStep TaskType = "multi_step"
)

// ProviderKind identifies which backend family serves an instance.
type ProviderKind string

const (
	ProviderLocal  ProviderKind = "local"
	ProviderClaude ProviderKind = "claude"
	ProviderOpenAI ProviderKind = "openai"
	ProviderGemini ProviderKind = "gemini"
)

// BackendInstance describes a registered language-model backend.
// The pool owns the mutable record; everyone else sees copies.
type BackendInstance struct {
	ID           string       `json:"id" yaml:"id" validate:"required"`
	Kind         ProviderKind `json:"kind" yaml:"kind" validate:"required"`
	Capabilities []Capability `json:"capabilities" yaml:"capabilities" validate:"min=1"`
	ModelName    string       `json:"model_name" yaml:"model_name" validate:"required"`
	MaxContext   int          `json:"max_context" yaml:"max_context" validate:"gt=0"`
	Loaded       bool         `json:"loaded" yaml:"loaded"`
}

// HasCapability reports whether the instance declares cap.
func (b *BackendInstance) HasCapability(cap Capability) bool {
	for _, c := range b.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// HasAllCapabilities reports whether the instance declares every
// capability in caps. An empty caps list always matches.
func (b *BackendInstance) HasAllCapabilities(caps []Capability) bool {
	for _, c := range caps {
		if !b.HasCapability(c) {
			return false
		}
	}
	return true
}

// TaskDescription describes work to be routed to a backend.
type TaskDescription struct {
	Description          string         `json:"description"`
	Type                 TaskType       `json:"task_type"`
	RequiredCapabilities []Capability   `json:"required_capabilities"`
	Context              map[string]any `json:"context,omitempty"`
	Constraints          []string       `json:"constraints,omitempty"`
}
