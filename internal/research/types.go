package research

// Phase represents the lifecycle state of the search controller.
type Phase string

// Lifecycle phases published by the controller.
const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhasePending    Phase = "pending"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether the phase ends a submission's lifecycle.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// ToolRecord describes a single developer tool or vendor returned by the
// research backend.
type ToolRecord struct {
	Name                    string   `json:"name"`
	Description             string   `json:"description"`
	Website                 string   `json:"website"`
	PricingModel            string   `json:"pricing_model,omitempty"`
	IsOpenSource            *bool    `json:"is_open_source,omitempty"`
	TechStack               []string `json:"tech_stack,omitempty"`
	APIAvailable            *bool    `json:"api_available,omitempty"`
	LanguageSupport         []string `json:"language_support,omitempty"`
	IntegrationCapabilities []string `json:"integration_capabilities,omitempty"`
}

// Result is the parsed success payload for one research request.
type Result struct {
	Query          string       `json:"query"`
	Companies      []ToolRecord `json:"companies"`
	Analysis       string       `json:"analysis,omitempty"`
	RequestID      string       `json:"request_id,omitempty"`
	ProcessingTime float64      `json:"processing_time,omitempty"`
}
