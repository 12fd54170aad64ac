package scene

// Scenario is a named scene preset.
//
// Settings is opaque serialized text describing the scene (typically
// JSON written by the operator surface). The core stores it verbatim
// and performs no schema validation on its content.
type Scenario struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Settings *string `json:"settings,omitempty"`
}
