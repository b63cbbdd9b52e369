// internal/bots/uj/models.go
package uj

// Event is one structured step event; UJ's flow reports progress as an event
// stream rather than a single confirmation block.
type Event struct {
	Type  string                 `json:"type"`
	TS    float64                `json:"ts"`
	Name  string                 `json:"name,omitempty"`
	Phase string                 `json:"phase,omitempty"`
	Error string                 `json:"error,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type Output struct {
	University    string   `json:"university"`
	Reference     string   `json:"reference,omitempty"`
	PaymentStatus string   `json:"payment_status"`
	FeeWaiver     bool     `json:"fee_waiver"`
	Events        []Event  `json:"events"`
	Snapshots     []string `json:"snapshots"`
	Success       bool     `json:"success"`
}
