// internal/bots/uct/models.go
package uct

type Output struct {
	University string   `json:"university"`
	Submitted  bool     `json:"success"`
	Message    string   `json:"message"`
	Snapshots  []string `json:"snapshots"`
	Errors     []string `json:"errors,omitempty"`
}
