// internal/bots/nsfas/models.go
package nsfas

type Output struct {
	Bursary   string   `json:"bursary"`
	Reference string   `json:"reference,omitempty"`
	Snapshots []string `json:"snapshots"`
	Success   bool     `json:"success"`
	Warnings  []string `json:"warnings,omitempty"`
}
