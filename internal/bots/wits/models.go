// internal/bots/wits/models.go
package wits

type Output struct {
	University             string   `json:"university"`
	ApplicationNumber      string   `json:"application_number,omitempty"`
	FacultyConfirmation    string   `json:"faculty_confirmation,omitempty"`
	PaymentStatus          string   `json:"payment_status"`
	SubmissionConfirmation string   `json:"submission_confirmation,omitempty"`
	Snapshots              []string `json:"snapshots"`
	Success                bool     `json:"success"`
	Errors                 []string `json:"errors"`
}
