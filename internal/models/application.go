// internal/models/application.go
package models

import "time"

// Application tracks one applicant's submission as seen by the status API.
type Application struct {
	ID           string    `json:"id"`
	ApplicantRef string    `json:"applicant_ref"`
	Bots         []string  `json:"bots"`
	Status       string    `json:"status"` // accepted, running, completed
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BotStatus is the live per-bot status reported while a run is in flight.
type BotStatus struct {
	BotID       string    `json:"bot_id"`
	University  string    `json:"university_name"`
	Status      string    `json:"status"` // idle, running, ok, error
	CurrentTask string    `json:"current_task,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// Application status values.
const (
	ApplicationAccepted  = "accepted"
	ApplicationRunning   = "running"
	ApplicationCompleted = "completed"
)

// Bot status values.
const (
	BotStatusIdle    = "idle"
	BotStatusRunning = "running"
	BotStatusOK      = "ok"
	BotStatusError   = "error"
)
