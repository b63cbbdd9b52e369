// Package bots defines the uniform adapter contract the dispatch core
// consumes and the registry that resolves bot identifiers to adapters.
package bots

import (
	"context"

	"ufunda-bots/internal/models"
)

// Result is the opaque structured payload a successful execution produces.
// The dispatch core never interprets its contents; a payload may encode
// partial failure in its own status fields (e.g. payment_status "FAILED")
// and still count as a success result.
type Result = map[string]interface{}

// Adapter wraps one external portal-automation sequence. Execute must catch
// internal faults and either return an error with a descriptive message or a
// Result encoding the partial failure. Adapters own their portal session
// exclusively and release it on every exit path.
type Adapter interface {
	ID() string
	Execute(ctx context.Context, applicant models.Applicant) (Result, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc struct {
	Name string
	Run  func(ctx context.Context, applicant models.Applicant) (Result, error)
}

func (a AdapterFunc) ID() string { return a.Name }

func (a AdapterFunc) Execute(ctx context.Context, applicant models.Applicant) (Result, error) {
	return a.Run(ctx, applicant)
}
