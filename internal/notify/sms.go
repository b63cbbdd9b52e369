// internal/notify/sms.go
package notify

import (
	"context"
	"fmt"

	"ufunda-bots/internal/common/logger"
)

// Texter sends one SMS. Implemented by the SNS client.
type Texter interface {
	PublishSMS(ctx context.Context, phoneNumber, message string) error
}

// SMSSink texts a one-line run summary to the configured phone numbers.
type SMSSink struct {
	texter  Texter
	numbers []string
	logger  logger.Logger
}

func NewSMSSink(texter Texter, numbers []string, log logger.Logger) *SMSSink {
	return &SMSSink{
		texter:  texter,
		numbers: numbers,
		logger:  log.WithFields(map[string]interface{}{"sink": "sms"}),
	}
}

func (s *SMSSink) Name() string { return "sms" }

func (s *SMSSink) PublishBotResult(ctx context.Context, ev BotResultEvent) error {
	return nil
}

func (s *SMSSink) PublishRunComplete(ctx context.Context, ev RunCompleteEvent) error {
	msg := fmt.Sprintf("Ufunda run complete for %s: %v ok, %v failed",
		ev.ApplicantRef, ev.Summary["ok"], ev.Summary["errors"])

	var firstErr error
	for _, number := range s.numbers {
		if err := s.texter.PublishSMS(ctx, number, msg); err != nil {
			s.logger.Warn("sms push failed", map[string]interface{}{
				"number": number,
				"error":  err.Error(),
			})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
