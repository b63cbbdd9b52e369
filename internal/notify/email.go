// internal/notify/email.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"ufunda-bots/internal/common/logger"
)

// Mailer sends a plain-text alert email. Implemented by the SES client and
// the SMTP mailer.
type Mailer interface {
	SendAlert(ctx context.Context, from string, to []string, subject, body string) error
}

// EmailSink mails a per-run summary to the configured alert recipients. It
// stays quiet on individual bot results; email is a per-run alert channel,
// not a streaming one.
type EmailSink struct {
	mailer Mailer
	from   string
	to     []string
	logger logger.Logger
}

func NewEmailSink(mailer Mailer, from string, to []string, log logger.Logger) *EmailSink {
	return &EmailSink{
		mailer: mailer,
		from:   from,
		to:     to,
		logger: log.WithFields(map[string]interface{}{"sink": "email"}),
	}
}

func (e *EmailSink) Name() string { return "email" }

func (e *EmailSink) PublishBotResult(ctx context.Context, ev BotResultEvent) error {
	return nil
}

func (e *EmailSink) PublishRunComplete(ctx context.Context, ev RunCompleteEvent) error {
	if len(e.to) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Application run complete: %s", ev.ApplicantRef)
	body := buildRunSummaryBody(ev)

	return e.mailer.SendAlert(ctx, e.from, e.to, subject, body)
}

func buildRunSummaryBody(ev RunCompleteEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Applicant: %s\r\n\r\n", ev.ApplicantRef)
	for k, v := range ev.Summary {
		if k == "bots" {
			continue
		}
		fmt.Fprintf(&b, "%s: %v\r\n", k, v)
	}
	if bots, ok := ev.Summary["bots"].(map[string]string); ok {
		b.WriteString("\r\nPer-bot status:\r\n")
		for bot, status := range bots {
			fmt.Fprintf(&b, "  %s: %s\r\n", bot, status)
		}
	}
	return b.String()
}
