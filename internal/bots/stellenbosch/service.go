// Package stellenbosch automates the Stellenbosch University application
// flow: profile creation, personal and academic forms, program selection,
// document upload, fee payment, and final submission with confirmation
// capture.
package stellenbosch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ufunda-bots/internal/common/config"
	"ufunda-bots/internal/common/errors"
	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/models"
	"ufunda-bots/internal/portal"
)

type Service struct {
	cfg    config.BotConfig
	logger logger.Logger
}

func NewService(cfg config.BotConfig, log logger.Logger) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Service{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"bot": BotID}),
	}
}

func (s *Service) ID() string { return BotID }

// Execute runs the full application flow. Step failures on optional forms are
// recorded in the output's error list; failures that make the application
// unsubmittable abort with an error.
func (s *Service) Execute(ctx context.Context, applicant models.Applicant) (map[string]interface{}, error) {
	sess := portal.NewSession(s.cfg, s.logger)
	defer sess.Close()

	out := &Output{University: University, PaymentStatus: "PENDING"}

	s.logger.Info("navigating to application portal", map[string]interface{}{"url": s.cfg.BaseURL + applyPath})
	if _, err := sess.Navigate(ctx, applyPath); err != nil {
		return nil, err
	}
	sess.Snapshot("navigate")

	if err := s.createProfile(ctx, sess, applicant); err != nil {
		return nil, err
	}

	s.fillPersonalInformation(ctx, sess, applicant, out)
	s.fillAcademicBackground(ctx, sess, applicant, out)
	s.selectPrograms(ctx, sess, applicant, out)
	s.uploadDocuments(ctx, sess, applicant, out)

	out.PaymentStatus = s.payFee(ctx, sess, applicant, out)

	if err := s.submit(ctx, sess); err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("Submission error: %s", err.Error()))
		sess.Snapshot("error")
		out.Snapshots = sess.Snapshots()
		return nil, err
	}

	s.captureConfirmation(sess, out)

	out.Success = out.PaymentStatus == "PAID"
	out.Snapshots = sess.Snapshots()
	return models.AsPayload(out), nil
}

// createProfile logs in or creates the application profile. An existing
// session shows the start-application button and skips the email form.
func (s *Service) createProfile(ctx context.Context, sess *portal.Session, applicant models.Applicant) error {
	s.logger.Info("creating application profile", nil)

	if !sess.Exists("#start-application") {
		email := applicant.String("created_email")
		if email == "" {
			return errors.NewMissingApplicantFieldError("created_email")
		}
		if _, err := sess.RetrySubmit(ctx, profilePath, map[string]string{"email": email}); err != nil {
			return errors.NewAccountCreationFailedError(err)
		}
	}
	sess.Snapshot("profile_created")
	return nil
}

func (s *Service) fillPersonalInformation(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) {
	s.logger.Info("filling personal information", nil)
	personal := applicant.Section("personal")

	fields := map[string]string{}
	for _, key := range []string{"first_name", "last_name", "id_number", "phone", "address"} {
		if v, ok := personal[key].(string); ok && v != "" {
			fields[key] = v
		}
	}

	if _, err := sess.RetrySubmit(ctx, personalPath, fields); err != nil {
		s.logger.Warn("personal information step failed", map[string]interface{}{"error": err.Error()})
		out.Errors = append(out.Errors, fmt.Sprintf("Personal info error: %s", err.Error()))
	}
	sess.Snapshot("personal_info_filled")
}

func (s *Service) fillAcademicBackground(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) {
	s.logger.Info("filling academic background", nil)

	fields := map[string]string{}
	for key, v := range applicant.Section("academic") {
		fields[key] = fmt.Sprintf("%v", v)
	}

	if _, err := sess.RetrySubmit(ctx, academicPath, fields); err != nil {
		s.logger.Warn("academic background step failed", map[string]interface{}{"error": err.Error()})
		out.Errors = append(out.Errors, fmt.Sprintf("Academic error: %s", err.Error()))
	}
	sess.Snapshot("academic_filled")
}

func (s *Service) selectPrograms(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) {
	s.logger.Info("selecting programs", nil)

	fields := map[string]string{}
	for idx, program := range applicant.ObjectSlice("program_preferences") {
		if faculty, ok := program["faculty"].(string); ok {
			fields[fmt.Sprintf("faculty_%d", idx)] = faculty
		}
		if name, ok := program["program_name"].(string); ok {
			fields[fmt.Sprintf("program_%d", idx)] = name
		}
	}

	if _, err := sess.RetrySubmit(ctx, programsPath, fields); err != nil {
		s.logger.Warn("program selection failed", map[string]interface{}{"error": err.Error()})
		out.Errors = append(out.Errors, fmt.Sprintf("Program selection error: %s", err.Error()))
	}
	sess.Snapshot("programs_selected")
}

func (s *Service) uploadDocuments(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) {
	s.logger.Info("uploading documents", nil)

	for name, path := range applicant.Documents() {
		if _, err := sess.UploadFile(ctx, uploadPath, name, path, nil); err != nil {
			s.logger.Error("document upload failed", map[string]interface{}{
				"document": name,
				"error":    err.Error(),
			})
			out.Errors = append(out.Errors, fmt.Sprintf("Upload failed: %s", name))
			continue
		}
		s.logger.Info("document uploaded", map[string]interface{}{"document": name})
	}
	sess.Snapshot("documents_uploaded")
}

// payFee processes the application fee and returns PAID, FAILED, or PENDING.
// Payment failure does not abort the flow; the status lands in the result.
func (s *Service) payFee(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) string {
	s.logger.Info("processing payment", nil)

	method := applicant.String("payment_method")
	if method == "" {
		method = "card"
	}
	if method != "card" {
		s.logger.Warn("payment method not implemented, leaving pending", map[string]interface{}{"method": method})
		return "PENDING"
	}

	fields := map[string]string{
		"card_number": envOr("PAYMENT_CARD_NUMBER", "4111111111111111"),
		"card_expiry": envOr("PAYMENT_CARD_EXPIRY", "12/25"),
		"card_cvv":    envOr("PAYMENT_CARD_CVV", "123"),
	}
	if _, err := sess.RetrySubmit(ctx, paymentPath, fields); err != nil {
		s.logger.Error("payment failed", map[string]interface{}{"error": err.Error()})
		out.Errors = append(out.Errors, fmt.Sprintf("Payment error: %s", err.Error()))
		sess.Snapshot("payment_error")
		return "FAILED"
	}

	body := sess.Text("body")
	if strings.Contains(body, "Payment successful") || strings.Contains(body, "Payment confirmed") {
		sess.Snapshot("payment_success")
		return "PAID"
	}
	s.logger.Error("payment confirmation not found", nil)
	sess.Snapshot("payment_failed")
	return "FAILED"
}

func (s *Service) submit(ctx context.Context, sess *portal.Session) error {
	s.logger.Info("submitting application", nil)
	if _, err := sess.RetrySubmit(ctx, submitPath, nil); err != nil {
		return err
	}
	sess.Snapshot("application_submitted")
	return nil
}

// captureConfirmation scrapes reference numbers off the confirmation page.
// Missing elements are tolerated; the artifact just omits those fields.
func (s *Service) captureConfirmation(sess *portal.Session, out *Output) {
	s.logger.Info("capturing confirmation", nil)

	out.ApplicationNumber = sess.Text(".application-number")
	out.FacultyConfirmation = sess.Text(".faculty-confirmation")
	out.SubmissionConfirmation = sess.Text(".confirmation-text")

	if out.ApplicationNumber == "" {
		s.logger.Warn("application number not found on confirmation page", nil)
	}
	sess.Snapshot("confirmation_captured")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
