// Package nsfas automates the NSFAS bursary application: registration or
// login, applicant profile, household means-test details, institution and
// course info, supporting documents, and the OTP-gated declaration.
package nsfas

import (
	"context"
	"fmt"

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

// Execute runs the NSFAS flow. Every step is mandatory; the declaration step
// fails with OTP_TIMEOUT when the portal demands an OTP the payload lacks.
func (s *Service) Execute(ctx context.Context, applicant models.Applicant) (map[string]interface{}, error) {
	sess := portal.NewSession(s.cfg, s.logger)
	defer sess.Close()

	out := &Output{Bursary: Scheme}

	s.logger.Info("navigating to portal", map[string]interface{}{"url": s.cfg.BaseURL})
	if _, err := sess.Navigate(ctx, portalPath); err != nil {
		return nil, err
	}
	sess.Snapshot("navigate")

	if err := s.loginOrRegister(ctx, sess, applicant); err != nil {
		return nil, err
	}
	if err := s.stepProfile(ctx, sess, applicant); err != nil {
		return nil, err
	}
	if err := s.stepHousehold(ctx, sess, applicant); err != nil {
		return nil, err
	}
	if err := s.stepInstitution(ctx, sess, applicant); err != nil {
		return nil, err
	}
	if err := s.stepDocuments(ctx, sess, applicant, out); err != nil {
		return nil, err
	}
	if err := s.stepOTPAndDeclaration(ctx, sess, applicant); err != nil {
		sess.Snapshot("declaration_error")
		out.Snapshots = sess.Snapshots()
		return nil, err
	}

	out.Reference = sess.Text(".reference-number, #refNumber")
	sess.Snapshot("submitted")

	out.Success = true
	out.Snapshots = sess.Snapshots()
	return models.AsPayload(out), nil
}

func (s *Service) loginOrRegister(ctx context.Context, sess *portal.Session, applicant models.Applicant) error {
	email := applicant.String("nsfas_email")
	password := applicant.String("nsfas_password")
	if email != "" && password != "" {
		s.logger.Info("logging into existing account", nil)
		if _, err := sess.RetrySubmit(ctx, loginPath, map[string]string{
			"username": email,
			"password": password,
		}); err != nil {
			return errors.NewAccountCreationFailedError(err)
		}
		sess.Snapshot("login")
		return nil
	}

	s.logger.Info("registering new account", nil)
	personal := applicant.Section("personal")
	regEmail := applicant.String("created_email")
	if regEmail == "" {
		return errors.NewMissingApplicantFieldError("created_email")
	}
	if _, err := sess.RetrySubmit(ctx, registerPath, map[string]string{
		"email":     regEmail,
		"id_number": stringField(personal, "id_number"),
		"cell":      stringField(personal, "phone"),
	}); err != nil {
		return errors.NewAccountCreationFailedError(err)
	}
	sess.Snapshot("registered")
	return nil
}

func (s *Service) stepProfile(ctx context.Context, sess *portal.Session, applicant models.Applicant) error {
	s.logger.Info("filling applicant profile", nil)
	personal := applicant.Section("personal")
	fields := map[string]string{
		"firstName":  stringField(personal, "first_name"),
		"lastName":   stringField(personal, "last_name"),
		"dob":        stringField(personal, "dob"),
		"address1":   stringField(personal, "address"),
		"city":       stringField(personal, "city"),
		"postalCode": stringField(personal, "postal_code"),
	}
	if _, err := sess.RetrySubmit(ctx, profilePath, fields); err != nil {
		return err
	}
	sess.Snapshot("profile")
	return nil
}

// stepHousehold submits the means-test figures NSFAS eligibility hinges on.
func (s *Service) stepHousehold(ctx context.Context, sess *portal.Session, applicant models.Applicant) error {
	s.logger.Info("filling household means test", nil)
	household := applicant.Section("household")
	if household == nil {
		return errors.NewMissingApplicantFieldError("household")
	}
	fields := map[string]string{
		"householdSize": fmt.Sprintf("%v", household["household_size"]),
		"income":        fmt.Sprintf("%v", household["household_income"]),
	}
	if _, err := sess.RetrySubmit(ctx, householdPath, fields); err != nil {
		return err
	}
	sess.Snapshot("household")
	return nil
}

func (s *Service) stepInstitution(ctx context.Context, sess *portal.Session, applicant models.Applicant) error {
	s.logger.Info("filling institution and course", nil)
	institution := applicant.Section("institution")
	fields := map[string]string{
		"university":    stringField(institution, "university"),
		"qualification": stringField(institution, "programme"),
		"studentNumber": stringField(institution, "student_number"),
	}
	if _, err := sess.RetrySubmit(ctx, institutionPath, fields); err != nil {
		return err
	}
	sess.Snapshot("institution")
	return nil
}

func (s *Service) stepDocuments(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) error {
	s.logger.Info("uploading supporting documents", nil)
	docs := applicant.Documents()
	for _, name := range requiredDocuments {
		path, ok := docs[name]
		if !ok || path == "" {
			s.logger.Warn("document missing from payload", map[string]interface{}{"document": name})
			out.Warnings = append(out.Warnings, fmt.Sprintf("missing document: %s", name))
			continue
		}
		if _, err := sess.UploadFile(ctx, uploadPath, name, path, nil); err != nil {
			return err
		}
	}
	sess.Snapshot("documents")
	return nil
}

// stepOTPAndDeclaration confirms the OTP when the portal demands one, then
// accepts the declaration and submits.
func (s *Service) stepOTPAndDeclaration(ctx context.Context, sess *portal.Session, applicant models.Applicant) error {
	s.logger.Info("handling OTP and declaration", nil)

	fields := map[string]string{"acceptDeclaration": "on"}
	if otp := applicant.String("otp"); otp != "" {
		fields["otp"] = otp
	} else if sess.Exists("#otp") {
		return errors.NewOTPTimeoutError("portal requires an OTP and none was provided")
	}

	if _, err := sess.RetrySubmit(ctx, declarationPath, fields); err != nil {
		return err
	}
	return nil
}

func stringField(section map[string]interface{}, key string) string {
	if v, ok := section[key].(string); ok {
		return v
	}
	return ""
}
