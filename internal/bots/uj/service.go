// Package uj automates the University of Johannesburg online application:
// stepwise navigation, section-by-section form filling, document uploads,
// fee payment or waiver, and final submission. Progress is recorded as a
// structured event stream in the result payload.
package uj

import (
	"context"
	"time"

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

// Execute runs the UJ flow. Unlike the Stellenbosch-style bots, every form
// step here is mandatory: a failed step aborts the application.
func (s *Service) Execute(ctx context.Context, applicant models.Applicant) (map[string]interface{}, error) {
	sess := portal.NewSession(s.cfg, s.logger)
	defer sess.Close()

	out := &Output{University: University, PaymentStatus: "PENDING"}
	out.emit("start", Event{Data: map[string]interface{}{"bot": BotID}})

	if err := s.loginOrCreate(ctx, sess, applicant, out); err != nil {
		out.emit("done", Event{Data: map[string]interface{}{"ok": false}})
		return nil, err
	}

	steps := []struct {
		name string
		run  func(context.Context, *portal.Session, models.Applicant, *Output) error
	}{
		{"personal_details", s.stepPersonalDetails},
		{"academic_program", s.stepAcademicProgram},
		{"address_background", s.stepAddressAndBackground},
		{"upload_documents", s.stepDocuments},
		{"fee_payment", s.stepFeePayment},
		{"review_submit", s.stepReviewSubmit},
	}
	for _, step := range steps {
		out.emit("step", Event{Name: step.name})
		if err := step.run(ctx, sess, applicant, out); err != nil {
			out.emit("error", Event{Phase: step.name, Error: err.Error()})
			out.emit("done", Event{Data: map[string]interface{}{"ok": false}})
			sess.Snapshot("error_" + step.name)
			out.Snapshots = sess.Snapshots()
			return nil, err
		}
		sess.Snapshot(step.name)
	}

	out.emit("done", Event{Data: map[string]interface{}{"ok": true}})
	out.Success = true
	out.Snapshots = sess.Snapshots()
	return models.AsPayload(out), nil
}

// loginOrCreate signs into an existing UJ profile when credentials are in the
// payload, otherwise creates one from the applicant's contact details.
func (s *Service) loginOrCreate(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) error {
	out.emit("step", Event{Name: "navigate_login"})
	if _, err := sess.Navigate(ctx, loginPath); err != nil {
		return err
	}

	username := applicant.String("uj_username")
	password := applicant.String("uj_password")
	if username != "" && password != "" {
		out.emit("step", Event{Name: "login_existing"})
		fields := sess.HiddenFields("form")
		fields["txtUserName"] = username
		fields["txtPassword"] = password
		if _, err := sess.RetrySubmit(ctx, loginPath, fields); err != nil {
			return errors.NewAccountCreationFailedError(err)
		}
		return nil
	}

	out.emit("step", Event{Name: "create_profile"})
	personal := applicant.Section("personal")
	email := applicant.String("created_email")
	if email == "" {
		email = stringField(personal, "email")
	}
	if email == "" {
		return errors.NewMissingApplicantFieldError("created_email")
	}
	fields := map[string]string{
		"txtEmail":  email,
		"txtID":     stringField(personal, "id_number"),
		"txtMobile": stringField(personal, "phone"),
	}
	if _, err := sess.RetrySubmit(ctx, profilePath, fields); err != nil {
		return errors.NewAccountCreationFailedError(err)
	}
	return nil
}

func (s *Service) stepPersonalDetails(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) error {
	personal := applicant.Section("personal")
	fields := map[string]string{
		"firstName": stringField(personal, "first_name"),
		"lastName":  stringField(personal, "last_name"),
		"dob":       stringField(personal, "dob"),
		"idNumber":  stringField(personal, "id_number"),
		"email":     applicant.String("created_email"),
		"cell":      stringField(personal, "phone"),
	}
	_, err := sess.RetrySubmit(ctx, personalPath, fields)
	return err
}

func (s *Service) stepAcademicProgram(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) error {
	programme := ""
	if prefs := applicant.ObjectSlice("program_preferences"); len(prefs) > 0 {
		programme = stringField(prefs[0], "program_name")
	}
	if programme == "" {
		return errors.NewMissingApplicantFieldError("program_preferences")
	}
	_, err := sess.RetrySubmit(ctx, programPath, map[string]string{
		"qualificationSearch": programme,
	})
	return err
}

func (s *Service) stepAddressAndBackground(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) error {
	personal := applicant.Section("personal")
	fields := map[string]string{
		"addressLine1": stringField(personal, "address"),
		"suburb":       stringField(personal, "suburb"),
		"city":         stringField(personal, "city"),
		"postalCode":   stringField(personal, "postal_code"),
	}
	_, err := sess.RetrySubmit(ctx, addressPath, fields)
	return err
}

func (s *Service) stepDocuments(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) error {
	docs := applicant.Documents()
	for _, name := range requiredDocuments {
		path, ok := docs[name]
		if !ok || path == "" {
			out.emit("warning", Event{Phase: "upload", Data: map[string]interface{}{"missing": name}})
			continue
		}
		if _, err := sess.UploadFile(ctx, uploadPath, name, path, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) stepFeePayment(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) error {
	if waiver, ok := applicant["fee_waiver"].(bool); ok && waiver {
		out.FeeWaiver = true
		out.PaymentStatus = "WAIVED"
		_, err := sess.RetrySubmit(ctx, paymentPath, map[string]string{"chkWaiver": "on"})
		return err
	}

	payment := applicant.Section("payment")
	fields := map[string]string{
		"cardNumber": stringField(payment, "card_number"),
		"cardName":   stringField(payment, "card_name"),
		"expiry":     stringField(payment, "card_expiry"),
		"cvv":        stringField(payment, "card_cvv"),
	}
	if _, err := sess.RetrySubmit(ctx, paymentPath, fields); err != nil {
		out.PaymentStatus = "FAILED"
		return errors.NewPaymentRejectedError(err.Error())
	}
	out.PaymentStatus = "PAID"
	return nil
}

func (s *Service) stepReviewSubmit(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) error {
	if _, err := sess.RetrySubmit(ctx, submitPath, map[string]string{"terms": "accepted"}); err != nil {
		return err
	}
	out.Reference = sess.Text(".reference-number, #refNumber")
	out.emit("result", Event{Data: map[string]interface{}{
		"status":    "submitted",
		"reference": out.Reference,
	}})
	return nil
}

func (o *Output) emit(eventType string, ev Event) {
	ev.Type = eventType
	ev.TS = float64(time.Now().UnixNano()) / 1e9
	o.Events = append(o.Events, ev)
}

func stringField(section map[string]interface{}, key string) string {
	if v, ok := section[key].(string); ok {
		return v
	}
	return ""
}
