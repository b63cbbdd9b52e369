// Package uct automates the University of Cape Town application flow. The
// portal renames its form fields between revisions, so the detail step probes
// candidate field names and posts under whichever the current page carries.
package uct

import (
	"context"
	"fmt"
	"strings"

	"ufunda-bots/internal/common/config"
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

// Execute runs the UCT flow. Submission confirmation decides success; every
// earlier step is best-effort, matching how loosely the portal validates.
func (s *Service) Execute(ctx context.Context, applicant models.Applicant) (map[string]interface{}, error) {
	sess := portal.NewSession(s.cfg, s.logger)
	defer sess.Close()

	out := &Output{University: University}

	s.logger.Info("navigating to application portal", map[string]interface{}{"url": s.cfg.BaseURL + applyPath})
	if _, err := sess.Navigate(ctx, applyPath); err != nil {
		return nil, err
	}
	sess.Snapshot("navigate")

	s.loginIfRequired(ctx, sess, applicant, out)
	s.startApplication(ctx, sess, out)
	s.fillApplicantDetails(ctx, sess, applicant, out)
	s.uploadDocuments(ctx, sess, applicant, out)

	submitted := s.submitApplication(ctx, sess, out)
	out.Submitted = submitted
	if submitted {
		out.Message = "Submitted successfully"
	} else {
		out.Message = "Submission not confirmed"
	}
	out.Snapshots = sess.Snapshots()
	return models.AsPayload(out), nil
}

// loginIfRequired handles the login form when the portal shows one. Missing
// credentials skip the step; many UCT flows run anonymously until submission.
func (s *Service) loginIfRequired(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) {
	if !sess.Exists("input[name=username]") {
		return
	}
	username := applicant.String("uct_username")
	password := applicant.String("uct_password")
	if username == "" || password == "" {
		s.logger.Warn("no portal credentials provided, skipping login step", nil)
		return
	}
	if _, err := sess.RetrySubmit(ctx, loginPath, map[string]string{
		"username": username,
		"password": password,
	}); err != nil {
		s.logger.Warn("login step failed", map[string]interface{}{"error": err.Error()})
		out.Errors = append(out.Errors, fmt.Sprintf("Login failed: %s", err.Error()))
		return
	}
	s.logger.Info("submitted login form", nil)
	sess.Snapshot("login")
}

func (s *Service) startApplication(ctx context.Context, sess *portal.Session, out *Output) {
	if _, err := sess.Navigate(ctx, startPath); err != nil {
		s.logger.Error("could not start application", map[string]interface{}{"error": err.Error()})
		out.Errors = append(out.Errors, fmt.Sprintf("Start failed: %s", err.Error()))
		return
	}
	s.logger.Info("started new application", nil)
	sess.Snapshot("start_application")
}

func (s *Service) fillApplicantDetails(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) {
	personal := applicant.Section("personal")

	fields := map[string]string{}
	for key, candidates := range fieldCandidates {
		value, ok := personal[key].(string)
		if !ok || value == "" {
			continue
		}
		name := candidates[0]
		for _, candidate := range candidates {
			if sess.Exists(fmt.Sprintf("input[name=%s]", candidate)) {
				name = candidate
				break
			}
		}
		fields[name] = value
	}
	if prefs := applicant.ObjectSlice("program_preferences"); len(prefs) > 0 {
		if program, ok := prefs[0]["program_name"].(string); ok {
			fields["program"] = program
		}
	}

	if _, err := sess.RetrySubmit(ctx, detailPath, fields); err != nil {
		s.logger.Error("error filling applicant details", map[string]interface{}{"error": err.Error()})
		out.Errors = append(out.Errors, fmt.Sprintf("Details failed: %s", err.Error()))
		return
	}
	s.logger.Info("filled applicant details", nil)
	sess.Snapshot("details_filled")
}

func (s *Service) uploadDocuments(ctx context.Context, sess *portal.Session, applicant models.Applicant, out *Output) {
	for name, path := range applicant.Documents() {
		if _, err := sess.UploadFile(ctx, uploadPath, name, path, nil); err != nil {
			s.logger.Warn("upload failed", map[string]interface{}{
				"document": name,
				"error":    err.Error(),
			})
			out.Errors = append(out.Errors, fmt.Sprintf("Upload failed: %s", name))
			continue
		}
		s.logger.Info("uploaded document", map[string]interface{}{"document": name})
	}
	sess.Snapshot("documents_uploaded")
}

// submitApplication posts the final submit and looks for a confirmation
// phrase on the resulting page.
func (s *Service) submitApplication(ctx context.Context, sess *portal.Session, out *Output) bool {
	if _, err := sess.RetrySubmit(ctx, submitPath, nil); err != nil {
		s.logger.Error("error during submission", map[string]interface{}{"error": err.Error()})
		out.Errors = append(out.Errors, fmt.Sprintf("Submit failed: %s", err.Error()))
		return false
	}
	sess.Snapshot("submitted")

	body := sess.Text("body")
	for _, phrase := range []string{"Thank you", "submitted", "reference number"} {
		if strings.Contains(body, phrase) {
			s.logger.Info("submission confirmation detected", nil)
			return true
		}
	}
	s.logger.Error("submission confirmation not found", nil)
	return false
}
