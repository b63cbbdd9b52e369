// Package gmail creates the applicant's email account before the university
// bots run: generated credentials, stepwise signup forms, and a credentials
// file written alongside the page snapshots.
package gmail

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
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
	rng    *rand.Rand
}

func NewService(cfg config.BotConfig, log logger.Logger) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Service{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"bot": BotID}),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) ID() string { return BotID }

// Execute creates the account. An explicit "username_base" in the payload
// seeds the address; otherwise a random test username is generated.
func (s *Service) Execute(ctx context.Context, applicant models.Applicant) (map[string]interface{}, error) {
	sess := portal.NewSession(s.cfg, s.logger)
	defer sess.Close()

	creds := s.generateCredentials(applicant.String("username_base"))
	out := &Output{
		Credentials: creds,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	s.logger.Info("navigating to signup page", map[string]interface{}{"url": s.cfg.BaseURL + signupPath})
	if _, err := sess.Navigate(ctx, signupPath); err != nil {
		return nil, err
	}
	sess.Snapshot("signup")

	s.logger.Info("filling in personal information", nil)
	if _, err := sess.RetrySubmit(ctx, namePath, map[string]string{
		"firstName": creds.FirstName,
		"lastName":  creds.LastName,
	}); err != nil {
		return nil, errors.NewAccountCreationFailedError(err)
	}
	sess.Snapshot("name_filled")

	s.logger.Info("filling in birth date and gender", nil)
	if _, err := sess.RetrySubmit(ctx, birthdayPath, map[string]string{
		"day":    strconv.Itoa(creds.BirthDay),
		"month":  strconv.Itoa(creds.BirthMonth),
		"year":   strconv.Itoa(creds.BirthYear),
		"gender": creds.Gender,
	}); err != nil {
		return nil, errors.NewAccountCreationFailedError(err)
	}
	sess.Snapshot("birthday_filled")

	s.logger.Info("setting up username", map[string]interface{}{"username": creds.Username})
	if _, err := sess.RetrySubmit(ctx, usernamePath, map[string]string{
		"Username": creds.Username,
	}); err != nil {
		return nil, errors.NewAccountCreationFailedError(err)
	}
	sess.Snapshot("username_set")

	s.logger.Info("setting up password", nil)
	if _, err := sess.RetrySubmit(ctx, passwordPath, map[string]string{
		"Passwd":      creds.Password,
		"PasswdAgain": creds.Password,
	}); err != nil {
		return nil, errors.NewAccountCreationFailedError(err)
	}
	sess.Snapshot("password_set")

	out.Success = true
	out.Email = creds.Username + "@gmail.com"
	out.Message = "Account creation process completed successfully"
	s.saveCredentials(creds)

	out.Snapshots = sess.Snapshots()
	return models.AsPayload(out), nil
}

func (s *Service) generateCredentials(baseName string) Credentials {
	if baseName == "" {
		baseName = "testuser" + s.randomDigits(6)
	}
	return Credentials{
		FirstName:  "Test",
		LastName:   "User" + s.randomDigits(4),
		Username:   baseName,
		Password:   s.generateStrongPassword(passwordLength),
		BirthDay:   1 + s.rng.Intn(28),
		BirthMonth: 1 + s.rng.Intn(12),
		BirthYear:  1990 + s.rng.Intn(11),
		Gender:     []string{"Male", "Female", "Other"}[s.rng.Intn(3)],
	}
}

func (s *Service) generateStrongPassword(length int) string {
	out := make([]byte, length)
	for i := range out {
		out[i] = passwordCharset[s.rng.Intn(len(passwordCharset))]
	}
	return string(out)
}

func (s *Service) randomDigits(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte('0' + s.rng.Intn(10))
	}
	return string(out)
}

// saveCredentials writes the generated account details next to the page
// snapshots. Failure is logged, never fatal; the credentials are still in
// the result payload.
func (s *Service) saveCredentials(creds Credentials) {
	if err := os.MkdirAll(s.cfg.SnapshotDir, 0o755); err != nil {
		s.logger.Warn("could not create credentials dir", map[string]interface{}{"error": err.Error()})
		return
	}
	path := filepath.Join(s.cfg.SnapshotDir,
		fmt.Sprintf("gmail_credentials_%s.txt", time.Now().Format("20060102_150405")))

	content := fmt.Sprintf(
		"Gmail Account Credentials\n========================\n\n"+
			"First Name: %s\nLast Name: %s\nUsername: %s\nPassword: %s\n"+
			"Birth Date: %d/%d/%d\nGender: %s\n\nCreated: %s\n",
		creds.FirstName, creds.LastName, creds.Username, creds.Password,
		creds.BirthDay, creds.BirthMonth, creds.BirthYear, creds.Gender,
		time.Now().UTC().Format(time.RFC3339))

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		s.logger.Warn("could not save credentials file", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("credentials saved", map[string]interface{}{"path": path})
}
