package nsfas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufunda-bots/internal/common/config"
	"ufunda-bots/internal/common/errors"
	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/models"
)

// fakePortal serves the NSFAS flow. institutionBody is the page the bot sees
// just before the declaration step, so tests can plant the OTP prompt there.
func fakePortal(t *testing.T, institutionBody string) *httptest.Server {
	t.Helper()
	ok := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>ok</body></html>`))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(portalPath, ok)
	mux.HandleFunc(registerPath, ok)
	mux.HandleFunc(loginPath, ok)
	mux.HandleFunc(profilePath, ok)
	mux.HandleFunc(householdPath, ok)
	mux.HandleFunc(institutionPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(institutionBody))
	})
	mux.HandleFunc(uploadPath, ok)
	mux.HandleFunc(declarationPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><span class="reference-number">NSFAS-2026-7788</span></body></html>`))
	})
	return httptest.NewServer(mux)
}

func testApplicant() models.Applicant {
	return models.Applicant{
		"created_email": "testuser123456@gmail.com",
		"personal": map[string]interface{}{
			"first_name": "Test",
			"last_name":  "User",
			"id_number":  "0001010000000",
			"phone":      "0820000000",
			"dob":        "2000-01-01",
		},
		"household": map[string]interface{}{
			"household_size":   4,
			"household_income": 120000,
		},
		"institution": map[string]interface{}{
			"university":     "Wits",
			"programme":      "BSc Computer Science",
			"student_number": "2026001",
		},
	}
}

func newTestService(t *testing.T, baseURL string) *Service {
	t.Helper()
	return NewService(config.BotConfig{
		BaseURL:     baseURL,
		Timeout:     5000,
		MaxRetries:  1,
		SnapshotDir: t.TempDir(),
	}, logger.NewTestLogger(t))
}

func TestExecuteHappyPath(t *testing.T) {
	srv := fakePortal(t, `<html><body>institution saved</body></html>`)
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	out, err := svc.Execute(context.Background(), testApplicant())
	require.NoError(t, err)

	assert.Equal(t, "NSFAS", out["bursary"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "NSFAS-2026-7788", out["reference"])

	// No documents in the payload: every required one is flagged.
	warnings, ok := out["warnings"].([]interface{})
	require.True(t, ok)
	assert.Len(t, warnings, len(requiredDocuments))
}

func TestExecuteOTPMissingTimesOut(t *testing.T) {
	// The page before the declaration demands an OTP the payload lacks.
	srv := fakePortal(t, `<html><body><input id="otp" name="otp"/></body></html>`)
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	_, err := svc.Execute(context.Background(), testApplicant())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeOTPTimeout, errors.Normalize(err).Code)
}

func TestExecuteProvidedOTPSatisfiesPrompt(t *testing.T) {
	srv := fakePortal(t, `<html><body><input id="otp" name="otp"/></body></html>`)
	defer srv.Close()

	applicant := testApplicant()
	applicant["otp"] = "123456"

	svc := newTestService(t, srv.URL)
	out, err := svc.Execute(context.Background(), applicant)
	require.NoError(t, err)
	assert.Equal(t, true, out["success"])
}

func TestExecuteMissingHousehold(t *testing.T) {
	srv := fakePortal(t, `<html><body>ok</body></html>`)
	defer srv.Close()

	applicant := testApplicant()
	delete(applicant, "household")

	svc := newTestService(t, srv.URL)
	_, err := svc.Execute(context.Background(), applicant)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingApplicantField, errors.Normalize(err).Code)
}

func TestExecuteRegistrationNeedsEmail(t *testing.T) {
	srv := fakePortal(t, `<html><body>ok</body></html>`)
	defer srv.Close()

	applicant := testApplicant()
	delete(applicant, "created_email")

	svc := newTestService(t, srv.URL)
	_, err := svc.Execute(context.Background(), applicant)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingApplicantField, errors.Normalize(err).Code)
}

func TestExecuteExistingAccountLogsIn(t *testing.T) {
	var loggedIn, registered bool
	ok := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>ok</body></html>`))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(portalPath, ok)
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		loggedIn = true
		w.Write([]byte(`<html><body>welcome back</body></html>`))
	})
	mux.HandleFunc(registerPath, func(w http.ResponseWriter, r *http.Request) {
		registered = true
	})
	mux.HandleFunc(profilePath, ok)
	mux.HandleFunc(householdPath, ok)
	mux.HandleFunc(institutionPath, ok)
	mux.HandleFunc(uploadPath, ok)
	mux.HandleFunc(declarationPath, ok)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	applicant := testApplicant()
	applicant["nsfas_email"] = "existing@example.com"
	applicant["nsfas_password"] = "secret"

	svc := newTestService(t, srv.URL)
	_, err := svc.Execute(context.Background(), applicant)
	require.NoError(t, err)
	assert.True(t, loggedIn)
	assert.False(t, registered)
}
