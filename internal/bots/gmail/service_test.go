package gmail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufunda-bots/internal/common/config"
	"ufunda-bots/internal/common/errors"
	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/models"
)

func fakeSignup(t *testing.T) *httptest.Server {
	t.Helper()
	ok := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>next</body></html>`))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(signupPath, ok)
	mux.HandleFunc(namePath, ok)
	mux.HandleFunc(birthdayPath, ok)
	mux.HandleFunc(usernamePath, ok)
	mux.HandleFunc(passwordPath, ok)
	return httptest.NewServer(mux)
}

func newTestService(t *testing.T, baseURL, snapshotDir string) *Service {
	t.Helper()
	return NewService(config.BotConfig{
		BaseURL:     baseURL,
		Timeout:     5000,
		MaxRetries:  1,
		SnapshotDir: snapshotDir,
	}, logger.NewTestLogger(t))
}

func TestExecuteCreatesAccount(t *testing.T) {
	srv := fakeSignup(t)
	defer srv.Close()

	dir := t.TempDir()
	svc := newTestService(t, srv.URL, dir)

	out, err := svc.Execute(context.Background(), models.Applicant{"username_base": "jane.doe2026"})
	require.NoError(t, err)

	assert.Equal(t, true, out["success"])
	assert.Equal(t, "jane.doe2026@gmail.com", out["email"])

	creds, ok := out["credentials"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "jane.doe2026", creds["username"])
	assert.Len(t, creds["password"].(string), passwordLength)

	// Credentials file landed next to the snapshots.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var found bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "gmail_credentials_") && strings.HasSuffix(e.Name(), ".txt") {
			found = true
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			assert.Contains(t, string(data), "jane.doe2026")
		}
	}
	assert.True(t, found, "credentials file not written")
}

func TestExecuteSignupFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(signupPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>signup</body></html>`))
	})
	mux.HandleFunc(namePath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newTestService(t, srv.URL, t.TempDir())
	_, err := svc.Execute(context.Background(), models.Applicant{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAccountCreationFailed, errors.Normalize(err).Code)
}

func TestGenerateCredentials(t *testing.T) {
	svc := newTestService(t, "http://unused.invalid", t.TempDir())

	creds := svc.generateCredentials("")
	assert.True(t, strings.HasPrefix(creds.Username, "testuser"))
	assert.Len(t, creds.Username, len("testuser")+6)
	assert.Equal(t, "Test", creds.FirstName)
	assert.True(t, strings.HasPrefix(creds.LastName, "User"))
	assert.Len(t, creds.Password, passwordLength)
	for _, c := range creds.Password {
		assert.Contains(t, passwordCharset, string(c))
	}
	assert.GreaterOrEqual(t, creds.BirthDay, 1)
	assert.LessOrEqual(t, creds.BirthDay, 28)
	assert.GreaterOrEqual(t, creds.BirthMonth, 1)
	assert.LessOrEqual(t, creds.BirthMonth, 12)
	assert.GreaterOrEqual(t, creds.BirthYear, 1990)
	assert.LessOrEqual(t, creds.BirthYear, 2000)

	seeded := svc.generateCredentials("custom.name")
	assert.Equal(t, "custom.name", seeded.Username)
}
