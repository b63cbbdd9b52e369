package wits

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

func fakePortal(t *testing.T, personalPosts *map[string][]string, academicStatus int) *httptest.Server {
	t.Helper()
	ok := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>ok</body></html>`))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(applyPath, ok)
	mux.HandleFunc(profilePath, ok)
	mux.HandleFunc(personalPath, func(w http.ResponseWriter, r *http.Request) {
		if personalPosts != nil {
			require.NoError(t, r.ParseForm())
			*personalPosts = r.PostForm
		}
		ok(w, r)
	})
	mux.HandleFunc(academicPath, func(w http.ResponseWriter, r *http.Request) {
		if academicStatus != http.StatusOK {
			w.WriteHeader(academicStatus)
			return
		}
		ok(w, r)
	})
	mux.HandleFunc(programsPath, ok)
	mux.HandleFunc(uploadPath, ok)
	mux.HandleFunc(paymentPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Payment successful</body></html>`))
	})
	mux.HandleFunc(submitPath, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><span class="application-number">WITS-2026-0015</span></body></html>`))
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
		},
		"academic": map[string]interface{}{
			"school":      "Test High",
			"aps_score":   38,
			"matric_year": "2025",
		},
		"program_preferences": []interface{}{
			map[string]interface{}{"faculty": "Engineering", "program_name": "BEngSc"},
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
	var personalPosts map[string][]string
	srv := fakePortal(t, &personalPosts, http.StatusOK)
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	out, err := svc.Execute(context.Background(), testApplicant())
	require.NoError(t, err)

	assert.Equal(t, "Wits", out["university"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "PAID", out["payment_status"])
	assert.Equal(t, "WITS-2026-0015", out["application_number"])

	// Every payload field of the section is posted under its own name.
	assert.Equal(t, []string{"Test"}, personalPosts["first_name"])
	assert.Equal(t, []string{"0001010000000"}, personalPosts["id_number"])
}

func TestExecuteSectionFailureIsNonFatal(t *testing.T) {
	srv := fakePortal(t, nil, http.StatusInternalServerError)
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	out, err := svc.Execute(context.Background(), testApplicant())
	require.NoError(t, err)

	assert.Equal(t, true, out["success"], "a failed section does not abort the run")
	errs, ok := out["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "academic section error")
}

func TestExecuteNonCardPaymentStaysPending(t *testing.T) {
	srv := fakePortal(t, nil, http.StatusOK)
	defer srv.Close()

	applicant := testApplicant()
	applicant["payment_method"] = "eft"

	svc := newTestService(t, srv.URL)
	out, err := svc.Execute(context.Background(), applicant)
	require.NoError(t, err)

	assert.Equal(t, "PENDING", out["payment_status"])
	assert.Equal(t, false, out["success"])
}

func TestExecuteMissingEmail(t *testing.T) {
	srv := fakePortal(t, nil, http.StatusOK)
	defer srv.Close()

	applicant := testApplicant()
	delete(applicant, "created_email")

	svc := newTestService(t, srv.URL)
	_, err := svc.Execute(context.Background(), applicant)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingApplicantField, errors.Normalize(err).Code)
}
