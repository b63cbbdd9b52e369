package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufunda-bots/internal/common/httpclient"
	"ufunda-bots/internal/common/logger"
)

type capturedPost struct {
	mu     sync.Mutex
	bodies []map[string]interface{}
}

func (c *capturedPost) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.mu.Lock()
		c.bodies = append(c.bodies, body)
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (c *capturedPost) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

func TestDashboardSinkPostsToAllURLs(t *testing.T) {
	first := &capturedPost{}
	second := &capturedPost{}
	srvA := httptest.NewServer(first.handler(http.StatusOK))
	defer srvA.Close()
	srvB := httptest.NewServer(second.handler(http.StatusOK))
	defer srvB.Close()

	sink := NewDashboardSink(
		[]string{srvA.URL, srvB.URL},
		httpclient.NewClient(2*time.Second),
		logger.NewTestLogger(t),
	)

	err := sink.PublishBotResult(context.Background(), BotResultEvent{
		ApplicantRef: "a1",
		Bot:          "wits",
		Status:       "ok",
		TS:           1234.5,
	})
	require.NoError(t, err)

	for _, c := range []*capturedPost{first, second} {
		require.Equal(t, 1, c.count())
		assert.Equal(t, "bot_result", c.bodies[0]["event"])
		assert.Equal(t, "wits", c.bodies[0]["bot"])
		assert.Equal(t, "ok", c.bodies[0]["status"])
	}
}

func TestDashboardSinkFailureDoesNotSkipRemainingURLs(t *testing.T) {
	failing := &capturedPost{}
	healthy := &capturedPost{}
	srvA := httptest.NewServer(failing.handler(http.StatusInternalServerError))
	defer srvA.Close()
	srvB := httptest.NewServer(healthy.handler(http.StatusOK))
	defer srvB.Close()

	sink := NewDashboardSink(
		[]string{srvA.URL, srvB.URL},
		httpclient.NewClient(2*time.Second),
		logger.NewTestLogger(t),
	)

	err := sink.PublishRunComplete(context.Background(), RunCompleteEvent{
		ApplicantRef: "a1",
		Summary:      map[string]interface{}{"total": 2},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, healthy.count(), "healthy URL must still receive the event")
}

func TestDashboardSinkStampsEventField(t *testing.T) {
	c := &capturedPost{}
	srv := httptest.NewServer(c.handler(http.StatusOK))
	defer srv.Close()

	sink := NewDashboardSink([]string{srv.URL}, httpclient.NewClient(2*time.Second), logger.NewTestLogger(t))

	require.NoError(t, sink.PublishRunComplete(context.Background(), RunCompleteEvent{ApplicantRef: "a1"}))
	require.Equal(t, 1, c.count())
	assert.Equal(t, "run_complete", c.bodies[0]["event"])
}
