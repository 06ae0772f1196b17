package report

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/pipeline"
)

func successResult() *pipeline.RunResult {
	return &pipeline.RunResult{
		Integration: "membership",
		Label:       "Membership",
		Mode:        config.ModeLive,
		Success:     true,
		Created:     12,
		Updated:     3,
		Attempts:    []pipeline.Attempt{{Number: 1, Success: true}},
		CompletedAt: time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC),
	}
}

func failedResult() *pipeline.RunResult {
	return &pipeline.RunResult{
		Integration: "tickets",
		Label:       "Tickets",
		Mode:        config.ModeLive,
		Attempts: []pipeline.Attempt{
			{Number: 1, Err: errors.New("first")},
			{Number: 2, Err: errors.New("poll timed out")},
		},
		CompletedAt: time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC),
	}
}

func notificationConfig(apiURL string) config.NotificationConfig {
	return config.NotificationConfig{
		Enabled: true,
		APIURL:  apiURL,
		APIKey:  "key-123",
		From:    "Integrations <noreply@example.com>",
		To:      []string{"ops@example.com", "crm@example.com"},
	}
}

func TestNotifier_RenderDefaults(t *testing.T) {
	n, err := NewNotifier(notificationConfig("http://unused"), "acme", nil, logger.NewNop())
	require.NoError(t, err)

	subject, body, err := n.Render(successResult())
	require.NoError(t, err)
	assert.Equal(t, "acme - KORE Integration - Membership Successful for 2024-03-10", subject)
	assert.Contains(t, body, "Records created</td><td>12")
	assert.Contains(t, body, "Records updated</td><td>3")

	subject, body, err = n.Render(failedResult())
	require.NoError(t, err)
	assert.Equal(t, "acme - KORE Integration - Tickets Unsuccessful for 2024-03-10", subject)
	assert.Contains(t, body, "Attempts: 2")
	assert.Contains(t, body, "poll timed out")
	assert.NotContains(t, body, "Records created")
}

func TestNotifier_CustomTemplates(t *testing.T) {
	cfg := notificationConfig("http://unused")
	cfg.SubjectTemplate = "[{{ integration | upcase }}] {{ created }}/{{ updated }}"
	cfg.BodyTemplate = "{{ client }}"

	n, err := NewNotifier(cfg, "acme", time.FixedZone("EST", -5*60*60), logger.NewNop())
	require.NoError(t, err)

	subject, body, err := n.Render(successResult())
	require.NoError(t, err)
	assert.Equal(t, "[MEMBERSHIP] 12/3", subject)
	assert.Equal(t, "acme", body)
}

func TestNotifier_InvalidTemplate(t *testing.T) {
	cfg := notificationConfig("http://unused")
	cfg.SubjectTemplate = "{% if %}"

	_, err := NewNotifier(cfg, "acme", nil, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject template")
}

func TestNotifier_ReportRun(t *testing.T) {
	var form url.Values
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		_, _ = w.Write([]byte(`{"id":"<1@example.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	n, err := NewNotifier(notificationConfig(srv.URL), "acme", nil, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, n.ReportRun(context.Background(), successResult()))
	assert.Equal(t, "api", user)
	assert.Equal(t, "key-123", pass)
	assert.Equal(t, "Integrations <noreply@example.com>", form.Get("from"))
	assert.Equal(t, []string{"ops@example.com", "crm@example.com"}, form["to"])
	assert.Equal(t, "acme - KORE Integration - Membership Successful for 2024-03-10", form.Get("subject"))
	assert.Contains(t, form.Get("html"), "<html>")
}

func TestNotifier_ReportRunError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Forbidden"))
	}))
	defer srv.Close()

	n, err := NewNotifier(notificationConfig(srv.URL), "acme", nil, logger.NewNop())
	require.NoError(t, err)

	err = n.ReportRun(context.Background(), failedResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Forbidden")
}

func TestNotifier_ReportAttemptIsNoop(t *testing.T) {
	n, err := NewNotifier(notificationConfig("http://unused"), "acme", nil, logger.NewNop())
	require.NoError(t, err)
	assert.NoError(t, n.ReportAttempt(context.Background(), pipeline.Attempt{}))
}
