package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMiddleware() (*ErrorAlertMiddleware, chan *slack.WebhookMessage) {
	sent := make(chan *slack.WebhookMessage, 10)
	m := NewErrorAlertMiddleware(SlackAlertConfig{
		WebhookURL:  "https://hooks.slack.test/alerts",
		Environment: "dev",
		AppName:     "incidentflow",
	})
	m.post = func(url string, msg *slack.WebhookMessage) error {
		sent <- msg
		return nil
	}
	return m, sent
}

func waitForAlert(t *testing.T, sent chan *slack.WebhookMessage) *slack.WebhookMessage {
	t.Helper()
	select {
	case msg := <-sent:
		return msg
	case <-time.After(2 * time.Second):
		require.FailNow(t, "alert was not sent")
		return nil
	}
}

func TestHTTPMiddleware(t *testing.T) {
	t.Run("Success_NoAlertOnOK", func(t *testing.T) {
		m, sent := newTestMiddleware()
		handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, sent)
	})

	t.Run("Success_AlertsOnServerError", func(t *testing.T) {
		m, sent := newTestMiddleware()
		handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/runs/x", nil))

		msg := waitForAlert(t, sent)
		assert.Contains(t, msg.Text, "HTTP GET /runs/x")
		assert.Contains(t, msg.Text, "status 502")
		require.NotNil(t, msg.Blocks)
		assert.Len(t, msg.Blocks.BlockSet, 3)
	})

	t.Run("Success_RecoversPanic", func(t *testing.T) {
		m, sent := newTestMiddleware()
		handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("nil map")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/slack/interactions", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, waitForAlert(t, sent).Text, "PANIC - nil map")
	})
}

func TestAlertOnError(t *testing.T) {
	t.Run("Success_Deduplicates", func(t *testing.T) {
		m, sent := newTestMiddleware()
		m.AlertOnError(errors.New("db down"), "run ledger")
		m.AlertOnError(errors.New("db down"), "run ledger")

		waitForAlert(t, sent)
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, sent)
	})

	t.Run("Success_DisabledWithoutWebhook", func(t *testing.T) {
		m, sent := newTestMiddleware()
		m.config.WebhookURL = ""
		m.AlertOnError(errors.New("db down"), "run ledger")

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, sent)
	})
}

func TestWrapBackgroundTask(t *testing.T) {
	m, sent := newTestMiddleware()

	err := m.WrapBackgroundTask("record-run", func() error { return errors.New("locked") })()
	assert.EqualError(t, err, "locked")
	assert.Contains(t, waitForAlert(t, sent).Text, "Background task: record-run")

	err = m.WrapBackgroundTask("explode", func() error { panic("bad") })()
	assert.ErrorContains(t, err, "panic in explode")
	waitForAlert(t, sent)
}
