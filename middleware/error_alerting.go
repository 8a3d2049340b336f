package middleware

import (
	"crypto/md5"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"incidentflow/core/log"
)

type SlackAlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
}

type ErrorAlertMiddleware struct {
	config        SlackAlertConfig
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.Mutex
	alertCooldown time.Duration
	post          func(url string, msg *slack.WebhookMessage) error
}

func NewErrorAlertMiddleware(config SlackAlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute, // Don't alert same error more than once per 10min
		post:          slack.PostWebhook,
	}
}

// statusRecorder captures the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// HTTPMiddleware alerts on panics and 5xx responses
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		context := fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				m.alert(fmt.Sprintf("%s: PANIC - %v", context, p), context+" (PANIC)")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(rec, r)

		if rec.status >= http.StatusInternalServerError {
			m.AlertOnError(fmt.Errorf("responded with status %d", rec.status), context)
		}
	})
}

// WrapBackgroundTask alerts when task fails or panics
func (m *ErrorAlertMiddleware) WrapBackgroundTask(taskName string, task func() error) func() error {
	return func() (err error) {
		context := fmt.Sprintf("Background task: %s", taskName)
		defer func() {
			if p := recover(); p != nil {
				m.alert(fmt.Sprintf("%s: PANIC - %v", context, p), context+" (PANIC)")
				err = fmt.Errorf("panic in %s: %v", taskName, p)
			}
		}()

		if err := task(); err != nil {
			m.AlertOnError(err, context)
			return err
		}
		return nil
	}
}

// AlertOnError sends an alert unless the same error was alerted within the cooldown
func (m *ErrorAlertMiddleware) AlertOnError(err error, context string) {
	errorMsg := fmt.Sprintf("%s: %v", context, err)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	m.mutex.Lock()
	if lastAlert, exists := m.alertedErrors[hash]; exists && time.Since(lastAlert) < m.alertCooldown {
		m.mutex.Unlock()
		return
	}
	m.alertedErrors[hash] = time.Now()
	m.mutex.Unlock()

	m.alert(errorMsg, context)
}

func (m *ErrorAlertMiddleware) alert(errorMsg, context string) {
	log.Error("❌ "+errorMsg, "context", context)
	if m.config.WebhookURL == "" {
		return // Slack alerts disabled
	}
	go m.sendSlackAlert(errorMsg, context)
}

func (m *ErrorAlertMiddleware) sendSlackAlert(errorMsg, context string) {
	if err := m.post(m.config.WebhookURL, m.buildAlert(errorMsg, context)); err != nil {
		log.Error("❌ Failed to send Slack alert", "error", err)
	}
}

func (m *ErrorAlertMiddleware) buildAlert(errorMsg, context string) *slack.WebhookMessage {
	prefix := ""
	if m.config.Environment == "dev" {
		prefix = "[dev] "
	}
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(
		slack.PlainTextType, fmt.Sprintf("🚨 %s[%s] Error Alert", prefix, m.config.AppName), true, false,
	))
	fields := slack.NewSectionBlock(nil, []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Service:* %s", m.config.AppName), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Environment:* %s", m.config.Environment), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Context:* %s", context), false, false),
	}, nil)
	body := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Error:*\n```%s```", errorMsg), false, false),
		nil, nil,
	)

	return &slack.WebhookMessage{
		Text:   errorMsg,
		Blocks: &slack.Blocks{BlockSet: []slack.Block{header, fields, body}},
	}
}
