package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/slack-go/slack"

	"incidentflow/clients"
	"incidentflow/core/log"
	"incidentflow/messages"
	"incidentflow/services/copilot"
)

// CopilotService answers Co-Pilot button clicks
type CopilotService interface {
	HandleClick(ctx context.Context, click copilot.Click) (*clients.SlackPostMessageResponse, error)
}

type SlackInteractionsHandler struct {
	signingSecret string
	copilot       CopilotService
	// dispatch runs click handling after the request is acknowledged
	dispatch func(func())
}

func NewSlackInteractionsHandler(signingSecret string, copilotService CopilotService) *SlackInteractionsHandler {
	return &SlackInteractionsHandler{
		signingSecret: signingSecret,
		copilot:       copilotService,
		dispatch:      func(fn func()) { go fn() },
	}
}

func (h *SlackInteractionsHandler) SetupEndpoints(router *mux.Router) {
	log.Info("🚀 Registering Slack interaction endpoints")
	router.HandleFunc("/slack/interactions", h.HandleInteraction).Methods("POST")
	log.Info("✅ POST /slack/interactions endpoint registered")
}

func (h *SlackInteractionsHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	log.Info("📨 Slack interaction received", "remote", r.RemoteAddr)
	var buf bytes.Buffer
	tee := io.TeeReader(r.Body, &buf)

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		log.Warn("❌ Invalid secret verifier", "error", err)
		http.Error(w, "invalid secret verifier", http.StatusUnauthorized)
		return
	}
	if _, err := io.Copy(&verifier, tee); err != nil {
		log.Error("❌ Failed to read request body", "error", err)
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}
	if err := verifier.Ensure(); err != nil {
		log.Warn("❌ Slack signature verification failed", "error", err)
		http.Error(w, "signature verification failed", http.StatusUnauthorized)
		return
	}

	form, err := url.ParseQuery(buf.String())
	if err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(form.Get("payload")), &callback); err != nil {
		log.Warn("❌ Failed to parse interaction payload", "error", err)
		http.Error(w, "failed to parse payload", http.StatusBadRequest)
		return
	}

	if callback.Type != slack.InteractionTypeBlockActions {
		log.Debug("📋 Ignoring interaction", "type", callback.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, action := range callback.ActionCallback.BlockActions {
		if action.ActionID != messages.CopilotActionID {
			log.Debug("📋 Ignoring block action", "action_id", action.ActionID)
			continue
		}

		click := copilot.Click{
			ActionID:  action.ActionID,
			Value:     action.Value,
			ChannelID: callback.Channel.ID,
			MessageTS: callback.Message.Timestamp,
			ThreadTS:  callback.Message.ThreadTimestamp,
			UserID:    callback.User.ID,
		}
		h.dispatch(func() {
			if _, err := h.copilot.HandleClick(context.Background(), click); err != nil {
				log.Error("❌ Failed to handle co-pilot click", "channel", click.ChannelID, "error", err)
			}
		})
	}

	w.WriteHeader(http.StatusOK)
}
