package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"incidentflow/clients/llm"
	slackclient "incidentflow/clients/slack"
	"incidentflow/config"
	"incidentflow/core/log"
	"incidentflow/handlers"
	"incidentflow/middleware"
	"incidentflow/services/copilot"
)

type ServeCommand struct {
	Port string `long:"port" description:"Listen port, overrides PORT"`
}

func (c *ServeCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Port != "" {
		cfg.Port = c.Port
	}

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "incidentflow",
	})

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Error("❌ Failed to write health check response", "error", err)
		}
	}).Methods("GET")

	var runs handlers.RunsReader
	if cfg.DatabaseConfig.IsConfigured() {
		repo, closeDB, err := openLedger(cfg.DatabaseConfig)
		if err != nil {
			return err
		}
		defer closeDB()
		runs = repo
	}
	handlers.NewWorkflowsHTTPHandler(runs).SetupEndpoints(router)

	if cfg.SlackConfig.IsConfigured() && cfg.SlackConfig.SigningSecret != "" && cfg.AnthropicConfig.IsConfigured() {
		copilotService := copilot.NewCopilotService(
			slackclient.NewSlackClient(cfg.SlackConfig.BotToken),
			llm.NewClient(cfg.AnthropicConfig),
		)
		handlers.NewSlackInteractionsHandler(cfg.SlackConfig.SigningSecret, copilotService).SetupEndpoints(router)
	} else {
		log.Warn("⚠️ Slack interactions disabled - SLACK_BOT_TOKEN, SLACK_SIGNING_SECRET and ANTHROPIC_API_KEY are required")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(newCORS(cfg).Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}
	return handleGracefulShutdown(server)
}

func newCORS(cfg *config.AppConfig) *cors.Cors {
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
}

func handleGracefulShutdown(server *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("✅ Listening", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error("❌ Server error", "error", err)
		return err
	case <-stop:
	}
	log.Info("🛑 Shutdown signal received, cleaning up...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("❌ Server shutdown error", "error", err)
		return err
	}

	log.Info("✅ Server stopped gracefully")
	return nil
}
