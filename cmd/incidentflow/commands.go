package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"incidentflow/clients"
	"incidentflow/clients/llm"
	"incidentflow/clients/orchestrator"
	slackclient "incidentflow/clients/slack"
	"incidentflow/config"
	"incidentflow/core/log"
	"incidentflow/db"
	"incidentflow/messages"
	"incidentflow/services/runner"
	"incidentflow/services/uploader"
	"incidentflow/workflows"
)

type workflowArg struct {
	Workflow string `positional-arg-name:"workflow" required:"yes"`
}

type RenderCommand struct {
	Format string      `short:"f" long:"format" default:"json" choice:"json" choice:"yaml" description:"Output format"`
	Output string      `short:"o" long:"output" description:"Write to this file instead of stdout"`
	Args   workflowArg `positional-args:"yes"`
}

func (c *RenderCommand) Execute(args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	wf, err := workflows.Lookup(c.Args.Workflow)
	if err != nil {
		return err
	}

	var out string
	if c.Format == "yaml" {
		out, err = wf.ToYAML()
	} else {
		out, err = wf.ToJSON()
	}
	if err != nil {
		return err
	}

	if c.Output == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(c.Output, []byte(out+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}
	log.Info("✅ Workflow written", "workflow", wf.Name, "path", c.Output)
	return nil
}

type SubmitCommand struct {
	Args workflowArg `positional-args:"yes"`
}

func (c *SubmitCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.OrchestratorConfig.IsConfigured() {
		return errors.New("KUBIYA_API_KEY, KUBIYA_API_URL and KUBIYA_RUNNER must be set to submit workflows")
	}

	wf, err := workflows.Lookup(c.Args.Workflow)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := orchestrator.NewClient(cfg.OrchestratorConfig)
	return client.ExecuteWorkflow(ctx, wf, func(event clients.WorkflowEvent) error {
		fmt.Println(event.String())
		return nil
	})
}

type RunCommand struct {
	Params  map[string]string `short:"p" long:"param" key-value-delimiter:"=" description:"Workflow parameter as key=value (repeatable)"`
	Workers int               `long:"workers" default:"4" description:"Maximum steps running at once"`
	Args    workflowArg       `positional-args:"yes"`
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	wf, err := workflows.Lookup(c.Args.Workflow)
	if err != nil {
		return err
	}

	runnerOpts := runner.Options{
		LockDir:    cfg.RunLockDir,
		MaxWorkers: c.Workers,
	}
	if cfg.AnthropicConfig.IsConfigured() {
		runnerOpts.LLM = llm.NewClient(cfg.AnthropicConfig)
	}
	if cfg.OrchestratorConfig.IsConfigured() {
		runnerOpts.Orchestrator = orchestrator.NewClient(cfg.OrchestratorConfig)
	}
	if cfg.DatabaseConfig.IsConfigured() {
		repo, closeDB, err := openLedger(cfg.DatabaseConfig)
		if err != nil {
			return err
		}
		defer closeDB()
		runnerOpts.Ledger = repo
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := runner.NewRunner(runnerOpts).Run(ctx, wf, c.Params)
	if report != nil {
		printReport(os.Stdout, report)
	}
	return runErr
}

func printReport(w io.Writer, report *runner.Report) {
	fmt.Fprintf(w, "Run %s (%s): %s\n", report.Name, report.RunID, report.Status)
	for _, step := range report.Steps {
		line := fmt.Sprintf("  %-40s %-10s attempts=%d", step.Step, step.Status, step.Attempts)
		if step.Error != "" {
			line += "  " + firstLine(step.Error)
		}
		fmt.Fprintln(w, line)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func openLedger(cfg config.DatabaseConfig) (*db.RunsRepository, func(), error) {
	conn, err := db.NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.ApplyMigrations(conn.DB, cfg.Driver); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return db.NewRunsRepository(conn), func() { conn.Close() }, nil
}

type NotifyCommand struct {
	Data     string `short:"d" long:"data" description:"Template fields as a JSON object"`
	DataFile string `long:"data-file" description:"Read template fields from a JSON file"`
	DryRun   bool   `long:"dry-run" description:"Print the rendered payload instead of posting it"`
	Args     struct {
		Template string `positional-arg-name:"template" required:"yes"`
	} `positional-args:"yes"`
}

func (c *NotifyCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data := []byte(c.Data)
	if c.DataFile != "" {
		data, err = os.ReadFile(c.DataFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", c.DataFile, err)
		}
	}
	if len(data) == 0 {
		return fmt.Errorf("template data is required, one of: %s", strings.Join(messages.TemplateNames(), ", "))
	}

	msg, err := messages.RenderTemplate(c.Args.Template, data)
	if err != nil {
		return err
	}

	if c.DryRun {
		out, err := msg.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if !cfg.SlackConfig.IsConfigured() {
		return errors.New("SLACK_BOT_TOKEN must be set to post messages")
	}
	resp, err := slackclient.NewSlackClient(cfg.SlackConfig.BotToken).PostMessage(context.Background(), msg)
	if err != nil {
		return err
	}
	fmt.Printf("Posted to %s at %s\n", resp.Channel, resp.Timestamp)
	return nil
}

// UploadResultsCommand is invoked inside the uploader tool container, which passes its
// arguments as environment variables.
type UploadResultsCommand struct{}

func (c *UploadResultsCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token := os.Getenv("slack_token")
	if token == "" {
		token = cfg.SlackConfig.BotToken
	}
	if token == "" {
		return errors.New("slack_token or SLACK_BOT_TOKEN must be set")
	}

	service := uploader.NewUploaderService(slackclient.NewSlackClient(token))
	result, err := service.Upload(context.Background(), uploader.InputFromEnv(os.Getenv))
	if err != nil {
		return err
	}

	summary := map[string]any{
		"status":     "success",
		"file_links": result.FileLinks,
		"failed":     result.Failed,
		"timestamp":  result.Timestamp,
	}
	if len(result.Failed) > 0 {
		summary["status"] = "partial"
	}
	out, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
