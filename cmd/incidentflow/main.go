package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"incidentflow/config"
	"incidentflow/core/log"
)

type Options struct {
	Verbose bool `short:"v" long:"verbose" description:"Enable debug logging"`
}

var opts Options

func main() {
	parser := flags.NewParser(&opts, flags.Default)

	commands := []struct {
		name, short string
		data        flags.Commander
	}{
		{"render", "Print a workflow definition as JSON or YAML", &RenderCommand{}},
		{"submit", "Submit a workflow to the remote engine and stream its events", &SubmitCommand{}},
		{"run", "Run a workflow on this host", &RunCommand{}},
		{"serve", "Serve the HTTP API and Slack interactions", &ServeCommand{}},
		{"notify", "Post a message template to Slack", &NotifyCommand{}},
		{"upload-results", "Upload investigation reports and post the results summary", &UploadResultsCommand{}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, "", c.data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and points logging at stderr so stdout stays clean for output
func loadConfig() (*config.AppConfig, error) {
	log.SetOutput(os.Stderr, log.ParseLevel(os.Getenv("LOG_LEVEL")))

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	level := log.ParseLevel(cfg.LogLevel)
	if opts.Verbose {
		level = log.ParseLevel("debug")
	}
	log.SetOutput(os.Stderr, level)
	return cfg, nil
}
