package orchestrator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"incidentflow/clients"
	"incidentflow/config"
	"incidentflow/core/log"
	"incidentflow/workflow"
)

// Client implements clients.OrchestratorClient against the remote workflow engine API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	runner     string
}

// NewClient creates a client for the configured engine. Streams are bounded by the
// caller's context, not by an HTTP timeout.
func NewClient(cfg config.OrchestratorConfig) clients.OrchestratorClient {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		apiKey:     cfg.APIKey,
		runner:     cfg.Runner,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "UserKey "+c.apiKey)
	return req, nil
}

// ExecuteWorkflow submits wf for execution on the configured runner and passes every
// streamed event to handler until the stream ends.
func (c *Client) ExecuteWorkflow(ctx context.Context, wf *workflow.Workflow, handler clients.EventHandler) error {
	log.Info("📋 Starting to execute workflow", "workflow", wf.Name, "runner", c.runner)

	doc, err := wf.ToMap()
	if err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	query := url.Values{}
	query.Set("runner", c.runner)
	query.Set("operation", "execute_workflow")
	req, err := c.newRequest(ctx, http.MethodPost, "api/v1/workflow?"+query.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit workflow %s: %w", wf.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("workflow submission failed: status %d, body: %s", resp.StatusCode, string(raw))
	}

	count, err := readEvents(resp.Body, handler)
	if err != nil {
		return fmt.Errorf("workflow %s stream: %w", wf.Name, err)
	}

	log.Info("📋 Completed successfully - workflow stream finished", "workflow", wf.Name, "events", count)
	return nil
}

// readEvents parses a text/event-stream body. Multi-line data fields are joined with
// newlines and comment lines are skipped.
func readEvents(r io.Reader, handler clients.EventHandler) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		eventType string
		data      []string
		count     int
	)
	dispatch := func() error {
		if len(data) == 0 {
			eventType = ""
			return nil
		}
		event := clients.WorkflowEvent{Type: eventType, Data: json.RawMessage(strings.Join(data, "\n"))}
		eventType, data = "", nil
		count++
		return handler(event)
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := dispatch(); err != nil {
				return count, err
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, dispatch()
}

// Request calls an engine endpoint and returns the response body
func (c *Client) Request(ctx context.Context, method, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("request to %s failed: status %d, body: %s", path, resp.StatusCode, string(raw))
	}
	return string(raw), nil
}

// GetIntegrationToken fetches an integration credential document such as
// api/v1/integration/slack/token/1. The raw JSON body is returned so callers can
// pick fields out of it.
func (c *Client) GetIntegrationToken(ctx context.Context, path string) (string, error) {
	body, err := c.Request(ctx, http.MethodGet, path)
	if err != nil {
		return "", err
	}
	if !json.Valid([]byte(body)) {
		return "", fmt.Errorf("integration token response from %s is not JSON", path)
	}
	return body, nil
}
