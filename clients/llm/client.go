package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"incidentflow/clients"
	"incidentflow/config"
	"incidentflow/core/log"
)

const defaultMaxTokens = 4096

// Client implements clients.LLMClient on the Anthropic Messages API
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewClient creates a client using the configured API key and default model
func NewClient(cfg config.AnthropicConfig, opts ...option.RequestOption) clients.LLMClient {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &Client{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(cfg.Model),
	}
}

func agentSystemPrompt(agent string) string {
	return fmt.Sprintf(
		"You are %s, an incident response agent. Investigate carefully, report only what the evidence supports and answer in markdown.",
		agent,
	)
}

// RunAgent sends message to a named agent persona on the default model
func (c *Client) RunAgent(ctx context.Context, agent, message string) (string, error) {
	log.Info("📋 Starting to run agent", "agent", agent)
	out, err := c.send(ctx, c.model, agentSystemPrompt(agent), message)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", agent, err)
	}
	log.Info("📋 Completed successfully - agent responded", "agent", agent, "chars", len(out))
	return out, nil
}

// Complete runs a single prompt. An empty model uses the configured default.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	m := c.model
	if model != "" {
		m = anthropic.Model(model)
	}
	return c.send(ctx, m, "", prompt)
}

func (c *Client) send(ctx context.Context, model anthropic.Model, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("model %s returned no text", model)
	}
	return strings.Join(parts, "\n"), nil
}
