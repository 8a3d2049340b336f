package copilot

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"incidentflow/clients"
	"incidentflow/core"
	"incidentflow/core/log"
	"incidentflow/messages"
	"incidentflow/utils"
)

// maxReplyLength keeps replies under Slack's section text limit
const maxReplyLength = 3000

// Click is a Co-Pilot button press from an incident alert
type Click struct {
	ActionID  string
	Value     string
	ChannelID string
	MessageTS string
	ThreadTS  string
	UserID    string
}

type CopilotService struct {
	slackClient clients.SlackClient
	llmClient   clients.LLMClient
}

func NewCopilotService(slackClient clients.SlackClient, llmClient clients.LLMClient) *CopilotService {
	return &CopilotService{
		slackClient: slackClient,
		llmClient:   llmClient,
	}
}

// HandleClick runs the button's prompt against its agent and replies in the alert's thread
func (s *CopilotService) HandleClick(ctx context.Context, click Click) (*clients.SlackPostMessageResponse, error) {
	log.Info("📋 Starting to handle co-pilot click", "channel", click.ChannelID, "user", click.UserID)

	if click.ActionID != messages.CopilotActionID {
		return nil, fmt.Errorf("action %s: %w", click.ActionID, core.ErrNotFound)
	}
	if click.ChannelID == "" {
		return nil, fmt.Errorf("channel cannot be empty")
	}

	value, err := messages.DecodeCopilotValue(click.Value)
	if err != nil {
		return nil, err
	}
	agentID, err := uuid.Parse(value.AgentUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid agent uuid %q", core.ErrInvalidModel, value.AgentUUID)
	}

	threadTS := click.ThreadTS
	if threadTS == "" {
		threadTS = click.MessageTS
	}

	answer, err := s.llmClient.RunAgent(ctx, agentID.String(), value.Message)
	if err != nil {
		log.Error("❌ Co-pilot agent failed", "agent", agentID, "error", err)
		answer = fmt.Sprintf("⚠️ Co-Pilot could not complete the request: %v", err)
	}

	reply := &messages.Message{
		Channel:  click.ChannelID,
		ThreadTS: threadTS,
		Text:     utils.Truncate(utils.ConvertMarkdownToSlack(answer), maxReplyLength),
	}
	if click.UserID != "" {
		reply.Text = fmt.Sprintf("<@%s> %s", click.UserID, reply.Text)
	}

	resp, err := s.slackClient.PostMessage(ctx, reply)
	if err != nil {
		return nil, fmt.Errorf("failed to post co-pilot reply: %w", err)
	}

	log.Info("📋 Completed successfully - co-pilot replied", "channel", resp.Channel, "thread", threadTS)
	return resp, nil
}
