package slack

import (
	"context"

	"github.com/slack-go/slack"

	"incidentflow/clients"
	"incidentflow/core"
	"incidentflow/messages"
)

// SlackClient implements the clients.SlackClient interface using the slack-go/slack SDK
type SlackClient struct {
	*slack.Client
}

// NewSlackClient creates a new Slack client with the provided bot token
func NewSlackClient(authToken string, options ...slack.Option) clients.SlackClient {
	return &SlackClient{
		Client: slack.New(authToken, options...),
	}
}

// PostMessage validates msg and sends it with chat.postMessage
func (c *SlackClient) PostMessage(ctx context.Context, msg *messages.Message) (*clients.SlackPostMessageResponse, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	channel, timestamp, err := c.Client.PostMessageContext(ctx, msg.Channel, msg.MsgOptions()...)
	if err != nil {
		return nil, &core.SlackAPIError{Method: "chat.postMessage", Err: err}
	}

	return &clients.SlackPostMessageResponse{
		Channel:   channel,
		Timestamp: timestamp,
	}, nil
}

// UploadFile shares a text file into a channel and returns its permalink
func (c *SlackClient) UploadFile(ctx context.Context, params clients.SlackUploadParams) (*clients.SlackFile, error) {
	summary, err := c.Client.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:         params.Channel,
		Filename:        params.Filename,
		Title:           params.Title,
		Content:         params.Content,
		FileSize:        len(params.Content),
		ThreadTimestamp: params.ThreadTS,
	})
	if err != nil {
		return nil, &core.SlackAPIError{Method: "files.uploadV2", Err: err}
	}

	file, _, _, err := c.Client.GetFileInfoContext(ctx, summary.ID, 0, 0)
	if err != nil {
		return nil, &core.SlackAPIError{Method: "files.info", Err: err}
	}

	return &clients.SlackFile{
		ID:        summary.ID,
		Title:     summary.Title,
		Permalink: file.Permalink,
	}, nil
}

// AuthTest verifies the bot token and returns information about the bot
func (c *SlackClient) AuthTest(ctx context.Context) (*clients.SlackAuthTestResponse, error) {
	response, err := c.Client.AuthTestContext(ctx)
	if err != nil {
		return nil, &core.SlackAPIError{Method: "auth.test", Err: err}
	}

	return &clients.SlackAuthTestResponse{
		UserID: response.UserID,
		TeamID: response.TeamID,
		BotID:  response.BotID,
	}, nil
}
