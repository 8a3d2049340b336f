package clients

import "encoding/json"

// SlackAuthTestResponse represents the response from Slack's auth.test API
type SlackAuthTestResponse struct {
	UserID string
	TeamID string
	BotID  string
}

// SlackPostMessageResponse represents the response from posting a message to Slack
type SlackPostMessageResponse struct {
	Channel   string
	Timestamp string
}

// SlackUploadParams describes a text file shared into a channel
type SlackUploadParams struct {
	Channel  string
	Filename string
	Title    string
	Content  string
	ThreadTS string
}

// SlackFile is an uploaded file
type SlackFile struct {
	ID        string
	Title     string
	Permalink string
}

// WorkflowEvent is one server-sent event from a workflow execution
type WorkflowEvent struct {
	Type string
	Data json.RawMessage
}

// String returns the event payload as text
func (e WorkflowEvent) String() string {
	if e.Type == "" {
		return string(e.Data)
	}
	return e.Type + ": " + string(e.Data)
}
