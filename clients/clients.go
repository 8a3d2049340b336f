package clients

import (
	"context"

	"incidentflow/messages"
	"incidentflow/workflow"
)

// SlackClient posts rendered message templates and investigation files
type SlackClient interface {
	PostMessage(ctx context.Context, msg *messages.Message) (*SlackPostMessageResponse, error)
	UploadFile(ctx context.Context, params SlackUploadParams) (*SlackFile, error)
	AuthTest(ctx context.Context) (*SlackAuthTestResponse, error)
}

// OrchestratorClient talks to the remote workflow engine
type OrchestratorClient interface {
	ExecuteWorkflow(ctx context.Context, wf *workflow.Workflow, handler EventHandler) error
	GetIntegrationToken(ctx context.Context, path string) (string, error)
	Request(ctx context.Context, method, path string) (string, error)
}

// EventHandler receives streamed workflow events. Returning an error stops the stream.
type EventHandler func(event WorkflowEvent) error

// LLMClient runs agent and completion steps
type LLMClient interface {
	RunAgent(ctx context.Context, agent, message string) (string, error)
	Complete(ctx context.Context, model, prompt string) (string, error)
}
