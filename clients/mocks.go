package clients

import (
	"context"

	"github.com/stretchr/testify/mock"

	"incidentflow/messages"
	"incidentflow/workflow"
)

// MockSlackClient is a mock implementation of SlackClient
type MockSlackClient struct {
	mock.Mock
}

func (m *MockSlackClient) PostMessage(ctx context.Context, msg *messages.Message) (*SlackPostMessageResponse, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SlackPostMessageResponse), args.Error(1)
}

func (m *MockSlackClient) UploadFile(ctx context.Context, params SlackUploadParams) (*SlackFile, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SlackFile), args.Error(1)
}

func (m *MockSlackClient) AuthTest(ctx context.Context) (*SlackAuthTestResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SlackAuthTestResponse), args.Error(1)
}

// MockOrchestratorClient is a mock implementation of OrchestratorClient
type MockOrchestratorClient struct {
	mock.Mock
}

func (m *MockOrchestratorClient) ExecuteWorkflow(ctx context.Context, wf *workflow.Workflow, handler EventHandler) error {
	args := m.Called(ctx, wf, handler)
	return args.Error(0)
}

func (m *MockOrchestratorClient) GetIntegrationToken(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *MockOrchestratorClient) Request(ctx context.Context, method, path string) (string, error) {
	args := m.Called(ctx, method, path)
	return args.String(0), args.Error(1)
}

// MockLLMClient is a mock implementation of LLMClient
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) RunAgent(ctx context.Context, agent, message string) (string, error) {
	args := m.Called(ctx, agent, message)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	args := m.Called(ctx, model, prompt)
	return args.String(0), args.Error(1)
}
