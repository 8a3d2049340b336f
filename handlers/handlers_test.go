package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"incidentflow/clients"
	"incidentflow/messages"
	"incidentflow/models"
	"incidentflow/services/copilot"
)

type MockRunsReader struct {
	mock.Mock
}

func (m *MockRunsReader) GetRun(ctx context.Context, id string) (mo.Option[*models.Run], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.Run]), args.Error(1)
}

func (m *MockRunsReader) ListSteps(ctx context.Context, runID string) ([]*models.StepResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StepResult), args.Error(1)
}

func (m *MockRunsReader) ListRuns(ctx context.Context, workflow string, limit int) ([]*models.Run, error) {
	args := m.Called(ctx, workflow, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Run), args.Error(1)
}

type MockCopilotService struct {
	mock.Mock
}

func (m *MockCopilotService) HandleClick(ctx context.Context, click copilot.Click) (*clients.SlackPostMessageResponse, error) {
	args := m.Called(ctx, click)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.SlackPostMessageResponse), args.Error(1)
}

func newWorkflowsRouter(runs RunsReader) *mux.Router {
	router := mux.NewRouter()
	NewWorkflowsHTTPHandler(runs).SetupEndpoints(router)
	return router
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestWorkflowsHTTPHandler(t *testing.T) {
	t.Run("Success_ListWorkflows", func(t *testing.T) {
		rec := serve(newWorkflowsRouter(nil), http.MethodGet, "/workflows")
		require.Equal(t, http.StatusOK, rec.Code)

		var summaries []WorkflowSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
		require.Len(t, summaries, 4)
		assert.Equal(t, "production-incident-workflow", summaries[0].Name)
		assert.Equal(t, 17, summaries[0].Steps)
	})

	t.Run("Success_GetWorkflowJSON", func(t *testing.T) {
		rec := serve(newWorkflowsRouter(nil), http.MethodGet, "/workflows/url_validation_workflow")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "url_validation_workflow", doc["name"])
	})

	t.Run("Success_GetWorkflowYAML", func(t *testing.T) {
		rec := serve(newWorkflowsRouter(nil), http.MethodGet, "/workflows/text_processing_workflow?format=yaml")
		require.Equal(t, http.StatusOK, rec.Code)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Len(t, doc["steps"], 5)
	})

	t.Run("Error_UnknownWorkflow", func(t *testing.T) {
		rec := serve(newWorkflowsRouter(nil), http.MethodGet, "/workflows/nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Error_UnknownFormat", func(t *testing.T) {
		rec := serve(newWorkflowsRouter(nil), http.MethodGet, "/workflows/url_validation_workflow?format=toml")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Error_RunsWithoutLedger", func(t *testing.T) {
		rec := serve(newWorkflowsRouter(nil), http.MethodGet, "/runs/run_1")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRunEndpoints(t *testing.T) {
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	run := &models.Run{
		ID:        "run_01HZZZZZZZZZZZZZZZZZZZZZZZ",
		Workflow:  "url_validation_workflow",
		Name:      "brave-falcon",
		Status:    models.RunStatusSucceeded,
		Params:    map[string]string{"target_url": "https://example.com"},
		StartedAt: started,
	}

	t.Run("Success_GetRun", func(t *testing.T) {
		runs := new(MockRunsReader)
		runs.On("GetRun", mock.Anything, run.ID).Return(mo.Some(run), nil)
		runs.On("ListSteps", mock.Anything, run.ID).Return([]*models.StepResult{
			{ID: "step_1", RunID: run.ID, Step: "validate_url", Status: models.StepStatusSucceeded, Attempts: 1},
		}, nil)

		rec := serve(newWorkflowsRouter(runs), http.MethodGet, "/runs/"+run.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		var details struct {
			Run   map[string]any   `json:"run"`
			Steps []map[string]any `json:"steps"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
		assert.Equal(t, "brave-falcon", details.Run["name"])
		require.Len(t, details.Steps, 1)
		assert.Equal(t, "validate_url", details.Steps[0]["step"])
		runs.AssertExpectations(t)
	})

	t.Run("Error_RunNotFound", func(t *testing.T) {
		runs := new(MockRunsReader)
		runs.On("GetRun", mock.Anything, "run_missing").Return(mo.None[*models.Run](), nil)

		rec := serve(newWorkflowsRouter(runs), http.MethodGet, "/runs/run_missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Error_LedgerFailure", func(t *testing.T) {
		runs := new(MockRunsReader)
		runs.On("GetRun", mock.Anything, "run_x").Return(mo.None[*models.Run](), errors.New("db closed"))

		rec := serve(newWorkflowsRouter(runs), http.MethodGet, "/runs/run_x")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("Success_ListRuns", func(t *testing.T) {
		runs := new(MockRunsReader)
		runs.On("ListRuns", mock.Anything, "url_validation_workflow", 5).Return([]*models.Run{run}, nil)

		rec := serve(newWorkflowsRouter(runs), http.MethodGet, "/runs?workflow=url_validation_workflow&limit=5")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), run.ID)
		runs.AssertExpectations(t)
	})

	t.Run("Error_BadLimit", func(t *testing.T) {
		rec := serve(newWorkflowsRouter(new(MockRunsReader)), http.MethodGet, "/runs?limit=zero")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

const testSigningSecret = "test_signing_secret"

func signedInteraction(t *testing.T, payload string, secret string) *http.Request {
	t.Helper()
	body := url.Values{"payload": {payload}}.Encode()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, body)))

	req := httptest.NewRequest(http.MethodPost, "/slack/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func newInteractionsRouter(copilotService CopilotService) *mux.Router {
	handler := NewSlackInteractionsHandler(testSigningSecret, copilotService)
	handler.dispatch = func(fn func()) { fn() }
	router := mux.NewRouter()
	handler.SetupEndpoints(router)
	return router
}

func TestSlackInteractionsHandler(t *testing.T) {
	value, err := messages.EncodeCopilotValue("1b0ed7bc-6385-40f8-8a62-bd9932bdadc2", "Help me investigate incident 549")
	require.NoError(t, err)

	actionPayload := func(actionID string) string {
		payload, err := json.Marshal(map[string]any{
			"type":    "block_actions",
			"user":    map[string]any{"id": "U7"},
			"channel": map[string]any{"id": "C1"},
			"message": map[string]any{"ts": "111.222", "thread_ts": "100.000"},
			"actions": []map[string]any{{"action_id": actionID, "value": value, "type": "button"}},
		})
		require.NoError(t, err)
		return string(payload)
	}

	t.Run("Success_DispatchesCopilotClick", func(t *testing.T) {
		copilotService := new(MockCopilotService)
		copilotService.On("HandleClick", mock.Anything, copilot.Click{
			ActionID:  messages.CopilotActionID,
			Value:     value,
			ChannelID: "C1",
			MessageTS: "111.222",
			ThreadTS:  "100.000",
			UserID:    "U7",
		}).Return(&clients.SlackPostMessageResponse{Channel: "C1", Timestamp: "333.444"}, nil)

		rec := httptest.NewRecorder()
		newInteractionsRouter(copilotService).ServeHTTP(rec, signedInteraction(t, actionPayload(messages.CopilotActionID), testSigningSecret))

		assert.Equal(t, http.StatusOK, rec.Code)
		copilotService.AssertExpectations(t)
	})

	t.Run("Success_IgnoresOtherActions", func(t *testing.T) {
		copilotService := new(MockCopilotService)

		rec := httptest.NewRecorder()
		newInteractionsRouter(copilotService).ServeHTTP(rec, signedInteraction(t, actionPayload("open_runbook"), testSigningSecret))

		assert.Equal(t, http.StatusOK, rec.Code)
		copilotService.AssertNotCalled(t, "HandleClick", mock.Anything, mock.Anything)
	})

	t.Run("Error_BadSignature", func(t *testing.T) {
		copilotService := new(MockCopilotService)

		rec := httptest.NewRecorder()
		newInteractionsRouter(copilotService).ServeHTTP(rec, signedInteraction(t, actionPayload(messages.CopilotActionID), "wrong_secret"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		copilotService.AssertNotCalled(t, "HandleClick", mock.Anything, mock.Anything)
	})

	t.Run("Error_MissingHeaders", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/slack/interactions", strings.NewReader("payload={}"))
		rec := httptest.NewRecorder()
		newInteractionsRouter(new(MockCopilotService)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Error_MalformedPayload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newInteractionsRouter(new(MockCopilotService)).ServeHTTP(rec, signedInteraction(t, "{not json", testSigningSecret))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
