package runner

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"incidentflow/clients"
	"incidentflow/core"
	"incidentflow/models"
	"incidentflow/tools"
	"incidentflow/utils"
	"incidentflow/workflow"
)

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

type fakeLedger struct {
	mu       sync.Mutex
	runs     map[string]*models.Run
	steps    []models.StepResult
	finished map[string]models.RunStatus
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{runs: map[string]*models.Run{}, finished: map[string]models.RunStatus{}}
}

func (l *fakeLedger) CreateRun(ctx context.Context, workflow, name string, params map[string]string) (*models.Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	run := &models.Run{ID: core.NewID("run"), Workflow: workflow, Name: name, Params: params, Status: models.RunStatusRunning}
	l.runs[run.ID] = run
	return run, nil
}

func (l *fakeLedger) FinishRun(ctx context.Context, id string, status models.RunStatus, errMsg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finished[id] = status
	return nil
}

func (l *fakeLedger) RecordStep(ctx context.Context, result *models.StepResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, *result)
	return nil
}

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	if opts.LockDir == "" {
		opts.LockDir = t.TempDir()
	}
	return NewRunner(opts)
}

func build(t *testing.T, b *workflow.Builder) *workflow.Workflow {
	t.Helper()
	wf, err := b.Build()
	require.NoError(t, err)
	return wf
}

func TestRunShellDAG(t *testing.T) {
	requireBash(t)
	t.Setenv("INCIDENTFLOW_TEST_KEY", "k1")

	wf := build(t, workflow.New("dag").
		Params(map[string]string{"incident_id": "549", "who": "default"}).
		Env(map[string]string{"API_KEY": "${INCIDENTFLOW_TEST_KEY}"}).
		Step("a", func(s *workflow.StepBuilder) { s.Shell(`echo "incident ${incident_id}"`).Output("A") }).
		Step("b", func(s *workflow.StepBuilder) { s.Shell(`echo "$A from b"`).Depends("a").Output("B") }).
		Step("c", func(s *workflow.StepBuilder) { s.Shell(`echo "key=$API_KEY who=${who}"`).Depends("a").Output("C") }).
		Step("d", func(s *workflow.StepBuilder) { s.Shell(`echo "$B + $C"`).Depends("b", "c").Output("D") }))

	ledger := newFakeLedger()
	report, err := newTestRunner(t, Options{Ledger: ledger}).Run(context.Background(), wf, map[string]string{"who": "oncall"})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusSucceeded, report.Status)
	assert.NotEmpty(t, report.Name)
	assert.Equal(t, "incident 549", report.Vars["A"])
	assert.Equal(t, "incident 549 from b", report.Vars["B"])
	assert.Equal(t, "key=k1 who=oncall", report.Vars["C"])
	assert.Equal(t, "incident 549 from b + key=k1 who=oncall", report.Vars["D"])
	require.Len(t, report.Steps, 4)
	assert.Equal(t, "a", report.Steps[0].Step)
	assert.Equal(t, "d", report.Steps[3].Step)

	assert.Len(t, ledger.steps, 4)
	assert.Equal(t, models.RunStatusSucceeded, ledger.finished[report.RunID])
	assert.Equal(t, "oncall", ledger.runs[report.RunID].Params["who"])
}

func TestRunRetry(t *testing.T) {
	requireBash(t)
	counter := filepath.Join(t.TempDir(), "attempts")

	t.Run("Success_AfterRetries", func(t *testing.T) {
		wf := build(t, workflow.New("retry").
			Params(map[string]string{"counter": counter}).
			Step("flaky", func(s *workflow.StepBuilder) {
				s.Shell(`n=$(cat "$counter" 2>/dev/null || echo 0); n=$((n+1)); echo $n > "$counter"; echo "attempt $n"; [ "$n" -ge 3 ]`).
					Retry(3, time.Millisecond).
					Output("FLAKY")
			}))

		report, err := newTestRunner(t, Options{}).Run(context.Background(), wf, nil)
		require.NoError(t, err)
		step, ok := report.Step("flaky")
		require.True(t, ok)
		assert.Equal(t, 3, step.Attempts)
		assert.Equal(t, "attempt 3", report.Vars["FLAKY"])
	})

	t.Run("Error_RetriesExhausted", func(t *testing.T) {
		wf := build(t, workflow.New("retry-fail").
			Step("broken", func(s *workflow.StepBuilder) { s.Shell(`echo nope >&2; exit 3`).Retry(2, time.Millisecond) }))

		_, err := newTestRunner(t, Options{}).Run(context.Background(), wf, nil)
		require.Error(t, err)
		stepErr, ok := core.IsStepFailedError(err)
		require.True(t, ok)
		assert.Equal(t, "broken", stepErr.Step)
		assert.Equal(t, 3, stepErr.Attempts)
		assert.Contains(t, err.Error(), "nope")
	})
}

func TestRunFailurePolicies(t *testing.T) {
	requireBash(t)

	t.Run("Success_ContinueOnOutput", func(t *testing.T) {
		wf := build(t, workflow.New("continue").
			Step("investigate", func(s *workflow.StepBuilder) {
				s.Shell(`echo "Stream error: INTERNAL_ERROR"; exit 1`).
					ContinueOn(workflow.ContinueOnPolicy{Output: []string{"re:Stream error.*INTERNAL_ERROR"}}).
					Output("RESULTS")
			}).
			Step("report", func(s *workflow.StepBuilder) { s.Shell(`echo "got: $RESULTS"`).Depends("investigate").Output("REPORT") }))

		report, err := newTestRunner(t, Options{}).Run(context.Background(), wf, nil)
		require.NoError(t, err)
		step, _ := report.Step("investigate")
		assert.Equal(t, models.StepStatusContinued, step.Status)
		assert.Equal(t, "got: Stream error: INTERNAL_ERROR", report.Vars["REPORT"])
	})

	t.Run("Success_MarkSuccess", func(t *testing.T) {
		wf := build(t, workflow.New("mark").
			Step("x", func(s *workflow.StepBuilder) {
				s.Shell(`exit 1`).ContinueOn(workflow.ContinueOnPolicy{Failure: true, MarkSuccess: true})
			}))

		report, err := newTestRunner(t, Options{}).Run(context.Background(), wf, nil)
		require.NoError(t, err)
		step, _ := report.Step("x")
		assert.Equal(t, models.StepStatusSucceeded, step.Status)
		assert.NotEmpty(t, step.Error)
	})

	t.Run("Error_FailureSkipsDownstream", func(t *testing.T) {
		wf := build(t, workflow.New("skip").
			Step("bad", func(s *workflow.StepBuilder) { s.Shell(`exit 1`) }).
			Step("after-bad", func(s *workflow.StepBuilder) { s.Shell(`echo never`).Depends("bad") }).
			Step("after-after", func(s *workflow.StepBuilder) { s.Shell(`echo never`).Depends("after-bad") }).
			Step("independent", func(s *workflow.StepBuilder) { s.Shell(`echo fine`).Output("FINE") }))

		ledger := newFakeLedger()
		report, err := newTestRunner(t, Options{Ledger: ledger}).Run(context.Background(), wf, nil)
		require.Error(t, err)
		assert.Equal(t, models.RunStatusFailed, report.Status)
		assert.Equal(t, "fine", report.Vars["FINE"])

		for _, name := range []string{"after-bad", "after-after"} {
			step, ok := report.Step(name)
			require.True(t, ok, name)
			assert.Equal(t, models.StepStatusSkipped, step.Status)
			assert.Contains(t, step.Error, "dependency bad")
		}
		assert.Equal(t, models.RunStatusFailed, ledger.finished[report.RunID])
		assert.Len(t, ledger.steps, 4)
	})

	t.Run("Error_Timeout", func(t *testing.T) {
		wf := build(t, workflow.New("timeout").
			Step("slow", func(s *workflow.StepBuilder) { s.Shell(`sleep 5`).Timeout(100 * time.Millisecond) }))

		start := time.Now()
		_, err := newTestRunner(t, Options{}).Run(context.Background(), wf, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
		assert.Less(t, time.Since(start), 4*time.Second)
	})
}

func TestRunRemoteExecutors(t *testing.T) {
	requireBash(t)
	ctx := context.Background()

	t.Run("Success_AgentAndKubiya", func(t *testing.T) {
		llm := new(clients.MockLLMClient)
		llm.On("RunAgent", mock.Anything, "na-agent", "investigate 549").Return("NA looks fine", nil)
		llm.On("Complete", mock.Anything, "claude-x", "summarize NA looks fine").Return("all good", nil)

		orchestrator := new(clients.MockOrchestratorClient)
		orchestrator.On("Request", mock.Anything, "GET", "api/v1/integration/slack/token/1").Return(`{"token":"xoxb-9"}`, nil)

		wf := build(t, workflow.New("remote").
			Params(map[string]string{"incident_id": "549"}).
			Step("token", func(s *workflow.StepBuilder) {
				s.Kubiya("api/v1/integration/slack/token/1", "GET", false).Output("slack_token")
			}).
			Step("use-token", func(s *workflow.StepBuilder) {
				s.Shell(`echo "Bearer ${slack_token.token}"`).Depends("token").Output("AUTH")
			}).
			Step("investigate", func(s *workflow.StepBuilder) {
				s.Agent("na-agent", "investigate {{.incident_id}}").Output("na_results")
			}).
			Step("summarize", func(s *workflow.StepBuilder) {
				s.LLMCompletion("claude-x", "summarize {{.na_results}}").Depends("investigate").Output("summary")
			}))

		report, err := newTestRunner(t, Options{LLM: llm, Orchestrator: orchestrator}).Run(ctx, wf, nil)
		require.NoError(t, err)
		assert.Equal(t, "Bearer xoxb-9", report.Vars["AUTH"])
		assert.Equal(t, "all good", report.Vars["summary"])
		llm.AssertExpectations(t)
		orchestrator.AssertExpectations(t)
	})

	t.Run("Error_AgentWithoutLLM", func(t *testing.T) {
		wf := build(t, workflow.New("no-llm").
			Step("investigate", func(s *workflow.StepBuilder) { s.Agent("na-agent", "hi") }))

		_, err := newTestRunner(t, Options{}).Run(ctx, wf, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrNoLLM.Error())
	})

	t.Run("Success_ToolStep", func(t *testing.T) {
		greeter := tools.Tool{
			Name:    "greeter",
			Type:    "docker",
			Image:   "alpine:latest",
			Content: `echo "hello $who ($tone)"`,
			Args: []tools.Arg{
				{Name: "who", Required: true},
				{Name: "tone", Default: "calm"},
			},
		}
		wf := build(t, workflow.New("tool").
			Params(map[string]string{"name": "oncall"}).
			Step("greet", func(s *workflow.StepBuilder) {
				s.ToolDef(greeter, map[string]string{"who": "${name}"}).Output("GREETING")
			}))

		report, err := newTestRunner(t, Options{}).Run(ctx, wf, nil)
		require.NoError(t, err)
		assert.Equal(t, "hello oncall (calm)", report.Vars["GREETING"])
	})
}

func TestRunLock(t *testing.T) {
	dir := t.TempDir()
	wf := build(t, workflow.New("locked").
		Step("a", func(s *workflow.StepBuilder) { s.Shell("true") }))

	lock, err := utils.NewRunLock(dir, "locked")
	require.NoError(t, err)
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer lock.Unlock()

	_, err = NewRunner(Options{LockDir: dir}).Run(context.Background(), wf, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRunInProgress))
}
