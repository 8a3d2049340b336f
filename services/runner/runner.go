package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/lucasepe/codename"

	"incidentflow/clients"
	"incidentflow/core"
	"incidentflow/core/log"
	"incidentflow/models"
	"incidentflow/utils"
	"incidentflow/workflow"
)

var (
	ErrNoLLM          = errors.New("agent steps need ANTHROPIC_API_KEY")
	ErrNoOrchestrator = errors.New("kubiya steps need KUBIYA_API_KEY")
)

// Ledger records runs and step outcomes
type Ledger interface {
	CreateRun(ctx context.Context, workflow, name string, params map[string]string) (*models.Run, error)
	FinishRun(ctx context.Context, id string, status models.RunStatus, errMsg string) error
	RecordStep(ctx context.Context, result *models.StepResult) error
}

type Options struct {
	LLM          clients.LLMClient
	Orchestrator clients.OrchestratorClient
	// Ledger is optional; runs are not recorded without one
	Ledger     Ledger
	LockDir    string
	MaxWorkers int
}

// Runner executes workflows on the local host. Steps whose dependencies are satisfied
// run in parallel on a worker pool.
type Runner struct {
	llm          clients.LLMClient
	orchestrator clients.OrchestratorClient
	ledger       Ledger
	lockDir      string
	maxWorkers   int
	bash         string
}

func NewRunner(opts Options) *Runner {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Runner{
		llm:          opts.LLM,
		orchestrator: opts.Orchestrator,
		ledger:       opts.Ledger,
		lockDir:      opts.LockDir,
		maxWorkers:   maxWorkers,
		bash:         "bash",
	}
}

// Report is the outcome of a run. Steps are listed in completion order.
type Report struct {
	RunID  string
	Name   string
	Status models.RunStatus
	Steps  []models.StepResult
	Vars   map[string]string
}

// Step returns the result of the named step
func (r *Report) Step(name string) (models.StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return models.StepResult{}, false
}

type outcome struct {
	index  int
	result models.StepResult
}

func processEnv() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func runName() string {
	rng, err := codename.DefaultRNG()
	if err != nil {
		return core.NewID("run")
	}
	return codename.Generate(rng, 0)
}

// Run executes wf with params layered over its defaults. Only one local run of a given
// workflow may be active at a time. A failed step skips everything downstream of it;
// independent branches still run. The returned error is the first *core.StepFailedError.
func (r *Runner) Run(ctx context.Context, wf *workflow.Workflow, params map[string]string) (*Report, error) {
	order, err := wf.Order()
	if err != nil {
		return nil, err
	}

	lock, err := utils.NewRunLock(r.lockDir, wf.Name)
	if err != nil {
		return nil, err
	}
	locked, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, fmt.Errorf("workflow %s: %w", wf.Name, core.ErrRunInProgress)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("⚠️ Failed to release run lock", "path", lock.Path(), "error", err)
		}
	}()

	vars := make(map[string]string, len(wf.Params)+len(params))
	for k, v := range wf.Params {
		vars[k] = v
	}
	for k, v := range params {
		vars[k] = v
	}

	hostEnv := processEnv()
	env := make(map[string]string, len(wf.Env))
	for k, v := range wf.Env {
		env[k] = workflow.Expand(v, hostEnv)
	}

	report := &Report{Name: runName(), Status: models.RunStatusRunning, Vars: vars}
	if r.ledger != nil {
		run, err := r.ledger.CreateRun(ctx, wf.Name, report.Name, vars)
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		report.RunID = run.ID
	}

	log.Info("📋 Starting to run workflow", "workflow", wf.Name, "run", report.Name, "steps", len(order))

	if timeout, ok := wf.Timeout.Get(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	firstErr := r.schedule(ctx, wf, vars, env, report)

	report.Status = models.RunStatusSucceeded
	errMsg := ""
	if firstErr != nil {
		report.Status = models.RunStatusFailed
		errMsg = firstErr.Error()
	}
	if r.ledger != nil && report.RunID != "" {
		if err := r.ledger.FinishRun(context.WithoutCancel(ctx), report.RunID, report.Status, errMsg); err != nil {
			log.Warn("⚠️ Failed to record run result", "run", report.RunID, "error", err)
		}
	}

	if firstErr != nil {
		log.Error("❌ Workflow failed", "workflow", wf.Name, "run", report.Name, "error", firstErr)
		return report, firstErr
	}
	log.Info("📋 Completed successfully - workflow finished", "workflow", wf.Name, "run", report.Name)
	return report, nil
}

func (r *Runner) schedule(ctx context.Context, wf *workflow.Workflow, vars, env map[string]string, report *Report) error {
	index := make(map[string]int, len(wf.Steps))
	for i, s := range wf.Steps {
		index[s.Name] = i
	}
	indegree := make([]int, len(wf.Steps))
	dependents := make([][]int, len(wf.Steps))
	for i, s := range wf.Steps {
		for _, dep := range s.Depends {
			indegree[i]++
			dependents[index[dep]] = append(dependents[index[dep]], i)
		}
	}

	pool := workerpool.New(r.maxWorkers)
	defer pool.StopWait()

	done := make(chan outcome)
	settled := make([]bool, len(wf.Steps))
	remaining := len(wf.Steps)
	running := 0
	var firstErr error

	submit := func(i int) {
		step := wf.Steps[i]
		snapshot := make(map[string]string, len(vars))
		for k, v := range vars {
			snapshot[k] = v
		}
		running++
		pool.Submit(func() {
			done <- outcome{index: i, result: r.runStep(ctx, step, snapshot, env)}
		})
	}

	var skip func(i int, cause string)
	skip = func(i int, cause string) {
		if settled[i] {
			return
		}
		settled[i] = true
		remaining--
		now := time.Now().UTC()
		result := models.StepResult{
			RunID:      report.RunID,
			Step:       wf.Steps[i].Name,
			Status:     models.StepStatusSkipped,
			Error:      fmt.Sprintf("dependency %s did not succeed", cause),
			StartedAt:  now,
			FinishedAt: now,
		}
		r.record(ctx, &result)
		report.Steps = append(report.Steps, result)
		for _, d := range dependents[i] {
			skip(d, cause)
		}
	}

	for i := range wf.Steps {
		if indegree[i] == 0 {
			submit(i)
		}
	}

	for remaining > 0 && running > 0 {
		o := <-done
		running--
		settled[o.index] = true
		remaining--

		step := wf.Steps[o.index]
		result := o.result
		result.RunID = report.RunID
		r.record(ctx, &result)
		report.Steps = append(report.Steps, result)

		if result.Status == models.StepStatusFailed {
			if firstErr == nil {
				firstErr = &core.StepFailedError{
					Step:     step.Name,
					Attempts: result.Attempts,
					Output:   result.Output,
					Err:      errors.New(result.Error),
				}
			}
			for _, d := range dependents[o.index] {
				skip(d, step.Name)
			}
			continue
		}

		if step.Output != "" {
			vars[step.Output] = result.Output
		}
		for _, d := range dependents[o.index] {
			indegree[d]--
			if indegree[d] == 0 && !settled[d] {
				submit(d)
			}
		}
	}

	return firstErr
}

func (r *Runner) record(ctx context.Context, result *models.StepResult) {
	if r.ledger == nil || result.RunID == "" {
		return
	}
	if err := r.ledger.RecordStep(context.WithoutCancel(ctx), result); err != nil {
		log.Warn("⚠️ Failed to record step", "step", result.Step, "error", err)
	}
}

// runStep executes a step with its timeout and retry policy, then applies continue-on
func (r *Runner) runStep(ctx context.Context, step *workflow.Step, vars, env map[string]string) models.StepResult {
	started := time.Now().UTC()
	retry := step.Retry.OrEmpty()

	var (
		out      string
		err      error
		attempts int
	)
	for {
		attempts++
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			break
		}

		stepCtx, cancel := ctx, context.CancelFunc(func() {})
		if timeout, ok := step.Timeout.Get(); ok {
			stepCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		out, err = r.execute(stepCtx, step, vars, env)
		if err != nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out: %w", err)
		}
		cancel()

		if err == nil || attempts > retry.Limit {
			break
		}
		log.Warn("⚠️ Step failed, retrying", "step", step.Name, "attempt", attempts, "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(retry.Interval):
		}
	}

	result := models.StepResult{
		Step:       step.Name,
		Status:     models.StepStatusSucceeded,
		Attempts:   attempts,
		Output:     out,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	if err == nil {
		log.Info("✅ Step succeeded", "step", step.Name, "attempts", attempts)
		return result
	}

	result.Error = err.Error()
	result.Status = models.StepStatusFailed
	if policy, ok := step.ContinueOn.Get(); ok && policy.ShouldContinue(out+"\n"+err.Error()) {
		result.Status = models.StepStatusContinued
		if policy.MarkSuccess {
			result.Status = models.StepStatusSucceeded
		}
		log.Warn("⚠️ Step failed, continuing", "step", step.Name, "error", err)
		return result
	}

	log.Error("❌ Step failed", "step", step.Name, "attempts", attempts, "error", err)
	return result
}
