package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	"incidentflow/core"
	"incidentflow/models"
)

var runsColumns = []string{
	"id",
	"workflow",
	"name",
	"status",
	"params",
	"error",
	"started_at",
	"finished_at",
}

var runStepsColumns = []string{
	"id",
	"run_id",
	"step",
	"status",
	"attempts",
	"output",
	"error",
	"started_at",
	"finished_at",
}

type DBRun struct {
	ID         string       `db:"id"`
	Workflow   string       `db:"workflow"`
	Name       string       `db:"name"`
	Status     string       `db:"status"`
	Params     string       `db:"params"`
	Error      string       `db:"error"`
	StartedAt  time.Time    `db:"started_at"`
	FinishedAt sql.NullTime `db:"finished_at"`
}

type DBRunStep struct {
	ID         string    `db:"id"`
	RunID      string    `db:"run_id"`
	Step       string    `db:"step"`
	Status     string    `db:"status"`
	Attempts   int       `db:"attempts"`
	Output     string    `db:"output"`
	Error      string    `db:"error"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}

// RunsRepository is the run ledger. Queries are written with ? placeholders and
// rebound for the connected driver.
type RunsRepository struct {
	db *sqlx.DB
}

func NewRunsRepository(db *sqlx.DB) *RunsRepository {
	return &RunsRepository{db: db}
}

func (r *RunsRepository) CreateRun(ctx context.Context, workflow, name string, params map[string]string) (*models.Run, error) {
	if params == nil {
		params = map[string]string{}
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run params: %w", err)
	}

	run := &models.Run{
		ID:        core.NewID("run"),
		Workflow:  workflow,
		Name:      name,
		Status:    models.RunStatusRunning,
		Params:    params,
		StartedAt: time.Now().UTC(),
	}

	query := r.db.Rebind(`
		INSERT INTO runs (id, workflow, name, status, params, error, started_at)
		VALUES (?, ?, ?, ?, ?, '', ?)`)
	if _, err := r.db.ExecContext(ctx, query, run.ID, run.Workflow, run.Name, string(run.Status), string(rawParams), run.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

func (r *RunsRepository) FinishRun(ctx context.Context, id string, status models.RunStatus, errMsg string) error {
	query := r.db.Rebind(`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, string(status), errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("run %s: %w", id, core.ErrNotFound)
	}

	return nil
}

// RecordStep stores a step outcome, assigning an ID when the result has none
func (r *RunsRepository) RecordStep(ctx context.Context, result *models.StepResult) error {
	if result.ID == "" {
		result.ID = core.NewID("step")
	}

	query := r.db.Rebind(fmt.Sprintf(`
		INSERT INTO run_steps (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, strings.Join(runStepsColumns, ", ")))
	_, err := r.db.ExecContext(ctx, query,
		result.ID,
		result.RunID,
		result.Step,
		string(result.Status),
		result.Attempts,
		result.Output,
		result.Error,
		result.StartedAt.UTC(),
		result.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", result.Step, err)
	}

	return nil
}

func (r *RunsRepository) GetRun(ctx context.Context, id string) (mo.Option[*models.Run], error) {
	query := r.db.Rebind(fmt.Sprintf(`SELECT %s FROM runs WHERE id = ?`, strings.Join(runsColumns, ", ")))

	var dbRun DBRun
	if err := r.db.GetContext(ctx, &dbRun, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mo.None[*models.Run](), nil
		}
		return mo.None[*models.Run](), fmt.Errorf("failed to get run: %w", err)
	}

	run, err := dbRunToModel(&dbRun)
	if err != nil {
		return mo.None[*models.Run](), err
	}
	return mo.Some(run), nil
}

// ListSteps returns the recorded steps of a run in the order they finished
func (r *RunsRepository) ListSteps(ctx context.Context, runID string) ([]*models.StepResult, error) {
	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s FROM run_steps
		WHERE run_id = ?
		ORDER BY finished_at ASC, id ASC`, strings.Join(runStepsColumns, ", ")))

	var dbSteps []DBRunStep
	if err := r.db.SelectContext(ctx, &dbSteps, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}

	steps := make([]*models.StepResult, 0, len(dbSteps))
	for _, s := range dbSteps {
		steps = append(steps, &models.StepResult{
			ID:         s.ID,
			RunID:      s.RunID,
			Step:       s.Step,
			Status:     models.StepStatus(s.Status),
			Attempts:   s.Attempts,
			Output:     s.Output,
			Error:      s.Error,
			StartedAt:  s.StartedAt,
			FinishedAt: s.FinishedAt,
		})
	}
	return steps, nil
}

// ListRuns returns the most recent runs, newest first. An empty workflow lists every workflow.
func (r *RunsRepository) ListRuns(ctx context.Context, workflow string, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM runs`, strings.Join(runsColumns, ", "))
	args := []any{}
	if workflow != "" {
		query += ` WHERE workflow = ?`
		args = append(args, workflow)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	var dbRuns []DBRun
	if err := r.db.SelectContext(ctx, &dbRuns, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*models.Run, 0, len(dbRuns))
	for i := range dbRuns {
		run, err := dbRunToModel(&dbRuns[i])
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func dbRunToModel(dbRun *DBRun) (*models.Run, error) {
	params := map[string]string{}
	if dbRun.Params != "" {
		if err := json.Unmarshal([]byte(dbRun.Params), &params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal params of run %s: %w", dbRun.ID, err)
		}
	}

	run := &models.Run{
		ID:         dbRun.ID,
		Workflow:   dbRun.Workflow,
		Name:       dbRun.Name,
		Status:     models.RunStatus(dbRun.Status),
		Params:     params,
		Error:      dbRun.Error,
		StartedAt:  dbRun.StartedAt,
		FinishedAt: mo.None[time.Time](),
	}
	if dbRun.FinishedAt.Valid {
		run.FinishedAt = mo.Some(dbRun.FinishedAt.Time)
	}
	return run, nil
}
