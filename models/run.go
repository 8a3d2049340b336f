package models

import (
	"time"

	"github.com/samber/mo"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

type StepStatus string

const (
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
	// StepStatusContinued marks a failed step whose continue-on policy let the run go on
	StepStatusContinued StepStatus = "continued"
	StepStatusSkipped   StepStatus = "skipped"
)

// Run is one local execution of a workflow
type Run struct {
	ID         string               `json:"id"`
	Workflow   string               `json:"workflow"`
	Name       string               `json:"name"`
	Status     RunStatus            `json:"status"`
	Params     map[string]string    `json:"params"`
	Error      string               `json:"error,omitempty"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt mo.Option[time.Time] `json:"finished_at"`
}

// StepResult is the outcome of one step within a run
type StepResult struct {
	ID         string     `json:"id"`
	RunID      string     `json:"run_id"`
	Step       string     `json:"step"`
	Status     StepStatus `json:"status"`
	Attempts   int        `json:"attempts"`
	Output     string     `json:"output"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}
