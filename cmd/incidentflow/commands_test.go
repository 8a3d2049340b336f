package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"incidentflow/models"
	"incidentflow/services/runner"
)

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &runner.Report{
		RunID:  "run_01J0000000000000000000000",
		Name:   "brave-falcon",
		Status: models.RunStatusFailed,
		Steps: []models.StepResult{
			{Step: "validate_url", Status: models.StepStatusSucceeded, Attempts: 1},
			{Step: "check_connectivity", Status: models.StepStatusFailed, Attempts: 3, Error: "exit status 1\ncurl: (6) Could not resolve host"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Run brave-falcon (run_01J0000000000000000000000): failed")
	assert.Contains(t, out, "attempts=3  exit status 1\n")
	assert.NotContains(t, out, "Could not resolve host")
}
