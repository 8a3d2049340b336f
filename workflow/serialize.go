package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// The exported document follows the orchestrator's workflow schema

type wireExecutor struct {
	Type   ExecutorType   `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
}

type wireRetry struct {
	Limit       int `json:"limit" yaml:"limit"`
	IntervalSec int `json:"intervalSec" yaml:"intervalSec"`
}

type wireContinueOn struct {
	Failure     bool     `json:"failure" yaml:"failure"`
	MarkSuccess bool     `json:"markSuccess" yaml:"markSuccess"`
	Output      []string `json:"output,omitempty" yaml:"output,omitempty"`
}

type wireStep struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Command     string          `json:"command,omitempty" yaml:"command,omitempty"`
	Executor    *wireExecutor   `json:"executor,omitempty" yaml:"executor,omitempty"`
	Depends     []string        `json:"depends,omitempty" yaml:"depends,omitempty"`
	Output      string          `json:"output,omitempty" yaml:"output,omitempty"`
	TimeoutSec  int             `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RetryPolicy *wireRetry      `json:"retryPolicy,omitempty" yaml:"retryPolicy,omitempty"`
	ContinueOn  *wireContinueOn `json:"continueOn,omitempty" yaml:"continueOn,omitempty"`
}

type wireWorkflow struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Params      map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	TimeoutSec  int               `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Steps       []wireStep        `json:"steps" yaml:"steps"`
}

func (w *Workflow) wire() wireWorkflow {
	out := wireWorkflow{
		Name:        w.Name,
		Description: w.Description,
		Params:      w.Params,
		Env:         w.Env,
		Steps:       make([]wireStep, 0, len(w.Steps)),
	}
	if timeout, ok := w.Timeout.Get(); ok {
		out.TimeoutSec = int(timeout.Seconds())
	}

	for _, s := range w.Steps {
		ws := wireStep{
			Name:        s.Name,
			Description: s.Description,
			Depends:     s.Depends,
			Output:      s.Output,
		}

		switch e := s.Executor.(type) {
		case ShellExecutor:
			ws.Command = e.Command
			if e.WithConfig {
				ws.Executor = &wireExecutor{Type: e.Type(), Config: e.Config()}
			}
		case nil:
		default:
			ws.Executor = &wireExecutor{Type: e.Type(), Config: e.Config()}
		}

		if timeout, ok := s.Timeout.Get(); ok {
			ws.TimeoutSec = int(timeout.Seconds())
		}
		if retry, ok := s.Retry.Get(); ok {
			ws.RetryPolicy = &wireRetry{Limit: retry.Limit, IntervalSec: int(retry.Interval.Seconds())}
		}
		if policy, ok := s.ContinueOn.Get(); ok {
			ws.ContinueOn = &wireContinueOn{Failure: policy.Failure, MarkSuccess: policy.MarkSuccess, Output: policy.Output}
		}
		out.Steps = append(out.Steps, ws)
	}
	return out
}

// ToJSON renders the workflow document, indented. Shell operators such as && and >
// are left unescaped.
func (w *Workflow) ToJSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w.wire()); err != nil {
		return "", fmt.Errorf("failed to marshal workflow %s: %w", w.Name, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (w *Workflow) ToYAML() (string, error) {
	out, err := yaml.Marshal(w.wire())
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow %s: %w", w.Name, err)
	}
	return string(out), nil
}

// ToMap returns the workflow document as generic JSON values, ready to embed in a request body
func (w *Workflow) ToMap() (map[string]any, error) {
	raw, err := json.Marshal(w.wire())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow %s: %w", w.Name, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", w.Name, err)
	}
	return out, nil
}
