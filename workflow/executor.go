package workflow

import (
	"incidentflow/tools"
)

type ExecutorType string

const (
	ExecutorShell         ExecutorType = "shell"
	ExecutorAgent         ExecutorType = "agent"
	ExecutorTool          ExecutorType = "tool"
	ExecutorKubiya        ExecutorType = "kubiya"
	ExecutorLLMCompletion ExecutorType = "llm_completion"
)

// Executor is what runs a step's body
type Executor interface {
	Type() ExecutorType
	Config() map[string]any
}

// ShellExecutor runs Command with bash. WithConfig false exports the step as a bare command
// without an executor block.
type ShellExecutor struct {
	Command    string
	WithConfig bool
}

func (e ShellExecutor) Type() ExecutorType { return ExecutorShell }

func (e ShellExecutor) Config() map[string]any { return map[string]any{} }

// AgentExecutor sends Message to the named AI agent and captures its reply
type AgentExecutor struct {
	AgentName string
	Message   string
}

func (e AgentExecutor) Type() ExecutorType { return ExecutorAgent }

func (e AgentExecutor) Config() map[string]any {
	return map[string]any{"agent_name": e.AgentName, "message": e.Message}
}

// ToolExecutor runs a container tool. Args values may reference workflow variables.
type ToolExecutor struct {
	Tool tools.Tool
	Args map[string]string
}

func (e ToolExecutor) Type() ExecutorType { return ExecutorTool }

func (e ToolExecutor) Config() map[string]any {
	args := make(map[string]any, len(e.Args))
	for k, v := range e.Args {
		args[k] = v
	}
	return map[string]any{"tool_def": e.Tool, "args": args}
}

// KubiyaExecutor calls a platform API path, e.g. to fetch an integration token
type KubiyaExecutor struct {
	URL    string
	Method string
	Silent bool
}

func (e KubiyaExecutor) Type() ExecutorType { return ExecutorKubiya }

func (e KubiyaExecutor) Config() map[string]any {
	return map[string]any{"url": e.URL, "method": e.Method, "silent": e.Silent}
}

// LLMCompletionExecutor asks a model for a single completion
type LLMCompletionExecutor struct {
	Model  string
	Prompt string
}

func (e LLMCompletionExecutor) Type() ExecutorType { return ExecutorLLMCompletion }

func (e LLMCompletionExecutor) Config() map[string]any {
	return map[string]any{"model": e.Model, "prompt": e.Prompt}
}
