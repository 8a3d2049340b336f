package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"incidentflow/workflow"
)

// stepEnv is the environment a shell or tool step sees: the process environment,
// the workflow env, every workflow variable and finally step specific values.
func stepEnv(base map[string]string, vars map[string]string, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(vars)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}

	env := os.Environ()
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}

func runBash(ctx context.Context, bash, script string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, bash, "-c", script)
	cmd.Env = env
	// children that outlive a cancelled bash must not hold the pipes open
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimRight(stdout.String(), "\n")
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

// execute runs one attempt of step with the variables known so far
func (r *Runner) execute(ctx context.Context, step *workflow.Step, vars, env map[string]string) (string, error) {
	switch e := step.Executor.(type) {
	case workflow.ShellExecutor:
		script := workflow.ExpandFields(e.Command, vars)
		return runBash(ctx, r.bash, script, stepEnv(env, vars, nil))

	case workflow.ToolExecutor:
		args := make(map[string]string, len(e.Args))
		for k, v := range e.Args {
			args[k] = workflow.Expand(v, vars)
		}
		resolved, err := e.Tool.ResolveArgs(args)
		if err != nil {
			return "", err
		}
		return runBash(ctx, r.bash, e.Tool.Content, stepEnv(env, vars, resolved))

	case workflow.AgentExecutor:
		if r.llm == nil {
			return "", fmt.Errorf("agent %s: %w", e.AgentName, ErrNoLLM)
		}
		return r.llm.RunAgent(ctx, e.AgentName, workflow.Expand(e.Message, vars))

	case workflow.LLMCompletionExecutor:
		if r.llm == nil {
			return "", fmt.Errorf("llm completion: %w", ErrNoLLM)
		}
		return r.llm.Complete(ctx, e.Model, workflow.Expand(e.Prompt, vars))

	case workflow.KubiyaExecutor:
		if r.orchestrator == nil {
			return "", fmt.Errorf("%s %s: %w", e.Method, e.URL, ErrNoOrchestrator)
		}
		method := e.Method
		if method == "" {
			method = "GET"
		}
		return r.orchestrator.Request(ctx, method, workflow.Expand(e.URL, vars))

	default:
		return "", fmt.Errorf("unsupported executor %T", step.Executor)
	}
}
