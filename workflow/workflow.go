package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/mo"

	"incidentflow/core"
	"incidentflow/tools"
)

// Workflow is a named DAG of steps plus the parameters and environment they run with
type Workflow struct {
	Name        string
	Description string
	Params      map[string]string
	Env         map[string]string
	Timeout     mo.Option[time.Duration]
	Steps       []*Step
}

// Step returns the named step
func (w *Workflow) Step(name string) (*Step, bool) {
	for _, s := range w.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

type RetryPolicy struct {
	Limit    int
	Interval time.Duration
}

// ContinueOnPolicy decides whether dependents still run after a step fails.
// Output patterns are plain substrings, or regular expressions when prefixed with "re:".
type ContinueOnPolicy struct {
	Failure     bool
	MarkSuccess bool
	Output      []string
}

const regexPrefix = "re:"

// Matches reports whether any output pattern matches output
func (p ContinueOnPolicy) Matches(output string) bool {
	for _, pattern := range p.Output {
		if expr, ok := strings.CutPrefix(pattern, regexPrefix); ok {
			re, err := regexp.Compile(expr)
			if err == nil && re.MatchString(output) {
				return true
			}
			continue
		}
		if strings.Contains(output, pattern) {
			return true
		}
	}
	return false
}

// ShouldContinue reports whether a failed step with the given output lets the run go on
func (p ContinueOnPolicy) ShouldContinue(output string) bool {
	return p.Failure || p.Matches(output)
}

func (p ContinueOnPolicy) validate() error {
	for _, pattern := range p.Output {
		if expr, ok := strings.CutPrefix(pattern, regexPrefix); ok {
			if _, err := regexp.Compile(expr); err != nil {
				return fmt.Errorf("continue_on pattern %q: %w", pattern, err)
			}
		}
	}
	return nil
}

type Step struct {
	Name        string
	Description string
	Executor    Executor
	Depends     []string
	// Output names the variable the step's stdout is stored under
	Output     string
	Timeout    mo.Option[time.Duration]
	Retry      mo.Option[RetryPolicy]
	ContinueOn mo.Option[ContinueOnPolicy]
}

// Commander is satisfied by the shell command models
type Commander interface {
	Command() (string, error)
}

// Prompter is satisfied by the prompt models
type Prompter interface {
	Prompt() (string, error)
}

// Builder assembles a Workflow. Errors from rendering step bodies are collected and
// returned by Build together with validation failures.
type Builder struct {
	wf   *Workflow
	errs []error
}

func New(name string) *Builder {
	return &Builder{wf: &Workflow{
		Name:   name,
		Params: map[string]string{},
		Env:    map[string]string{},
	}}
}

func (b *Builder) Description(description string) *Builder {
	b.wf.Description = description
	return b
}

// Params merges params into the workflow's parameter defaults
func (b *Builder) Params(params map[string]string) *Builder {
	for k, v := range params {
		b.wf.Params[k] = v
	}
	return b
}

func (b *Builder) Env(env map[string]string) *Builder {
	for k, v := range env {
		b.wf.Env[k] = v
	}
	return b
}

func (b *Builder) Timeout(d time.Duration) *Builder {
	b.wf.Timeout = mo.Some(d)
	return b
}

// Step declares a step and lets fn configure it
func (b *Builder) Step(name string, fn func(s *StepBuilder)) *Builder {
	sb := &StepBuilder{step: &Step{Name: name}}
	fn(sb)
	b.wf.Steps = append(b.wf.Steps, sb.step)
	for _, err := range sb.errs {
		b.errs = append(b.errs, fmt.Errorf("step %s: %w", name, err))
	}
	return b
}

// Build validates and returns the workflow
func (b *Builder) Build() (*Workflow, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrWorkflowInvalid, errors.Join(b.errs...))
	}
	if err := b.wf.Validate(); err != nil {
		return nil, err
	}
	return b.wf, nil
}

// StepBuilder configures a single step. Setting more than one executor is an error.
type StepBuilder struct {
	step *Step
	errs []error
}

func (s *StepBuilder) Description(description string) *StepBuilder {
	s.step.Description = description
	return s
}

func (s *StepBuilder) setExecutor(e Executor) *StepBuilder {
	if s.step.Executor != nil {
		s.errs = append(s.errs, fmt.Errorf("executor %s already set, cannot also use %s", s.step.Executor.Type(), e.Type()))
		return s
	}
	s.step.Executor = e
	return s
}

func (s *StepBuilder) Shell(command string) *StepBuilder {
	return s.setExecutor(ShellExecutor{Command: command, WithConfig: true})
}

func (s *StepBuilder) ShellWith(command string, withConfig bool) *StepBuilder {
	return s.setExecutor(ShellExecutor{Command: command, WithConfig: withConfig})
}

// ShellCommand renders c and uses it as the shell body
func (s *StepBuilder) ShellCommand(c Commander) *StepBuilder {
	return s.ShellCommandWith(c, true)
}

func (s *StepBuilder) ShellCommandWith(c Commander, withConfig bool) *StepBuilder {
	command, err := c.Command()
	if err != nil {
		s.errs = append(s.errs, err)
		return s
	}
	return s.ShellWith(command, withConfig)
}

func (s *StepBuilder) Agent(name, message string) *StepBuilder {
	return s.setExecutor(AgentExecutor{AgentName: name, Message: message})
}

// AgentPrompt renders p and sends it to the named agent
func (s *StepBuilder) AgentPrompt(name string, p Prompter) *StepBuilder {
	message, err := p.Prompt()
	if err != nil {
		s.errs = append(s.errs, err)
		return s
	}
	return s.Agent(name, message)
}

// Tool runs a catalogued tool; pair with Args
func (s *StepBuilder) Tool(tool tools.Tool) *StepBuilder {
	return s.setExecutor(ToolExecutor{Tool: tool, Args: map[string]string{}})
}

// ToolDef runs an inline tool definition with its arguments
func (s *StepBuilder) ToolDef(def tools.Tool, args map[string]string) *StepBuilder {
	if err := def.Validate(); err != nil {
		s.errs = append(s.errs, err)
		return s
	}
	s.setExecutor(ToolExecutor{Tool: def, Args: map[string]string{}})
	return s.Args(args)
}

// Args sets tool arguments. It must follow Tool or ToolDef.
func (s *StepBuilder) Args(args map[string]string) *StepBuilder {
	te, ok := s.step.Executor.(ToolExecutor)
	if !ok {
		s.errs = append(s.errs, errors.New("args require a tool executor"))
		return s
	}
	for k, v := range args {
		te.Args[k] = v
	}
	return s
}

func (s *StepBuilder) Kubiya(url, method string, silent bool) *StepBuilder {
	return s.setExecutor(KubiyaExecutor{URL: url, Method: method, Silent: silent})
}

func (s *StepBuilder) LLMCompletion(model, prompt string) *StepBuilder {
	return s.setExecutor(LLMCompletionExecutor{Model: model, Prompt: prompt})
}

func (s *StepBuilder) Depends(names ...string) *StepBuilder {
	s.step.Depends = append(s.step.Depends, names...)
	return s
}

func (s *StepBuilder) Output(name string) *StepBuilder {
	s.step.Output = name
	return s
}

func (s *StepBuilder) Timeout(d time.Duration) *StepBuilder {
	s.step.Timeout = mo.Some(d)
	return s
}

func (s *StepBuilder) Retry(limit int, interval time.Duration) *StepBuilder {
	s.step.Retry = mo.Some(RetryPolicy{Limit: limit, Interval: interval})
	return s
}

func (s *StepBuilder) ContinueOn(policy ContinueOnPolicy) *StepBuilder {
	s.step.ContinueOn = mo.Some(policy)
	return s
}
