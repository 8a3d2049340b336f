package workflow

import (
	"errors"
	"fmt"

	"incidentflow/core"
)

// Validate checks that step names are unique, every step has exactly one executor,
// dependencies name declared steps and the dependency graph has no cycles.
func (w *Workflow) Validate() error {
	var errs []error
	if w.Name == "" {
		errs = append(errs, errors.New("workflow name is required"))
	}
	if len(w.Steps) == 0 {
		errs = append(errs, errors.New("workflow has no steps"))
	}

	seen := make(map[string]bool, len(w.Steps))
	for _, s := range w.Steps {
		if s.Name == "" {
			errs = append(errs, errors.New("step name is required"))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("duplicate step name %s", s.Name))
		}
		seen[s.Name] = true
	}

	for _, s := range w.Steps {
		if s.Executor == nil {
			errs = append(errs, fmt.Errorf("step %s has no executor", s.Name))
		}
		for _, dep := range s.Depends {
			switch {
			case dep == s.Name:
				errs = append(errs, fmt.Errorf("step %s depends on itself", s.Name))
			case !seen[dep]:
				errs = append(errs, fmt.Errorf("step %s depends on unknown step %s", s.Name, dep))
			}
		}
		if retry, ok := s.Retry.Get(); ok && (retry.Limit < 0 || retry.Interval < 0) {
			errs = append(errs, fmt.Errorf("step %s has a negative retry policy", s.Name))
		}
		if policy, ok := s.ContinueOn.Get(); ok {
			if err := policy.validate(); err != nil {
				errs = append(errs, fmt.Errorf("step %s: %w", s.Name, err))
			}
		}
	}

	if len(errs) == 0 {
		if _, err := w.Order(); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("%w %s: %w", core.ErrWorkflowInvalid, w.Name, errors.Join(errs...))
}

// Order returns the steps in dependency order. Among steps that are ready at the same
// time, declaration order wins, so the result is deterministic.
func (w *Workflow) Order() ([]*Step, error) {
	index := make(map[string]int, len(w.Steps))
	for i, s := range w.Steps {
		index[s.Name] = i
	}

	indegree := make([]int, len(w.Steps))
	dependents := make([][]int, len(w.Steps))
	for i, s := range w.Steps {
		for _, dep := range s.Depends {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("%w %s: step %s depends on unknown step %s", core.ErrWorkflowInvalid, w.Name, s.Name, dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make([]bool, len(w.Steps))
	order := make([]*Step, 0, len(w.Steps))
	for len(order) < len(w.Steps) {
		next := -1
		for i := range w.Steps {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("%w %s: dependency cycle among %v", core.ErrWorkflowInvalid, w.Name, remaining(w.Steps, done))
		}
		done[next] = true
		order = append(order, w.Steps[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return order, nil
}

func remaining(steps []*Step, done []bool) []string {
	var names []string
	for i, s := range steps {
		if !done[i] {
			names = append(names, s.Name)
		}
	}
	return names
}
