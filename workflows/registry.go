package workflows

import (
	"fmt"
	"sort"

	"incidentflow/core"
	"incidentflow/workflow"
)

// Constructor builds a workflow with its default parameters
type Constructor func() (*workflow.Workflow, error)

// Registry maps workflow names to their constructors
func Registry() map[string]Constructor {
	return map[string]Constructor{
		IncidentResponseName: func() (*workflow.Workflow, error) {
			return IncidentResponse(IncidentOptions{})
		},
		"url_validation_workflow":    URLValidation,
		"text_processing_workflow":   TextProcessing,
		"system_monitoring_workflow": SystemMonitoring,
	}
}

// Names returns the registered workflow names, sorted
func Names() []string {
	reg := Registry()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the named workflow
func Lookup(name string) (*workflow.Workflow, error) {
	build, ok := Registry()[name]
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", name, core.ErrNotFound)
	}
	return build()
}
