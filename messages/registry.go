package messages

import (
	"encoding/json"
	"fmt"
	"sort"

	"incidentflow/core"
)

var templates = map[string]func() Template{
	"validation-failure":     func() Template { return &ValidationFailureMessage{} },
	"incident-alert":         func() Template { return &PostIncidentAlertMessage{} },
	"investigation-start":    func() Template { return &InvestigationStartMessage{} },
	"investigation-progress": func() Template { return &InvestigationProgressMessage{} },
	"investigation-results":  func() Template { return &InvestigationResultsMessage{} },
	"maintenance":            func() Template { return &SystemMaintenanceMessage{} },
	"alert-resolution":       func() Template { return &AlertResolutionMessage{} },
	"deployment":             func() Template { return &DeploymentStatusMessage{} },
	"capacity-warning":       func() Template { return &CapacityWarningMessage{} },
	"security-incident":      func() Template { return &SecurityIncidentMessage{} },
}

// TemplateNames returns the names accepted by RenderTemplate, sorted
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderTemplate decodes data into the named template's fields and renders it.
// Keys match field names case-insensitively, e.g. {"channel": "#ops", "incidentId": "549"}.
func RenderTemplate(name string, data []byte) (*Message, error) {
	newTemplate, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("message template %s: %w", name, core.ErrNotFound)
	}

	tmpl := newTemplate()
	if err := json.Unmarshal(data, tmpl); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s data: %v", core.ErrInvalidModel, name, err)
	}
	return tmpl.ToMessage()
}
