package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"incidentflow/core"
)

// ClusterInvestigation asks the incident agent to investigate one production cluster
type ClusterInvestigation struct {
	Region        Region `validate:"required"`
	IncidentID    string `validate:"required"`
	IncidentTitle string `validate:"required"`
}

func (p ClusterInvestigation) Prompt() (string, error) {
	if err := core.ValidateModel(p); err != nil {
		return "", err
	}
	if err := p.Region.valid(); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidModel, err)
	}

	return lines(
		fmt.Sprintf("I need help investigating an incident in the %s Production cluster. The incident ID is %s and title is '%s'.", p.Region, p.IncidentID, p.IncidentTitle),
		"Could you analyze the cluster health including service status, pod health, network connectivity, and recent events? I'd also like to understand any cross-region dependencies.",
		"Please use kubectl, Datadog metrics, and Observe datasets to gather information.",
		"",
		"IMPORTANT: Please provide ONLY the investigation findings in your response. Do NOT include:",
		"- Connection status messages",
		"- Agent initialization messages",
		"- Tool execution logs",
		"- Progress indicators",
		"",
		"Just provide a clean, structured report with your findings and recommendations.",
	), nil
}

// CleanInvestigation strips CLI noise from a raw cluster investigation
type CleanInvestigation struct {
	Region  Region `validate:"required"`
	Results string `validate:"required"`
}

func (p CleanInvestigation) Prompt() (string, error) {
	if err := core.ValidateModel(p); err != nil {
		return "", err
	}
	if err := p.Region.valid(); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidModel, err)
	}

	return lines(
		fmt.Sprintf("Based on the %s cluster investigation results below, please provide a clean summary of the key findings:", p.Region),
		"",
		p.Results,
		"",
		"Provide a structured summary with:",
		"- Key findings (3-5 bullet points)",
		"- Any issues or anomalies detected",
		"- Current cluster health status",
		"- Recommendations if any",
		"",
		"Focus only on the technical findings, ignore any CLI output or connection messages.",
	), nil
}

// IncidentReport turns both cleaned investigations into the executive incident report
type IncidentReport struct {
	IncidentID       string `validate:"required"`
	IncidentTitle    string `validate:"required"`
	IncidentSeverity string `validate:"required"`
	AffectedServices string
	CleanedNA        string `validate:"required"`
	CleanedEU        string `validate:"required"`
}

func (p IncidentReport) Prompt() (string, error) {
	if err := core.ValidateModel(p); err != nil {
		return "", err
	}

	return lines(
		"Create a comprehensive incident report based on the following investigation data:",
		"",
		"Incident Details:",
		"- ID: "+p.IncidentID,
		"- Title: "+p.IncidentTitle,
		"- Severity: "+p.IncidentSeverity,
		"- Affected Services: "+p.AffectedServices,
		"",
		"NA Cluster Investigation Results:",
		p.CleanedNA,
		"",
		"EU Cluster Investigation Results:",
		p.CleanedEU,
		"",
		"Please create an executive incident report that includes:",
		"1. Executive Summary (brief overview of the incident and findings)",
		"2. Key Findings (main issues discovered in both regions)",
		"3. Root Cause Analysis",
		"4. Impact Assessment",
		"5. Immediate Actions Required",
		"6. Recommended Next Steps",
		"7. Lessons Learned",
		"",
		"Format the report in clean markdown suitable for Slack display.",
	), nil
}

// ExecutiveSummary asks for a JSON digest of the incident report, see ParseExecutiveSummary
type ExecutiveSummary struct {
	IncidentID       string `validate:"required"`
	IncidentTitle    string `validate:"required"`
	IncidentSeverity string `validate:"required"`
	AffectedServices string
	IncidentReport   string `validate:"required"`
}

const executiveSummarySchema = `{
  "tldr": "2-3 sentence summary of the incident and key findings",
  "key_findings": ["finding1", "finding2", "finding3"],
  "root_cause": "one sentence describing the root cause",
  "business_impact": "one sentence describing business impact",
  "immediate_actions": ["action1", "action2"],
  "slack_summary": "3-5 line summary for Slack notification",
  "incident_status": "Active/Mitigated/Resolved",
  "estimated_resolution": "timeframe for resolution"
}`

func (p ExecutiveSummary) Prompt() (string, error) {
	if err := core.ValidateModel(p); err != nil {
		return "", err
	}

	return lines(
		"Create an executive summary based on the incident investigation.",
		"",
		fmt.Sprintf("Incident: %s - %s", p.IncidentID, p.IncidentTitle),
		"Severity: "+p.IncidentSeverity,
		"Services: "+p.AffectedServices,
		"",
		"Full Incident Report:",
		p.IncidentReport,
		"",
		"Please create a JSON response with this structure:",
		executiveSummarySchema,
		"",
		"Base your summary on the incident report provided above.",
	), nil
}

// ExecutiveSummaryResult is the JSON document the summary step is asked to produce
type ExecutiveSummaryResult struct {
	TLDR                string   `json:"tldr"`
	KeyFindings         []string `json:"key_findings"`
	RootCause           string   `json:"root_cause"`
	BusinessImpact      string   `json:"business_impact"`
	ImmediateActions    []string `json:"immediate_actions"`
	SlackSummary        string   `json:"slack_summary"`
	IncidentStatus      string   `json:"incident_status"`
	EstimatedResolution string   `json:"estimated_resolution"`
}

// ParseExecutiveSummary extracts the summary object from an LLM answer.
// Code fences and prose around the outermost JSON object are ignored.
func ParseExecutiveSummary(raw string) (*ExecutiveSummaryResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("executive summary contains no JSON object")
	}

	var result ExecutiveSummaryResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to parse executive summary: %w", err)
	}
	return &result, nil
}

// FormatSlackReports builds the cross-region technical summary
type FormatSlackReports struct {
	CleanedNA string `validate:"required"`
	CleanedEU string `validate:"required"`
}

func (p FormatSlackReports) Prompt() (string, error) {
	if err := core.ValidateModel(p); err != nil {
		return "", err
	}

	return lines(
		"I need you to create concise technical summaries for an incident report. Here's the investigation data:",
		"",
		"## NA Cluster Investigation Results:",
		p.CleanedNA,
		"",
		"## EU Cluster Investigation Results:",
		p.CleanedEU,
		"",
		"Please create a cross-region summary that includes:",
		"1. North America (NA) Production - health status, critical issues, key metrics, recommendations",
		"2. Europe (EU) Production - health status, critical issues, key metrics, recommendations",
		"3. Cross-Region Impact Analysis - dependencies, common issues, coordinated remediation approach",
		"",
		"Format as clean markdown with bullet points and clear headings.",
	), nil
}
