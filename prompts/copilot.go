package prompts

import (
	"fmt"

	"incidentflow/core"
)

// CopilotContextData carries the incident context that every Co-Pilot prompt is built from
type CopilotContextData struct {
	IncidentID            string `validate:"required"`
	IncidentTitle         string `validate:"required"`
	IncidentSeverity      string `validate:"required"`
	AffectedServices      string
	DatadogMetricsConfig  string `validate:"required"`
	ObserveSupportedDSIDs string `validate:"required"`
}

// CopilotPrompts are the six conversation starters handed to the incident responder agent
type CopilotPrompts struct {
	Copilot    string
	DeepDive   string
	ApplyFixes string
	Monitoring string
	NAFollowup string
	EUFollowup string
}

// Vars maps each prompt to the shell variable it is exported as
func (p CopilotPrompts) Vars() [][2]string {
	return [][2]string{
		{"COPILOT_PROMPT", p.Copilot},
		{"DEEP_DIVE_PROMPT", p.DeepDive},
		{"APPLY_FIXES_PROMPT", p.ApplyFixes},
		{"MONITORING_PROMPT", p.Monitoring},
		{"NA_FOLLOWUP_PROMPT", p.NAFollowup},
		{"EU_FOLLOWUP_PROMPT", p.EUFollowup},
	}
}

func (d CopilotContextData) Build() (*CopilotPrompts, error) {
	if err := core.ValidateModel(d); err != nil {
		return nil, err
	}

	return &CopilotPrompts{
		Copilot: fmt.Sprintf(
			"You are an INCIDENT RESPONDER AGENT with access to kubectl, Datadog, and Observe. "+
				"INCIDENT CONTEXT: ID=%s, Title='%s', Severity=%s, Services=%s. "+
				"I will now gather relevant logs and metrics from: Datadog metrics (%s) and Observe datasets (%s). "+
				"Please wait while I collect this data... Once complete, I'll ask what specific aspect you'd like to investigate.",
			d.IncidentID, d.IncidentTitle, d.IncidentSeverity, d.AffectedServices, d.DatadogMetricsConfig, d.ObserveSupportedDSIDs),
		DeepDive: fmt.Sprintf(
			"You are an INCIDENT RESPONDER AGENT performing deep analysis. "+
				"INCIDENT: %s - %s. "+
				"I'm gathering comprehensive data from Datadog metrics: %s and Observe datasets: %s. "+
				"Analyzing affected services: %s. "+
				"I'll provide root cause analysis, performance metrics, and actionable recommendations. Collecting data now...",
			d.IncidentID, d.IncidentTitle, d.DatadogMetricsConfig, d.ObserveSupportedDSIDs, d.AffectedServices),
		ApplyFixes: fmt.Sprintf(
			"You are an INCIDENT RESPONDER AGENT ready to apply remediation. "+
				"INCIDENT: %s - %s. Services: %s. "+
				"I have access to kubectl for applying fixes. Let me review the investigation findings first... "+
				"Once ready, I'll present the available fixes and ask which ones you'd like me to apply.",
			d.IncidentID, d.IncidentTitle, d.AffectedServices),
		Monitoring: fmt.Sprintf(
			"You are an INCIDENT RESPONDER AGENT monitoring recovery. "+
				"INCIDENT: %s - %s. Services: %s. "+
				"I'm tracking recovery using Datadog metrics: %s. "+
				"Let me check current service health and metrics... I'll then provide status updates and verify applied fixes.",
			d.IncidentID, d.IncidentTitle, d.AffectedServices, d.DatadogMetricsConfig),
		NAFollowup: d.regionFollowup(RegionNA),
		EUFollowup: d.regionFollowup(RegionEU),
	}, nil
}

func (d CopilotContextData) regionFollowup(region Region) string {
	return fmt.Sprintf(
		"You are an INCIDENT RESPONDER AGENT focusing on %[1]s PRODUCTION. "+
			"INCIDENT: %[3]s - %[4]s. Region: %[2]s. "+
			"I have access to kubectl (%[1]s cluster), Datadog metrics: %[5]s, and Observe datasets: %[6]s. "+
			"Let me gather %[1]s-specific logs and metrics first... What aspect of the %[1]s cluster would you like me to investigate?",
		region, region.Name(), d.IncidentID, d.IncidentTitle, d.DatadogMetricsConfig, d.ObserveSupportedDSIDs)
}
