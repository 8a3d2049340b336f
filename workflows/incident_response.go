package workflows

import (
	"time"

	"incidentflow/commands"
	"incidentflow/prompts"
	"incidentflow/tools"
	"incidentflow/workflow"
)

const IncidentResponseName = "production-incident-workflow"

// Agent and integration defaults used by the production incident workflow
const (
	DefaultNAAgent              = "p44-na-prod-incident-workflow"
	DefaultEUAgent              = "p44-eu-prod-incident-workflow"
	DefaultSlackIntegrationPath = "api/v1/integration/slack/token/1"
	DefaultUploaderImage        = "incidentflow:latest"
)

// DefaultIncidentParams returns the parameter defaults of the incident workflow
func DefaultIncidentParams() map[string]string {
	return map[string]string{
		"incident_id":            "549",
		"incident_title":         "testing kubiya parcel service is down",
		"incident_severity":      "UNKNOWN",
		"incident_priority":      "PLACEHOLDER_PRIORITY",
		"incident_body":          "Status: Active | Severity: Unknown | Commander: Abhishek Sharma\nhttps://p44.datadoghq.com/incidents/549",
		"incident_url":           "https://p44.datadoghq.com/incidents/549",
		"incident_source":        "PLACEHOLDER_SOURCE",
		"incident_owner":         "PLACEHOLDER_OWNER",
		"slack_channel_id":       "#inc-549-testing kubiya parcel service is down",
		"notification_channels":  "#alerts",
		"escalation_channel":     "#incident-escalation",
		"investigation_timeout":  "3600",
		"max_retries":            "3",
		"investigation_agent":    "test-workflow",
		"customer_impact":        "PLACEHOLDER_IMPACT",
		"affected_services":      "parcel-service",
		"dd_environment":         "na-integration",
		"k8s_environment":        "p44-qa-integration",
		"agent_uuid":             "1b0ed7bc-6385-40f8-8a62-bd9932bdadc2",
		"normalize_channel_name": "false",
	}
}

// IncidentOptions customises the incident workflow. Zero values use the defaults above.
type IncidentOptions struct {
	// Params override DefaultIncidentParams key by key
	Params               map[string]string
	NAAgent              string
	EUAgent              string
	SlackIntegrationPath string
	UploaderImage        string
}

var (
	investigationContinueOn = workflow.ContinueOnPolicy{
		Failure: true,
		Output: []string{
			"ERROR: Sorry, I had an issue",
			"Agent-manager not found",
			"Stream error",
			"INTERNAL_ERROR",
			"stream ID",
			"received from peer",
			"re:stream error.*INTERNAL_ERROR",
			"exit code 1",
			"API key",
			"command failed",
			"Kubiya CLI",
		},
	}

	cleanContinueOn = workflow.ContinueOnPolicy{
		Failure: true,
		Output: []string{
			"Agent-manager not found",
			"ERROR:",
			"Stream error",
			"INTERNAL_ERROR",
			"stream ID",
			"re:stream error.*INTERNAL_ERROR",
			"exit code 1",
			"API key",
			"command failed",
			"Kubiya CLI",
			"re:exit code [0-9]+",
			"re:failed.*agent",
		},
	}

	reportContinueOn = workflow.ContinueOnPolicy{
		Failure: true,
		Output: []string{
			"Stream error",
			"INTERNAL_ERROR",
			"Agent-manager not found",
			"exit code 1",
			"API key",
			"command failed",
			"Kubiya CLI",
			"re:exit code [0-9]+",
			"re:failed.*agent",
		},
	}
)

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func uploaderTool(image string) tools.Tool {
	content, _ := commands.InvestigationResults{}.Command()
	args := make([]tools.Arg, 0, len(commands.UploadResultsArgs))
	for _, name := range commands.UploadResultsArgs {
		args = append(args, tools.Arg{Name: name, Type: "str", Required: true})
	}
	return tools.Tool{
		Name:        "investigation-report-uploader",
		Description: "Upload investigation results as files and post summary to Slack",
		Type:        "docker",
		Image:       image,
		Content:     content,
		Args:        args,
	}
}

// IncidentResponse assembles the production incident workflow: validate the incident,
// resolve the channel and Slack token, post the alert, investigate both production
// clusters with the incident agent, then report and upload the results.
func IncidentResponse(opts IncidentOptions) (*workflow.Workflow, error) {
	naAgent := valueOr(opts.NAAgent, DefaultNAAgent)
	euAgent := valueOr(opts.EUAgent, DefaultEUAgent)

	return workflow.New(IncidentResponseName).
		Description("Production-grade incident response workflow with AI investigation and Slack integration").
		Params(DefaultIncidentParams()).
		Params(opts.Params).
		Env(map[string]string{
			"KUBIYA_API_KEY":    "${KUBIYA_API_KEY}",
			"KUBIYA_USER_EMAIL": "${KUBIYA_USER_EMAIL}",
			"INCIDENT_SEVERITY": "medium",
			"INCIDENT_PRIORITY": "medium",
		}).
		Step("validate-incident", func(s *workflow.StepBuilder) {
			s.Description("Validate incident parameters and prerequisites").
				ShellCommand(commands.ValidateIncident{
					IncidentID:       "${incident_id}",
					IncidentTitle:    "${incident_title}",
					IncidentSeverity: "${incident_severity}",
					AffectedServices: "${affected_services}",
					IncidentPriority: "${incident_priority}",
					IncidentOwner:    "${incident_owner}",
					IncidentSource:   "${incident_source}",
					CustomerImpact:   "${customer_impact}",
				}).
				Output("validation_status")
		}).
		Step("normalize-channel-name", func(s *workflow.StepBuilder) {
			s.Description("Normalize the channel name by replacing spaces with underscores").
				ShellCommandWith(commands.NormalizeChannelName{
					ChannelID: "${slack_channel_id}",
					Enabled:   "${normalize_channel_name:-true}",
				}, false).
				Depends("validate-incident").
				Output("NORMALIZED_CHANNEL_NAME")
		}).
		Step("setup-slack-integration", func(s *workflow.StepBuilder) {
			s.Description("Initialize Slack integration for incident communications").
				Kubiya(valueOr(opts.SlackIntegrationPath, DefaultSlackIntegrationPath), "GET", false).
				Depends("normalize-channel-name").
				Output("slack_token")
		}).
		Step("validation_failure_message", func(s *workflow.StepBuilder) {
			s.Description("Prepare validation failure message if parameters are missing").
				ShellCommand(commands.ValidationFailure{MissingParams: "${MISSING_PARAMS}"}).
				Depends("setup-slack-integration").
				Output("validation_failure_message")
		}).
		Step("get-observe-supported-datasets", func(s *workflow.StepBuilder) {
			s.Description("Retrieve supported dataset IDs for Observe platform").
				ShellCommand(commands.SupportedDatasets{}).
				Depends("setup-slack-integration").
				Output("observe_supported_ds_ids")
		}).
		Step("get-datadog-metrics-config", func(s *workflow.StepBuilder) {
			s.Description("Retrieve Datadog metrics configuration and key metrics for monitoring").
				ShellCommand(commands.DatadogMetrics{}).
				Depends("setup-slack-integration").
				Output("datadog_metrics_config")
		}).
		Step("prepare-copilot-context", func(s *workflow.StepBuilder) {
			s.Description("Prepare context prompts for agent interactions").
				ShellCommand(commands.CopilotContext{
					IncidentID:            "${incident_id}",
					IncidentTitle:         "${incident_title}",
					IncidentSeverity:      "${incident_severity}",
					AffectedServices:      "${affected_services}",
					IncidentPriority:      "${incident_priority}",
					DatadogMetricsConfig:  "${datadog_metrics_config}",
					ObserveSupportedDSIDs: "${observe_supported_ds_ids}",
				}).
				Depends("setup-slack-integration", "get-observe-supported-datasets", "get-datadog-metrics-config").
				Output("copilot_prompts")
		}).
		Step("post-incident-alert", func(s *workflow.StepBuilder) {
			s.Description("Send incident alert to Slack when services are provided").
				ShellCommand(commands.PostIncidentAlert{
					IncidentID:       "${incident_id}",
					IncidentTitle:    "${incident_title}",
					IncidentSeverity: "${incident_severity}",
					IncidentPriority: "${incident_priority:-Not Set}",
					AffectedServices: "${affected_services}",
					IncidentBody:     "${incident_body}",
					IncidentURL:      "${incident_url}",
					AgentUUID:        "${agent_uuid}",
					Channel:          "${NORMALIZED_CHANNEL_NAME}",
					SlackToken:       "${slack_token.token}",
				}).
				Depends("prepare-copilot-context").
				Output("initial_alert_message")
		}).
		Step("notify-investigation-progress", func(s *workflow.StepBuilder) {
			s.Description("Post consolidated investigation progress update").
				ShellCommand(commands.InvestigationProgress{
					IncidentID:           "${incident_id}",
					InvestigationTimeout: "${investigation_timeout:-300}",
					Channel:              "${NORMALIZED_CHANNEL_NAME}",
					IncidentTitle:        "${incident_title}",
					IncidentSeverity:     "${incident_severity}",
					AffectedServices:     "${affected_services}",
					SlackToken:           "${slack_token.token}",
				}).
				Depends("post-incident-alert").
				Output("investigation_progress_message")
		}).
		Step("investigate-na-cluster-health", func(s *workflow.StepBuilder) {
			s.Description("AI-powered cross-cluster investigation for NA Production").
				AgentPrompt(naAgent, prompts.ClusterInvestigation{
					Region:        prompts.RegionNA,
					IncidentID:    "{{.incident_id}}",
					IncidentTitle: "{{.incident_title}}",
				}).
				Timeout(300*time.Second).
				Retry(3, 10*time.Second).
				ContinueOn(investigationContinueOn).
				Depends("notify-investigation-progress", "get-datadog-metrics-config", "get-observe-supported-datasets").
				Output("na_cluster_results")
		}).
		Step("investigate-eu-cluster-health", func(s *workflow.StepBuilder) {
			s.Description("AI-powered cross-cluster investigation for EU Production").
				AgentPrompt(euAgent, prompts.ClusterInvestigation{
					Region:        prompts.RegionEU,
					IncidentID:    "{{.incident_id}}",
					IncidentTitle: "{{.incident_title}}",
				}).
				Timeout(300*time.Second).
				Retry(3, 10*time.Second).
				ContinueOn(investigationContinueOn).
				Depends("notify-investigation-progress", "get-datadog-metrics-config", "get-observe-supported-datasets").
				Output("eu_cluster_results")
		}).
		Step("create-incident-report", func(s *workflow.StepBuilder) {
			s.Description("Create comprehensive incident report with TLDR summary using cleaned data").
				AgentPrompt(naAgent, prompts.IncidentReport{
					IncidentID:       "{{.incident_id}}",
					IncidentTitle:    "{{.incident_title}}",
					IncidentSeverity: "{{.incident_severity}}",
					AffectedServices: "{{.affected_services}}",
					CleanedNA:        "{{.cleaned_na_results}}",
					CleanedEU:        "{{.cleaned_eu_results}}",
				}).
				Timeout(900*time.Second).
				Retry(5, 10*time.Second).
				ContinueOn(reportContinueOn).
				Depends("clean-na-investigation", "clean-eu-investigation").
				Output("formatted_incident_report")
		}).
		Step("create-executive-summary", func(s *workflow.StepBuilder) {
			s.Description("Create concise executive summary using agent").
				AgentPrompt(naAgent, prompts.ExecutiveSummary{
					IncidentID:       "{{.incident_id}}",
					IncidentTitle:    "{{.incident_title}}",
					IncidentSeverity: "{{.incident_severity}}",
					AffectedServices: "{{.affected_services}}",
					IncidentReport:   "{{.formatted_incident_report}}",
				}).
				Timeout(900*time.Second).
				Retry(5, 10*time.Second).
				ContinueOn(reportContinueOn).
				Depends("create-incident-report").
				Output("executive_summary")
		}).
		Step("clean-na-investigation", func(s *workflow.StepBuilder) {
			s.Description("Clean NA cluster investigation output for LLM processing").
				AgentPrompt(naAgent, prompts.CleanInvestigation{Region: prompts.RegionNA, Results: "{{.na_cluster_results}}"}).
				Timeout(900*time.Second).
				Retry(5, 10*time.Second).
				ContinueOn(cleanContinueOn).
				Depends("investigate-na-cluster-health").
				Output("cleaned_na_results")
		}).
		Step("clean-eu-investigation", func(s *workflow.StepBuilder) {
			s.Description("Clean EU cluster investigation output for LLM processing").
				AgentPrompt(euAgent, prompts.CleanInvestigation{Region: prompts.RegionEU, Results: "{{.eu_cluster_results}}"}).
				Timeout(900*time.Second).
				Retry(5, 10*time.Second).
				ContinueOn(cleanContinueOn).
				Depends("investigate-eu-cluster-health").
				Output("cleaned_eu_results")
		}).
		Step("format-slack-reports", func(s *workflow.StepBuilder) {
			s.Description("Format concise reports for Slack upload").
				AgentPrompt(euAgent, prompts.FormatSlackReports{
					CleanedNA: "{{.cleaned_na_results}}",
					CleanedEU: "{{.cleaned_eu_results}}",
				}).
				Timeout(900*time.Second).
				Retry(5, 10*time.Second).
				ContinueOn(reportContinueOn).
				Depends("clean-na-investigation", "clean-eu-investigation").
				Output("formatted_summaries")
		}).
		Step("upload-investigation-results", func(s *workflow.StepBuilder) {
			s.Description("Upload investigation results as files to Slack and post summary").
				ToolDef(uploaderTool(valueOr(opts.UploaderImage, DefaultUploaderImage)), map[string]string{
					"slack_token":       "${slack_token.token}",
					"channel":           "${NORMALIZED_CHANNEL_NAME}",
					"incident_id":       "${incident_id}",
					"incident_title":    "${incident_title}",
					"incident_severity": "${incident_severity}",
					"affected_services": "${affected_services}",
					"executive_summary": "${executive_summary}",
					"formatted_report":  "${formatted_incident_report}",
					"na_results":        "${cleaned_na_results}",
					"eu_results":        "${cleaned_eu_results}",
				}).
				ContinueOn(workflow.ContinueOnPolicy{Failure: true}).
				Depends("create-incident-report", "create-executive-summary", "format-slack-reports").
				Output("upload_summary_status")
		}).
		Build()
}
