package commands

import (
	"fmt"
	"strings"

	"incidentflow/core"
	"incidentflow/messages"
	"incidentflow/prompts"
)

// ValidateIncident checks the incident parameters inside the workflow and records what is missing.
// It never fails the step: VALIDATION_PASSED and MISSING_PARAMS drive the follow-up steps.
type ValidateIncident struct {
	IncidentID       string
	IncidentTitle    string
	IncidentSeverity string
	AffectedServices string
	IncidentPriority string
	IncidentOwner    string
	IncidentSource   string
	CustomerImpact   string
}

func (c ValidateIncident) Command() (string, error) {
	required := func(value, name string) string {
		return script(
			fmt.Sprintf("if [ -z %s ]; then", q(value)),
			fmt.Sprintf(`  echo "❌ ERROR: %s is required"`, name),
			"  VALIDATION_PASSED=false",
			fmt.Sprintf(`  MISSING_PARAMS="${MISSING_PARAMS} %s"`, name),
			"fi",
		)
	}

	return script(
		`echo "🔍 VALIDATING INCIDENT PARAMETERS"`,
		`echo "================================="`,
		"VALIDATION_PASSED=true",
		`MISSING_PARAMS=""`,
		required(c.IncidentID, "incident_id"),
		required(c.IncidentTitle, "incident_title"),
		required(c.IncidentSeverity, "incident_severity"),
		fmt.Sprintf("if [ -z %s ]; then", q(c.AffectedServices)),
		`  echo "⚠️ WARNING: affected_services not provided - will create validation agent"`,
		"fi",
		fmt.Sprintf("case %s in", q(c.IncidentSeverity)),
		`  "critical"|"high"|"medium"|"low")`,
		fmt.Sprintf("    echo %s", q("✅ Severity "+c.IncidentSeverity+" is valid")),
		"    ;;",
		"  *)",
		fmt.Sprintf("    echo %s", q("❌ ERROR: Invalid severity "+c.IncidentSeverity+". Must be: critical, high, medium, or low")),
		"    VALIDATION_PASSED=false",
		`    MISSING_PARAMS="${MISSING_PARAMS} valid_severity"`,
		"    ;;",
		"esac",
		`if [ "$VALIDATION_PASSED" = "true" ]; then`,
		`  echo "📋 INCIDENT METADATA:"`,
		fmt.Sprintf("  echo %s", q("  ID: "+c.IncidentID)),
		fmt.Sprintf("  echo %s", q("  Title: "+c.IncidentTitle)),
		fmt.Sprintf("  echo %s", q("  Severity: "+c.IncidentSeverity)),
		fmt.Sprintf("  echo %s", q("  Priority: "+c.IncidentPriority)),
		fmt.Sprintf("  echo %s", q("  Owner: "+c.IncidentOwner)),
		fmt.Sprintf("  echo %s", q("  Source: "+c.IncidentSource)),
		`  echo "  Affected Services: ${affected_services:-TBD via agent}"`,
		fmt.Sprintf("  echo %s", q("  Customer Impact: "+c.CustomerImpact)),
		`  echo ""`,
		`  echo "✅ Incident validation completed successfully"`,
		"else",
		`  echo "❌ Validation failed. Missing parameters: ${MISSING_PARAMS}"`,
		`  echo "⚠️ Continuing workflow to handle validation failure..."`,
		"fi",
	), nil
}

// ValidationFailure reports missing parameters left behind by ValidateIncident
type ValidationFailure struct {
	MissingParams string
}

func (c ValidationFailure) Command() (string, error) {
	return script(
		`if [ "$VALIDATION_PASSED" != "true" ]; then`,
		`  echo "⚠️ VALIDATION FAILURE DETECTED: Creating support agent to help"`,
		fmt.Sprintf("  echo %s", q("Missing required parameters: "+c.MissingParams)),
		`  echo "Will create an intelligent agent to assist with parameter collection"`,
		"else",
		`  echo "✅ All required parameters present"`,
		"fi",
	), nil
}

// DefaultDatasets are the Observe dataset IDs offered to the investigation agents
var DefaultDatasets = []string{
	"api-logs",
	"server-logs",
	"application-logs",
	"error-logs",
	"trace-logs",
	"audit-logs",
	"security-logs",
	"performance-logs",
}

// SupportedDatasets prints the Observe dataset IDs, DefaultDatasets when none are set
type SupportedDatasets struct {
	Datasets []string
}

func (c SupportedDatasets) Command() (string, error) {
	datasets := c.Datasets
	if len(datasets) == 0 {
		datasets = DefaultDatasets
	}
	return script(
		`echo "📊 FETCHING OBSERVE SUPPORTED DATASET IDS"`,
		`echo "=========================================="`,
		fmt.Sprintf("SUPPORTED_DATASETS=%s", q(strings.Join(datasets, ","))),
		`echo "Available Dataset IDs for Observe: $SUPPORTED_DATASETS"`,
		`echo "✅ Observe supported dataset IDs retrieved successfully"`,
	), nil
}

// DefaultDatadogMetrics covers infrastructure, ingress, application, JVM and trace metrics
var DefaultDatadogMetrics = []string{
	"system.cpu.usage",
	"system.memory.usage",
	"kubernetes.cpu.usage",
	"kubernetes.memory.usage",
	"kubernetes.pods.running",
	"kubernetes.pods.failed",
	"nginx.requests.rate",
	"nginx.response.time",
	"kong.requests.rate",
	"kong.response.time",
	"kong.errors.rate",
	"application.response.time",
	"application.error.rate",
	"application.throughput",
	"jvm.heap.usage",
	"jvm.gc.time",
	"trace.servlet.request.errors",
	"trace.servlet.request.hits",
	"trace.servlet.request",
}

type DatadogMetrics struct {
	Metrics []string
}

func (c DatadogMetrics) Command() (string, error) {
	metrics := c.Metrics
	if len(metrics) == 0 {
		metrics = DefaultDatadogMetrics
	}
	return script(
		`echo "📈 FETCHING DATADOG METRICS CONFIGURATION"`,
		`echo "========================================="`,
		fmt.Sprintf("DD_METRICS=%s", q(strings.Join(metrics, ","))),
		`echo "Available Datadog Metrics: $DD_METRICS"`,
		`echo "✅ Datadog metrics configuration retrieved successfully"`,
	), nil
}

// CopilotContext exports the Co-Pilot prompts as shell variables and echoes them as step output
type CopilotContext struct {
	IncidentID            string `validate:"required"`
	IncidentTitle         string `validate:"required"`
	IncidentSeverity      string `validate:"required"`
	AffectedServices      string
	IncidentPriority      string
	DatadogMetricsConfig  string `validate:"required"`
	ObserveSupportedDSIDs string `validate:"required"`
}

func (c CopilotContext) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	built, err := prompts.CopilotContextData{
		IncidentID:            c.IncidentID,
		IncidentTitle:         c.IncidentTitle,
		IncidentSeverity:      c.IncidentSeverity,
		AffectedServices:      c.AffectedServices,
		DatadogMetricsConfig:  c.DatadogMetricsConfig,
		ObserveSupportedDSIDs: c.ObserveSupportedDSIDs,
	}.Build()
	if err != nil {
		return "", err
	}

	parts := []string{
		`echo "🔍 PREPARING COPILOT CONTEXT PROMPTS"`,
		`echo "=================================="`,
	}
	vars := built.Vars()
	for _, v := range vars {
		parts = append(parts, fmt.Sprintf("%s=%s", v[0], q(v[1])))
	}
	for _, v := range vars {
		parts = append(parts, fmt.Sprintf(`echo "%[1]s=${%[1]s}"`, v[0]))
	}
	parts = append(parts, `echo "✅ Copilot context prompts prepared successfully"`)
	return script(parts...), nil
}

// NormalizeChannelName lower-cases the channel and replaces spaces with underscores when enabled.
// Enabled is passed through verbatim so it can be a workflow placeholder.
type NormalizeChannelName struct {
	ChannelID string `validate:"required"`
	Enabled   string `validate:"required"`
}

func (c NormalizeChannelName) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		`if [ %s = "true" ]; then echo %s | sed 's/ /_/g' | tr '[:upper:]' '[:lower:]'; else echo %s; fi`,
		q(c.Enabled), q(c.ChannelID), q(c.ChannelID),
	), nil
}

// severityEmojiCase sets SEVERITY_EMOJI for the alert payload
func severityEmojiCase(severity string) string {
	return script(
		`SEVERITY_EMOJI=""`,
		fmt.Sprintf(`case "$(echo %s | tr '[:upper:]' '[:lower:]')" in`, q(severity)),
		fmt.Sprintf(`  critical) SEVERITY_EMOJI=%s ;;`, q(messages.SeverityEmoji("critical"))),
		fmt.Sprintf(`  high) SEVERITY_EMOJI=%s ;;`, q(messages.SeverityEmoji("high"))),
		fmt.Sprintf(`  medium) SEVERITY_EMOJI=%s ;;`, q(messages.SeverityEmoji("medium"))),
		fmt.Sprintf(`  low) SEVERITY_EMOJI=%s ;;`, q(messages.SeverityEmoji("low"))),
		fmt.Sprintf(`  *) SEVERITY_EMOJI=%s ;;`, q(messages.SeverityEmoji(""))),
		"esac",
	)
}

// copilotValueScript sets COPILOT_VALUE to the Co-Pilot button JSON, trimming the prompt
// once the workflow values are known so the value stays within Slack's limit
func copilotValueScript(agentUUID, prompt string) string {
	return script(
		fmt.Sprintf("COPILOT_PROMPT=%s", q(prompt)),
		"while :; do",
		fmt.Sprintf(`  COPILOT_VALUE="{\"agent_uuid\":\"$(incidentflow_json_escape %s)\",\"message\":\"$(incidentflow_json_escape "$COPILOT_PROMPT")\"}"`, q(agentUUID)),
		fmt.Sprintf("  [ ${#COPILOT_VALUE} -le %d ] && break", messages.MaxButtonValue),
		fmt.Sprintf("  COPILOT_KEEP=$(( ${#COPILOT_PROMPT} - (${#COPILOT_VALUE} - %d) - 3 ))", messages.MaxButtonValue),
		`  if [ "$COPILOT_KEEP" -le 0 ]; then echo "❌ Co-Pilot value exceeds Slack's limit"; exit 1; fi`,
		`  COPILOT_PROMPT="${COPILOT_PROMPT:0:COPILOT_KEEP}..."`,
		"done",
	)
}

// PostIncidentAlert posts the incident banner. The severity emoji is resolved in the shell
// because the severity is usually only known once the workflow runs.
type PostIncidentAlert struct {
	IncidentID       string `validate:"required"`
	IncidentTitle    string `validate:"required"`
	IncidentSeverity string `validate:"required"`
	IncidentPriority string `validate:"required"`
	AffectedServices string
	IncidentBody     string
	IncidentURL      string `validate:"required"`
	AgentUUID        string `validate:"required"`
	Channel          string `validate:"required"`
	CopilotPrompt    string
	SlackToken       string `validate:"required"`
	OutputFile       string
}

func (c PostIncidentAlert) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	outputFile := c.OutputFile
	if outputFile == "" {
		outputFile = "/tmp/incident_alert.json"
	}
	copilotPrompt := c.CopilotPrompt
	if copilotPrompt == "" {
		copilotPrompt = messages.DefaultCopilotPrompt(c.IncidentID, c.IncidentTitle)
	}

	return SlackNotification{
		Template: messages.PostIncidentAlertMessage{
			IncidentTitle:    c.IncidentTitle,
			IncidentID:       c.IncidentID,
			IncidentSeverity: c.IncidentSeverity,
			IncidentPriority: c.IncidentPriority,
			AffectedServices: c.AffectedServices,
			IncidentBody:     c.IncidentBody,
			IncidentURL:      c.IncidentURL,
			AgentUUID:        c.AgentUUID,
			Channel:          c.Channel,
			CopilotValue:     "${COPILOT_VALUE}",
			SeverityEmoji:    "${SEVERITY_EMOJI}",
		},
		Banner:     "🚨 POSTING INCIDENT ALERT",
		What:       "Incident alert",
		Token:      c.SlackToken,
		OutputFile: outputFile,
		Expand:     true,
		Preamble: []string{
			severityEmojiCase(c.IncidentSeverity),
			copilotValueScript(c.AgentUUID, copilotPrompt),
		},
	}.Command()
}

// InvestigationProgress posts the progress banner; the timeout is converted to minutes in the shell
type InvestigationProgress struct {
	Channel              string `validate:"required"`
	IncidentID           string `validate:"required"`
	IncidentTitle        string `validate:"required"`
	IncidentSeverity     string `validate:"required"`
	AffectedServices     string
	InvestigationTimeout string `validate:"required"`
	SlackToken           string `validate:"required"`
	OutputFile           string
}

func (c InvestigationProgress) Command() (string, error) {
	if err := core.ValidateModel(c); err != nil {
		return "", err
	}

	outputFile := c.OutputFile
	if outputFile == "" {
		outputFile = "/tmp/investigation_progress.json"
	}

	return SlackNotification{
		Template: messages.InvestigationProgressMessage{
			Channel:          c.Channel,
			IncidentID:       c.IncidentID,
			IncidentTitle:    c.IncidentTitle,
			IncidentSeverity: c.IncidentSeverity,
			AffectedServices: c.AffectedServices,
			TimeoutMinutes:   "${TIMEOUT_MINUTES}",
		},
		Banner:     "📊 POSTING INVESTIGATION PROGRESS UPDATE",
		What:       "Investigation progress notification",
		Token:      c.SlackToken,
		OutputFile: outputFile,
		Expand:     true,
		Preamble: []string{
			fmt.Sprintf("TIMEOUT_SECONDS=%s", q(c.InvestigationTimeout)),
			"TIMEOUT_MINUTES=$((TIMEOUT_SECONDS / 60))",
		},
	}.Command()
}

// UploadResultsArgs are the inputs of the results uploader, passed to the container as environment variables
var UploadResultsArgs = []string{
	"slack_token",
	"channel",
	"incident_id",
	"incident_title",
	"incident_severity",
	"affected_services",
	"executive_summary",
	"formatted_report",
	"na_results",
	"eu_results",
}

// InvestigationResults runs the results uploader shipped in the incidentflow image
type InvestigationResults struct {
	// Binary defaults to incidentflow on the PATH
	Binary string
}

func (c InvestigationResults) Command() (string, error) {
	binary := c.Binary
	if binary == "" {
		binary = "incidentflow"
	}
	return binary + " upload-results", nil
}
