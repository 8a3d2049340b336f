package messages

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentflow/core"
)

// parseAsSlackMessage checks the payload decodes through slack-go's own block parser
func parseAsSlackMessage(t *testing.T, m *Message) slack.Msg {
	t.Helper()
	out, err := m.ToJSON()
	require.NoError(t, err)

	var parsed slack.Msg
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	return parsed
}

func allBlockText(t *testing.T, m *Message) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}

func TestTemplates(t *testing.T) {
	templates := map[string]Template{
		"ValidationFailure": ValidationFailureMessage{
			IncidentTitle: "DB latency", IncidentID: "INC-1", IncidentSeverity: "high", Channel: "#inc",
		},
		"PostIncidentAlert": PostIncidentAlertMessage{
			IncidentTitle: "DB latency", IncidentID: "INC-1", IncidentSeverity: "critical", IncidentPriority: "P1",
			AffectedServices: "payments", IncidentBody: "p99 above 2s", IncidentURL: "https://app.datadoghq.com/incidents/1",
			AgentUUID: "d5d8b3b4-0000-4000-8000-000000000001", Channel: "#inc", CopilotPrompt: "investigate",
		},
		"InvestigationStart": InvestigationStartMessage{Channel: "#inc", InvestigationTimeout: "600"},
		"InvestigationProgress": InvestigationProgressMessage{
			Channel: "#inc", IncidentID: "INC-1", IncidentTitle: "DB latency", IncidentSeverity: "high", TimeoutMinutes: "10",
		},
		"InvestigationResults": InvestigationResultsMessage{
			Channel: "#inc", IncidentID: "INC-1", IncidentTitle: "DB latency", IncidentSeverity: "low",
			Summary: "**Root cause** found", FileLinks: []string{"📄 <https://files/1|Full Incident Report>"}, Timestamp: "2025-01-01 10:00:00 UTC",
		},
		"SystemMaintenance": SystemMaintenanceMessage{
			Channel: "#ops", MaintenanceTitle: "DB upgrade", StartTime: "02:00", EndTime: "04:00", AffectedSystems: []string{"db-1", "db-2"},
		},
		"AlertResolution": AlertResolutionMessage{
			Channel: "#ops", AlertID: "A-1", AlertTitle: "Disk full", ResolutionTime: "5m", RootCause: "logs", ActionsTaken: []string{"rotated logs"},
		},
		"DeploymentStatus": DeploymentStatusMessage{
			Channel: "#deploys", DeploymentID: "D-1", ServiceName: "api", Environment: "prod", Version: "1.2.3", Status: "failed", DeployTime: "now",
		},
		"CapacityWarning": CapacityWarningMessage{
			Channel: "#ops", ResourceType: "cpu", CurrentUsage: "91.25", Threshold: "80", AffectedServices: []string{"api"}, RecommendedAction: "scale out",
		},
		"SecurityIncident": SecurityIncidentMessage{
			Channel: "#sec", IncidentID: "SEC-1", IncidentType: "unauthorized_access", AffectedSystems: []string{"bastion"},
		},
	}

	for name, template := range templates {
		t.Run(name, func(t *testing.T) {
			msg, err := template.ToMessage()
			require.NoError(t, err)
			require.NoError(t, msg.Validate())

			parsed := parseAsSlackMessage(t, msg)
			assert.NotEmpty(t, parsed.Channel)
			assert.NotEmpty(t, parsed.Text)
			assert.True(t, len(parsed.Blocks.BlockSet) > 0 || len(parsed.Attachments) > 0)
		})
	}
}

func TestTemplatesRejectMissingFields(t *testing.T) {
	templates := map[string]Template{
		"ValidationFailure":     ValidationFailureMessage{},
		"PostIncidentAlert":     PostIncidentAlertMessage{IncidentTitle: "x"},
		"InvestigationStart":    InvestigationStartMessage{},
		"InvestigationProgress": InvestigationProgressMessage{Channel: "#c"},
		"InvestigationResults":  InvestigationResultsMessage{},
		"SystemMaintenance":     SystemMaintenanceMessage{Channel: "#c", MaintenanceTitle: "t", StartTime: "s", EndTime: "e"},
		"AlertResolution":       AlertResolutionMessage{Channel: "#c", ResolutionStatus: "closed"},
		"DeploymentStatus":      DeploymentStatusMessage{Status: "exploded"},
		"CapacityWarning":       CapacityWarningMessage{},
		"SecurityIncident":      SecurityIncidentMessage{Severity: "apocalyptic"},
	}

	for name, template := range templates {
		t.Run(name, func(t *testing.T) {
			_, err := template.ToMessage()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidModel))
		})
	}
}

func TestPostIncidentAlertMessage(t *testing.T) {
	base := PostIncidentAlertMessage{
		IncidentTitle: "API errors", IncidentID: "INC-9", IncidentSeverity: "critical", IncidentPriority: "P1",
		IncidentURL: "https://example.com/inc/9", AgentUUID: "agent-1", Channel: "#inc",
	}

	t.Run("Success_CopilotButton", func(t *testing.T) {
		m := base
		m.CopilotPrompt = "Look at \"payments\" <now>"
		msg, err := m.ToMessage()
		require.NoError(t, err)

		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "danger", msg.Attachments[0].Color)

		actions := msg.Attachments[0].Blocks[len(msg.Attachments[0].Blocks)-1].(*slack.ActionBlock)
		require.Len(t, actions.Elements.ElementSet, 2)

		dashboard := actions.Elements.ElementSet[0].(*slack.ButtonBlockElement)
		assert.Equal(t, "https://example.com/inc/9", dashboard.URL)

		copilot := actions.Elements.ElementSet[1].(*slack.ButtonBlockElement)
		assert.Equal(t, CopilotActionID, copilot.ActionID)
		value, err := DecodeCopilotValue(copilot.Value)
		require.NoError(t, err)
		assert.Equal(t, "agent-1", value.AgentUUID)
		assert.Equal(t, "Look at \"payments\" <now>", value.Message)
	})

	t.Run("Success_CopilotValueOverride", func(t *testing.T) {
		m := base
		m.CopilotValue = "${COPILOT_VALUE}"
		m.CopilotPrompt = strings.Repeat("x", 3000)
		msg, err := m.ToMessage()
		require.NoError(t, err)

		actions := msg.Attachments[0].Blocks[len(msg.Attachments[0].Blocks)-1].(*slack.ActionBlock)
		copilot := actions.Elements.ElementSet[1].(*slack.ButtonBlockElement)
		assert.Equal(t, "${COPILOT_VALUE}", copilot.Value)
	})

	t.Run("Success_DefaultCopilotPrompt", func(t *testing.T) {
		msg, err := base.ToMessage()
		require.NoError(t, err)

		actions := msg.Attachments[0].Blocks[len(msg.Attachments[0].Blocks)-1].(*slack.ActionBlock)
		value, err := DecodeCopilotValue(actions.Elements.ElementSet[1].(*slack.ButtonBlockElement).Value)
		require.NoError(t, err)
		assert.Equal(t, "Help me investigate incident INC-9: API errors", value.Message)
		assert.Equal(t, DefaultCopilotPrompt("INC-9", "API errors"), value.Message)
	})

	t.Run("Success_SeverityPlaceholder", func(t *testing.T) {
		m := base
		m.SeverityEmoji = "${SEVERITY_EMOJI}"
		msg, err := m.ToMessage()
		require.NoError(t, err)
		assert.Contains(t, allBlockText(t, msg), "${SEVERITY_EMOJI} critical")
	})

	t.Run("Success_DerivedSeverityAndDefaults", func(t *testing.T) {
		msg, err := base.ToMessage()
		require.NoError(t, err)

		text := allBlockText(t, msg)
		assert.Contains(t, text, "🔴 critical")
		assert.Contains(t, text, "_pending validation_")
		assert.Contains(t, text, "_No description provided_")
	})
}

func TestEncodeCopilotValue(t *testing.T) {
	t.Run("LongPromptIsTrimmed", func(t *testing.T) {
		value, err := EncodeCopilotValue("agent", strings.Repeat("é", 3000))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(value), MaxButtonValue)

		decoded, err := DecodeCopilotValue(value)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(decoded.Message, "..."))
	})

	t.Run("AgentTooLong", func(t *testing.T) {
		_, err := EncodeCopilotValue(strings.Repeat("a", 2100), "hi")
		assert.ErrorIs(t, err, core.ErrInvalidModel)
	})

	t.Run("DecodeRejectsIncomplete", func(t *testing.T) {
		_, err := DecodeCopilotValue(`{"agent_uuid":"a"}`)
		assert.ErrorIs(t, err, core.ErrInvalidModel)

		_, err = DecodeCopilotValue("{'agent_uuid': 'a'}")
		assert.Error(t, err)
	})
}

func TestInvestigationResultsMessage(t *testing.T) {
	t.Run("Success_NoFiles", func(t *testing.T) {
		msg, err := InvestigationResultsMessage{
			Channel: "#inc", IncidentID: "INC-1", IncidentTitle: "t", IncidentSeverity: "medium", Timestamp: "ts",
		}.ToMessage()
		require.NoError(t, err)

		text := allBlockText(t, msg)
		assert.Contains(t, text, NoFilesUploaded)
		assert.Contains(t, text, DefaultSummary)
		assert.Contains(t, text, "🟡 medium")
		assert.Contains(t, text, "_pending validation_")
	})

	t.Run("Success_RendersAffectedServices", func(t *testing.T) {
		msg, err := InvestigationResultsMessage{
			Channel: "#inc", IncidentID: "INC-1", IncidentTitle: "t", IncidentSeverity: "low", Timestamp: "ts",
			AffectedServices: "parcel-service, tracking-api",
		}.ToMessage()
		require.NoError(t, err)

		text := allBlockText(t, msg)
		assert.Contains(t, text, `*🎯 Services:*\nparcel-service, tracking-api`)
		assert.NotContains(t, text, "_pending validation_")
	})

	t.Run("Success_MarkdownSummaryConverted", func(t *testing.T) {
		msg, err := InvestigationResultsMessage{
			Channel: "#inc", IncidentID: "INC-1", IncidentTitle: "t", IncidentSeverity: "high", Timestamp: "ts",
			Summary: "**DNS** outage", FileLinks: []string{"a", "b"},
		}.ToMessage()
		require.NoError(t, err)

		text := allBlockText(t, msg)
		assert.Contains(t, text, "*DNS* outage")
		assert.Contains(t, text, `a\nb`)
	})
}

func TestOperationsTemplates(t *testing.T) {
	t.Run("DeploymentSuccessHasNoActions", func(t *testing.T) {
		msg, err := DeploymentStatusMessage{
			Channel: "#d", DeploymentID: "D-1", ServiceName: "api", Environment: "prod", Version: "1", DeployTime: "now",
		}.ToMessage()
		require.NoError(t, err)
		assert.Len(t, msg.Blocks, 3)
		assert.Equal(t, "✅ Deployment success: api", msg.Text)
	})

	t.Run("CapacityTemplateValuesPassThrough", func(t *testing.T) {
		msg, err := CapacityWarningMessage{
			Channel: "#ops", ResourceType: "memory", CurrentUsage: "{{.memory_usage}}", Threshold: "{{.memory_threshold}}",
			AffectedServices: []string{"api"}, RecommendedAction: "add nodes",
		}.ToMessage()
		require.NoError(t, err)

		text := allBlockText(t, msg)
		assert.Contains(t, text, "{{.memory_usage}}%")
		assert.Contains(t, text, "🧠 CAPACITY WARNING")
	})

	t.Run("SecurityDefaults", func(t *testing.T) {
		msg, err := SecurityIncidentMessage{
			Channel: "#sec", IncidentID: "SEC-2", IncidentType: "malware", AffectedSystems: []string{"host"},
		}.ToMessage()
		require.NoError(t, err)

		text := allBlockText(t, msg)
		assert.Contains(t, text, "🦠 SECURITY INCIDENT")
		assert.Contains(t, text, "🔴 HIGH")
		assert.Contains(t, text, "Investigating")
	})

	t.Run("MaintenanceEmergency", func(t *testing.T) {
		msg, err := SystemMaintenanceMessage{
			Channel: "#ops", MaintenanceTitle: "Patch", StartTime: "now", EndTime: "later",
			AffectedSystems: []string{"a", "b"}, ImpactLevel: "high", MaintenanceType: "emergency",
		}.ToMessage()
		require.NoError(t, err)

		text := allBlockText(t, msg)
		assert.Equal(t, "🚨 System Maintenance: Patch", msg.Text)
		assert.Contains(t, text, "🔴 High")
		assert.Contains(t, text, `• a\n• b`)
	})
}
