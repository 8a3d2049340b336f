package messages

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/slack-go/slack"

	"incidentflow/blocks"
	"incidentflow/core"
	"incidentflow/utils"
)

type SystemMaintenanceMessage struct {
	Channel          string   `validate:"required"`
	MaintenanceTitle string   `validate:"required"`
	StartTime        string   `validate:"required"`
	EndTime          string   `validate:"required"`
	AffectedSystems  []string `validate:"required,min=1"`
	ImpactLevel      string   `validate:"omitempty,oneof=low medium high"`
	MaintenanceType  string   `validate:"omitempty,oneof=scheduled emergency"`
}

func (m SystemMaintenanceMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	impact := valueOr(m.ImpactLevel, "medium")
	maintenanceType := valueOr(m.MaintenanceType, "scheduled")
	typeEmoji := "🔧"
	if maintenanceType == "emergency" {
		typeEmoji = "🚨"
	}

	return build(&Message{
		Channel: m.Channel,
		Text:    fmt.Sprintf("%s System Maintenance: %s", typeEmoji, m.MaintenanceTitle),
		Blocks: []slack.Block{
			blocks.Header(typeEmoji + " SYSTEM MAINTENANCE"),
			blocks.Section(fmt.Sprintf("*%s*", m.MaintenanceTitle)),
			blocks.Fields(
				"*Start:*\n"+m.StartTime,
				"*End:*\n"+m.EndTime,
				fmt.Sprintf("*Impact:*\n%s %s", impactEmoji(impact), utils.TitleCase(impact)),
				"*Type:*\n"+utils.TitleCase(maintenanceType),
			),
			blocks.Section("*Affected Systems:*\n" + bulletList(m.AffectedSystems)),
		},
	})
}

type AlertResolutionMessage struct {
	Channel          string   `validate:"required"`
	AlertID          string   `validate:"required"`
	AlertTitle       string   `validate:"required"`
	ResolutionStatus string   `validate:"omitempty,oneof=resolved mitigated investigating"`
	ResolutionTime   string   `validate:"required"`
	RootCause        string   `validate:"required"`
	ActionsTaken     []string `validate:"required,min=1"`
}

func (m AlertResolutionMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	status := valueOr(m.ResolutionStatus, "resolved")
	emoji := resolutionEmoji(status)

	return build(&Message{
		Channel: m.Channel,
		Text:    "✅ Alert Resolved: " + m.AlertTitle,
		Blocks: []slack.Block{
			blocks.Header(fmt.Sprintf("%s ALERT %s", emoji, strings.ToUpper(status))),
			blocks.Fields(
				"*Alert ID:*\n"+m.AlertID,
				fmt.Sprintf("*Status:*\n%s %s", emoji, utils.TitleCase(status)),
				"*Title:*\n"+m.AlertTitle,
				"*Resolved:*\n"+m.ResolutionTime,
			),
			blocks.Section("*Root Cause:*\n" + m.RootCause),
			blocks.Section("*Actions Taken:*\n" + bulletList(m.ActionsTaken)),
		},
	})
}

// Block actions attached to deployment and security notifications
const (
	RollbackActionID         = "deployment.rollback"
	ViewLogsActionID         = "deployment.view_logs"
	IncidentResponseActionID = "security.incident_response"
	ViewDetailsActionID      = "security.view_details"
)

type DeploymentStatusMessage struct {
	Channel      string `validate:"required"`
	DeploymentID string `validate:"required"`
	ServiceName  string `validate:"required"`
	Environment  string `validate:"required"`
	Version      string `validate:"required"`
	Status       string `validate:"omitempty,oneof=success failed in_progress"`
	DeployTime   string `validate:"required"`
}

func (m DeploymentStatusMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	status := valueOr(m.Status, "success")
	emoji := deploymentEmoji(status)

	blockSet := []slack.Block{
		blocks.Header(fmt.Sprintf("%s DEPLOYMENT %s", emoji, strings.ToUpper(status))),
		blocks.Fields(
			"*Service:*\n"+m.ServiceName,
			"*Environment:*\n"+m.Environment,
			"*Version:*\n"+m.Version,
			fmt.Sprintf("*Status:*\n%s %s", emoji, utils.TitleCase(status)),
		),
		blocks.Section(fmt.Sprintf("*Deployment ID:* %s\n*Time:* %s", m.DeploymentID, m.DeployTime)),
	}
	if status == "failed" {
		blockSet = append(blockSet, blocks.Actions(
			blocks.Styled(blocks.ActionButton("🔄 Rollback", RollbackActionID, m.DeploymentID), slack.StyleDanger),
			blocks.Styled(blocks.ActionButton("📋 View Logs", ViewLogsActionID, m.DeploymentID), slack.StylePrimary),
		))
	}

	return build(&Message{
		Channel: m.Channel,
		Text:    fmt.Sprintf("%s Deployment %s: %s", emoji, status, m.ServiceName),
		Blocks:  blockSet,
	})
}

// CapacityWarningMessage takes usage and threshold as strings so workflow placeholders pass through
type CapacityWarningMessage struct {
	Channel           string   `validate:"required"`
	ResourceType      string   `validate:"required"`
	CurrentUsage      string   `validate:"required"`
	Threshold         string   `validate:"required"`
	AffectedServices  []string `validate:"required,min=1"`
	RecommendedAction string   `validate:"required"`
}

func (m CapacityWarningMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	return build(&Message{
		Channel: m.Channel,
		Text:    "⚠️ Capacity Warning: " + strings.ToUpper(m.ResourceType),
		Blocks: []slack.Block{
			blocks.Header(resourceEmoji(m.ResourceType) + " CAPACITY WARNING"),
			blocks.Fields(
				"*Resource:*\n"+utils.TitleCase(m.ResourceType),
				"*Current Usage:*\n"+FormatPercent(m.CurrentUsage),
				"*Threshold:*\n"+FormatPercent(m.Threshold),
				"*Status:*\n⚠️ Above Threshold",
			),
			blocks.Section("*Affected Services:*\n" + bulletList(m.AffectedServices)),
			blocks.Section("*Recommended Action:*\n" + m.RecommendedAction),
		},
	})
}

// FormatPercent renders numeric values with one decimal place and passes anything else through
func FormatPercent(value string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return value + "%"
	}
	return d.StringFixed(1) + "%"
}

type SecurityIncidentMessage struct {
	Channel         string   `validate:"required"`
	IncidentID      string   `validate:"required"`
	IncidentType    string   `validate:"required"`
	Severity        string   `validate:"omitempty,oneof=low medium high critical"`
	AffectedSystems []string `validate:"required,min=1"`
	Status          string   `validate:"omitempty,oneof=investigating contained resolved"`
}

func (m SecurityIncidentMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	severity := valueOr(m.Severity, "high")
	status := valueOr(m.Status, "investigating")

	return build(&Message{
		Channel: m.Channel,
		Text:    "🚨 Security Incident: " + m.IncidentID,
		Blocks: []slack.Block{
			blocks.Header(securityTypeEmoji(m.IncidentType) + " SECURITY INCIDENT"),
			blocks.Fields(
				"*Incident ID:*\n"+m.IncidentID,
				"*Type:*\n"+utils.TitleCase(m.IncidentType),
				fmt.Sprintf("*Severity:*\n%s %s", securitySeverityEmoji(severity), strings.ToUpper(severity)),
				"*Status:*\n"+utils.TitleCase(status),
			),
			blocks.Section("*Affected Systems:*\n" + bulletList(m.AffectedSystems)),
			blocks.Actions(
				blocks.Styled(blocks.ActionButton("🔒 Incident Response", IncidentResponseActionID, m.IncidentID), slack.StyleDanger),
				blocks.Styled(blocks.ActionButton("📋 View Details", ViewDetailsActionID, m.IncidentID), slack.StylePrimary),
			),
		},
	})
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
