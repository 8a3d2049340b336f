package messages

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/slack-go/slack"

	"incidentflow/blocks"
	"incidentflow/core"
	"incidentflow/utils"
)

// CopilotActionID is the block action that hands the Co-Pilot prompt to the incident agent
const CopilotActionID = "agent.process_message_1"

// MaxButtonValue is Slack's limit on a button's value payload
const MaxButtonValue = 2000

const (
	defaultValidatorAgent      = "incident-service-validator-TEMPLATE"
	defaultValidatorToolsCount = 5
	defaultInvestigationAgent  = "test-workflow"
	defaultInvestigationRetry  = "3"
	investigationStartColor    = "#ff9900"
)

// ValidationFailureMessage announces that a validator agent was created because affected services are missing
type ValidationFailureMessage struct {
	IncidentTitle    string `validate:"required"`
	IncidentID       string `validate:"required"`
	IncidentSeverity string `validate:"required"`
	Channel          string `validate:"required"`
	AgentName        string
	ToolsCount       int
}

func (m ValidationFailureMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	agentName := m.AgentName
	if agentName == "" {
		agentName = defaultValidatorAgent
	}
	toolsCount := m.ToolsCount
	if toolsCount == 0 {
		toolsCount = defaultValidatorToolsCount
	}

	return build(&Message{
		Channel: m.Channel,
		Text:    "🔍 Service Validation Agent Created",
		Blocks: []slack.Block{
			blocks.Header("🔍 Service Validation Agent Created"),
			blocks.Fields(
				"*Incident:*\n"+m.IncidentTitle,
				"*ID:*\n"+m.IncidentID,
				"*Severity:*\n"+m.IncidentSeverity,
				"*Agent:*\n"+agentName,
			),
			blocks.Section(fmt.Sprintf("*Available Tools:* %d Kubernetes investigation tools", toolsCount)),
			blocks.Section("The agent will help discover and validate affected services. Please provide the list of affected services when available."),
		},
	})
}

// CopilotButtonValue is the JSON carried by the Co-Pilot button
type CopilotButtonValue struct {
	AgentUUID string `json:"agent_uuid"`
	Message   string `json:"message"`
}

// DefaultCopilotPrompt is the Co-Pilot question used when the alert carries none
func DefaultCopilotPrompt(incidentID, incidentTitle string) string {
	return fmt.Sprintf("Help me investigate incident %s: %s", incidentID, incidentTitle)
}

// EncodeCopilotValue serialises the button payload, trimming the prompt to fit Slack's value limit
func EncodeCopilotValue(agentUUID, prompt string) (string, error) {
	value := CopilotButtonValue{AgentUUID: agentUUID, Message: prompt}
	for {
		data, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("failed to encode co-pilot value: %w", err)
		}
		if len(data) <= MaxButtonValue {
			return string(data), nil
		}
		runes := []rune(value.Message)
		excess := len(data) - MaxButtonValue + len("...")
		cut, removed := 0, 0
		for cut < len(runes) && removed < excess {
			removed += utf8.RuneLen(runes[len(runes)-1-cut])
			cut++
		}
		if cut >= len(runes) {
			return "", fmt.Errorf("%w: co-pilot value exceeds %d bytes", core.ErrInvalidModel, MaxButtonValue)
		}
		value.Message = string(runes[:len(runes)-cut]) + "..."
	}
}

// DecodeCopilotValue parses the payload of a Co-Pilot button click
func DecodeCopilotValue(raw string) (*CopilotButtonValue, error) {
	var value CopilotButtonValue
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("failed to decode co-pilot value: %w", err)
	}
	if value.AgentUUID == "" || value.Message == "" {
		return nil, fmt.Errorf("%w: co-pilot value is missing agent_uuid or message", core.ErrInvalidModel)
	}
	return &value, nil
}

// PostIncidentAlertMessage is the red incident banner with dashboard and Co-Pilot buttons
type PostIncidentAlertMessage struct {
	IncidentTitle    string `validate:"required"`
	IncidentID       string `validate:"required"`
	IncidentSeverity string `validate:"required"`
	IncidentPriority string `validate:"required"`
	AffectedServices string
	IncidentBody     string
	IncidentURL      string `validate:"required"`
	AgentUUID        string `validate:"required"`
	Channel          string `validate:"required"`
	CopilotPrompt    string
	// CopilotValue replaces the encoded button value, e.g. with a ${COPILOT_VALUE} built in the shell
	CopilotValue string
	// SeverityEmoji overrides the emoji derived from IncidentSeverity, e.g. with a ${SEVERITY_EMOJI} placeholder
	SeverityEmoji string
}

func (m PostIncidentAlertMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	severityEmoji := m.SeverityEmoji
	if severityEmoji == "" {
		severityEmoji = SeverityEmoji(m.IncidentSeverity)
	}

	copilotValue := m.CopilotValue
	if copilotValue == "" {
		copilotPrompt := m.CopilotPrompt
		if copilotPrompt == "" {
			copilotPrompt = DefaultCopilotPrompt(m.IncidentID, m.IncidentTitle)
		}
		var err error
		if copilotValue, err = EncodeCopilotValue(m.AgentUUID, copilotPrompt); err != nil {
			return nil, err
		}
	}

	affectedServices := m.AffectedServices
	if strings.TrimSpace(affectedServices) == "" {
		affectedServices = "_pending validation_"
	}
	description := m.IncidentBody
	if strings.TrimSpace(description) == "" {
		description = "_No description provided_"
	}

	return build(&Message{
		Channel: m.Channel,
		Text:    "🚨 INCIDENT: " + m.IncidentTitle,
		Attachments: []Attachment{
			{
				Color: blocks.ColorDanger,
				Blocks: []slack.Block{
					blocks.Header("🚨 PRODUCTION INCIDENT ALERT"),
					blocks.Section(fmt.Sprintf("*%s*", m.IncidentTitle)),
					blocks.Divider(),
					blocks.Fields(
						"*🆔 ID:*\n"+m.IncidentID,
						fmt.Sprintf("*🔥 Severity:*\n%s %s", severityEmoji, m.IncidentSeverity),
						"*⚡ Priority:*\n"+m.IncidentPriority,
						"*🎯 Services:*\n"+affectedServices,
					),
					blocks.Section("*📝 Description:*\n" + description),
					blocks.Actions(
						blocks.Styled(blocks.LinkButton("📊 Dashboard", m.IncidentURL), slack.StylePrimary),
						blocks.Styled(blocks.ActionButton("🤖 Co-Pilot Mode", CopilotActionID, copilotValue), slack.StylePrimary),
					),
				},
			},
		},
	})
}

// InvestigationStartMessage tells the channel the AI investigation has begun
type InvestigationStartMessage struct {
	Channel              string `validate:"required"`
	InvestigationAgent   string
	InvestigationTimeout string `validate:"required"`
	MaxRetries           string
}

func (m InvestigationStartMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	agent := m.InvestigationAgent
	if agent == "" {
		agent = defaultInvestigationAgent
	}
	retries := m.MaxRetries
	if retries == "" {
		retries = defaultInvestigationRetry
	}

	return build(&Message{
		Channel: m.Channel,
		Text:    "🔍 AI Investigation Starting",
		Attachments: []Attachment{
			{
				Color: investigationStartColor,
				Blocks: []slack.Block{
					blocks.Header("🔍 AI INVESTIGATION STARTING"),
					blocks.Fields(
						"*Agent:*\n"+agent,
						fmt.Sprintf("*Timeout:*\n%ss", m.InvestigationTimeout),
						"*Retries:*\n"+retries,
					),
					blocks.Section("AI agent is now investigating the incident. Results will be posted here when complete."),
				},
			},
		},
	})
}

// InvestigationProgressMessage is posted while the regional investigations run
type InvestigationProgressMessage struct {
	Channel          string `validate:"required"`
	IncidentID       string `validate:"required"`
	IncidentTitle    string `validate:"required"`
	IncidentSeverity string `validate:"required"`
	AffectedServices string
	TimeoutMinutes   string `validate:"required"`
}

func (m InvestigationProgressMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	services := m.AffectedServices
	if strings.TrimSpace(services) == "" {
		services = "_pending validation_"
	}

	return build(&Message{
		Channel: m.Channel,
		Text:    "📊 Investigation in progress: " + m.IncidentTitle,
		Attachments: []Attachment{
			{
				Color: blocks.ColorWarning,
				Blocks: []slack.Block{
					blocks.Header("📊 INVESTIGATION IN PROGRESS"),
					blocks.Section(fmt.Sprintf("*%s*", m.IncidentTitle)),
					blocks.Fields(
						"*🆔 ID:*\n"+m.IncidentID,
						fmt.Sprintf("*🔥 Severity:*\n%s %s", SeverityEmoji(m.IncidentSeverity), m.IncidentSeverity),
						"*🎯 Services:*\n"+services,
						fmt.Sprintf("*⏱️ Timeout:*\n~%s minutes", m.TimeoutMinutes),
					),
					blocks.Section("🇺🇸 NA and 🇪🇺 EU cluster investigations are running in parallel. Reports will be attached to this channel when complete."),
					blocks.Context("Powered by the incident response workflow"),
				},
			},
		},
	})
}

// InvestigationResultsMessage carries the executive TL;DR and links to the uploaded reports
type InvestigationResultsMessage struct {
	Channel          string `validate:"required"`
	IncidentID       string `validate:"required"`
	IncidentTitle    string `validate:"required"`
	IncidentSeverity string `validate:"required"`
	SeverityEmoji    string
	AffectedServices string
	Summary          string
	FileLinks        []string
	Timestamp        string `validate:"required"`
}

// NoFilesUploaded replaces the report links when every upload failed
const NoFilesUploaded = "No files uploaded"

func (m InvestigationResultsMessage) ToMessage() (*Message, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}

	severityEmoji := m.SeverityEmoji
	if severityEmoji == "" {
		severityEmoji = SeverityEmoji(m.IncidentSeverity)
	}
	summary := m.Summary
	if strings.TrimSpace(summary) == "" {
		summary = DefaultSummary
	}
	affectedServices := m.AffectedServices
	if strings.TrimSpace(affectedServices) == "" {
		affectedServices = "_pending validation_"
	}
	links := NoFilesUploaded
	if len(m.FileLinks) > 0 {
		links = strings.Join(m.FileLinks, "\n")
	}

	return build(&Message{
		Channel: m.Channel,
		Text:    fmt.Sprintf("✅ Investigation complete: %s", m.IncidentTitle),
		Attachments: []Attachment{
			{
				Color: blocks.ColorGood,
				Blocks: []slack.Block{
					blocks.Header("✅ INVESTIGATION COMPLETE"),
					blocks.Section(fmt.Sprintf("*%s*", m.IncidentTitle)),
					blocks.Fields(
						"*🆔 ID:*\n"+m.IncidentID,
						fmt.Sprintf("*🔥 Severity:*\n%s %s", severityEmoji, m.IncidentSeverity),
						"*🎯 Services:*\n"+affectedServices,
					),
					blocks.Divider(),
					blocks.Section("*📋 TL;DR:*\n" + utils.ConvertMarkdownToSlack(summary)),
					blocks.Section("*📎 Reports:*\n" + links),
					blocks.Context("Completed at " + m.Timestamp),
				},
			},
		},
	})
}

// DefaultSummary is used when the executive summary could not be parsed
const DefaultSummary = "Investigation complete - see detailed reports"
