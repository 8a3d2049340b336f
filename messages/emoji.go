package messages

import (
	"strings"
)

// SeverityEmoji maps an incident severity to its traffic-light marker
func SeverityEmoji(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	case "low":
		return "🟢"
	default:
		return "⚪"
	}
}

func impactEmoji(level string) string {
	switch level {
	case "high":
		return "🔴"
	case "medium":
		return "🟠"
	default:
		return "🟡"
	}
}

func resolutionEmoji(status string) string {
	switch status {
	case "mitigated":
		return "⚠️"
	case "investigating":
		return "🔍"
	default:
		return "✅"
	}
}

func deploymentEmoji(status string) string {
	switch status {
	case "success":
		return "✅"
	case "failed":
		return "❌"
	default:
		return "🔄"
	}
}

func resourceEmoji(resource string) string {
	switch resource {
	case "cpu":
		return "🔥"
	case "memory":
		return "🧠"
	case "disk":
		return "💾"
	case "network":
		return "🌐"
	default:
		return "⚠️"
	}
}

func securitySeverityEmoji(severity string) string {
	switch severity {
	case "low":
		return "🟡"
	case "medium":
		return "🟠"
	case "critical":
		return "🚨"
	default:
		return "🔴"
	}
}

func securityTypeEmoji(incidentType string) string {
	switch incidentType {
	case "data_breach":
		return "🛡️"
	case "malware":
		return "🦠"
	case "unauthorized_access":
		return "🔓"
	default:
		return "⚠️"
	}
}

// bulletList renders items as a Slack bullet list
func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item)
	}
	return strings.Join(lines, "\n")
}
