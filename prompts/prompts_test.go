package prompts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentflow/core"
)

func testContext() CopilotContextData {
	return CopilotContextData{
		IncidentID:            "INC-2024-001",
		IncidentTitle:         "Checkout latency spike",
		IncidentSeverity:      "critical",
		AffectedServices:      "checkout,payments",
		DatadogMetricsConfig:  "cpu.usage,memory.usage",
		ObserveSupportedDSIDs: "api-logs,error-logs",
	}
}

func TestCopilotContextData(t *testing.T) {
	t.Run("Success_BuildsAllPrompts", func(t *testing.T) {
		prompts, err := testContext().Build()
		require.NoError(t, err)

		assert.Contains(t, prompts.Copilot, "ID=INC-2024-001, Title='Checkout latency spike', Severity=critical, Services=checkout,payments")
		assert.Contains(t, prompts.DeepDive, "Datadog metrics: cpu.usage,memory.usage and Observe datasets: api-logs,error-logs")
		assert.Contains(t, prompts.ApplyFixes, "kubectl for applying fixes")
		assert.Contains(t, prompts.Monitoring, "tracking recovery")

		vars := prompts.Vars()
		require.Len(t, vars, 6)
		assert.Equal(t, "COPILOT_PROMPT", vars[0][0])
		assert.Equal(t, "EU_FOLLOWUP_PROMPT", vars[5][0])
		for _, v := range vars {
			assert.NotEmpty(t, v[1], v[0])
		}
	})

	t.Run("Success_RegionalFollowupsNameTheirRegion", func(t *testing.T) {
		prompts, err := testContext().Build()
		require.NoError(t, err)

		assert.Contains(t, prompts.NAFollowup, "NA PRODUCTION")
		assert.Contains(t, prompts.NAFollowup, "Region: North America")
		assert.Contains(t, prompts.NAFollowup, "NA-specific logs")

		assert.Contains(t, prompts.EUFollowup, "EU PRODUCTION")
		assert.Contains(t, prompts.EUFollowup, "Region: Europe")
		assert.Contains(t, prompts.EUFollowup, "EU-specific logs")
		assert.Contains(t, prompts.EUFollowup, "the EU cluster")
		assert.NotContains(t, prompts.EUFollowup, "NA")
	})

	t.Run("Error_MissingIncidentID", func(t *testing.T) {
		data := testContext()
		data.IncidentID = ""
		_, err := data.Build()
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidModel))
	})
}

func TestClusterInvestigation(t *testing.T) {
	t.Run("Success_NA", func(t *testing.T) {
		prompt, err := ClusterInvestigation{Region: RegionNA, IncidentID: "INC-1", IncidentTitle: "DB down"}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "the NA Production cluster")
		assert.Contains(t, prompt, "The incident ID is INC-1 and title is 'DB down'.")
		assert.Contains(t, prompt, "- Progress indicators")
	})

	t.Run("Success_TemplatePlaceholdersPassThrough", func(t *testing.T) {
		prompt, err := ClusterInvestigation{Region: RegionEU, IncidentID: "{{.incident_id}}", IncidentTitle: "{{.incident_title}}"}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "the EU Production cluster")
		assert.Contains(t, prompt, "{{.incident_id}}")
	})

	t.Run("Error_UnknownRegion", func(t *testing.T) {
		_, err := ClusterInvestigation{Region: "APAC", IncidentID: "INC-1", IncidentTitle: "DB down"}.Prompt()
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidModel))
	})
}

func TestReportPrompts(t *testing.T) {
	t.Run("Success_CleanInvestigation", func(t *testing.T) {
		prompt, err := CleanInvestigation{Region: RegionEU, Results: "pods crashlooping"}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "Based on the EU cluster investigation results below")
		assert.Contains(t, prompt, "pods crashlooping")
	})

	t.Run("Success_IncidentReport", func(t *testing.T) {
		prompt, err := IncidentReport{
			IncidentID:       "INC-1",
			IncidentTitle:    "DB down",
			IncidentSeverity: "high",
			AffectedServices: "orders",
			CleanedNA:        "na findings",
			CleanedEU:        "eu findings",
		}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "- Affected Services: orders")
		assert.Contains(t, prompt, "NA Cluster Investigation Results:\nna findings")
		assert.Contains(t, prompt, "7. Lessons Learned")
	})

	t.Run("Success_ExecutiveSummaryIncludesSchema", func(t *testing.T) {
		prompt, err := ExecutiveSummary{
			IncidentID:       "INC-1",
			IncidentTitle:    "DB down",
			IncidentSeverity: "high",
			IncidentReport:   "# Report",
		}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, `"slack_summary": "3-5 line summary for Slack notification"`)
		assert.Contains(t, prompt, "Incident: INC-1 - DB down")
	})

	t.Run("Success_FormatSlackReports", func(t *testing.T) {
		prompt, err := FormatSlackReports{CleanedNA: "na", CleanedEU: "eu"}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "3. Cross-Region Impact Analysis")
	})

	t.Run("Error_MissingReport", func(t *testing.T) {
		_, err := ExecutiveSummary{IncidentID: "INC-1", IncidentTitle: "x", IncidentSeverity: "low"}.Prompt()
		var validationErr *core.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, []string{"IncidentReport"}, validationErr.Fields)
	})
}

func TestParseExecutiveSummary(t *testing.T) {
	t.Run("Success_PlainJSON", func(t *testing.T) {
		result, err := ParseExecutiveSummary(`{"tldr":"short","slack_summary":"all good","key_findings":["a","b"]}`)
		require.NoError(t, err)
		assert.Equal(t, "short", result.TLDR)
		assert.Equal(t, "all good", result.SlackSummary)
		assert.Equal(t, []string{"a", "b"}, result.KeyFindings)
	})

	t.Run("Success_FencedWithProse", func(t *testing.T) {
		raw := "Here is the summary:\n```json\n{\n  \"slack_summary\": \"DB failover in progress\",\n  \"incident_status\": \"Mitigated\"\n}\n```\nLet me know if you need more."
		result, err := ParseExecutiveSummary(raw)
		require.NoError(t, err)
		assert.Equal(t, "DB failover in progress", result.SlackSummary)
		assert.Equal(t, "Mitigated", result.IncidentStatus)
	})

	t.Run("Error_NoJSON", func(t *testing.T) {
		_, err := ParseExecutiveSummary("the agent timed out")
		assert.Error(t, err)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		_, err := ParseExecutiveSummary(`{"slack_summary": }`)
		assert.Error(t, err)
	})
}

func TestAnalysisPrompts(t *testing.T) {
	t.Run("Success_CodeReviewDefaults", func(t *testing.T) {
		prompt, err := CodeReview{Language: "go", CodeSnippet: "func main() {}"}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "specializing in go")
		assert.Contains(t, prompt, "focus on: security, performance, maintainability.")
		assert.Contains(t, prompt, "```go\nfunc main() {}\n```")
		assert.NotContains(t, prompt, "Improvement Suggestions")
	})

	t.Run("Success_CodeReviewSuggestions", func(t *testing.T) {
		prompt, err := CodeReview{Language: "python", CodeSnippet: "x = 1", ReviewFocus: []string{"security"}, IncludeSuggestions: true}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "focus on: security.")
		assert.Contains(t, prompt, "5. **Improvement Suggestions**")
	})

	t.Run("Success_TroubleshootingDefaultsToMedium", func(t *testing.T) {
		prompt, err := Troubleshooting{ProblemDescription: "API 500s", SystemContext: "k8s"}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "- Urgency Level: Medium")
		assert.Contains(t, prompt, "- Affected Components: Unknown")
		assert.Contains(t, prompt, "within normal business hours")
		assert.NotContains(t, prompt, "Error Logs:")
	})

	t.Run("Success_TroubleshootingWithLogs", func(t *testing.T) {
		prompt, err := Troubleshooting{
			ProblemDescription: "API 500s",
			SystemContext:      "k8s",
			ErrorLogs:          "panic: nil map",
			AffectedComponents: []string{"api", "db"},
			UrgencyLevel:       "critical",
		}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "Error Logs:\n```\npanic: nil map\n```")
		assert.Contains(t, prompt, "- Affected Components: api, db")
		assert.Contains(t, prompt, "based on the critical urgency level")
	})

	t.Run("Error_TroubleshootingUnknownUrgency", func(t *testing.T) {
		_, err := Troubleshooting{ProblemDescription: "x", SystemContext: "y", UrgencyLevel: "urgent"}.Prompt()
		assert.True(t, errors.Is(err, core.ErrInvalidModel))
	})

	t.Run("Success_DataAnalysis", func(t *testing.T) {
		prompt, err := DataAnalysis{DatasetDescription: "checkout events", AnalysisType: "diagnostic", KeyQuestions: []string{"Why did errors spike?"}}.Prompt()
		require.NoError(t, err)
		assert.Contains(t, prompt, "Data Format: CSV")
		assert.Contains(t, prompt, "Analysis Type: Diagnostic")
		assert.Contains(t, prompt, "- Why did errors spike?")
		assert.Contains(t, prompt, "root cause identification")
	})

	t.Run("Error_DataAnalysisUnknownType", func(t *testing.T) {
		_, err := DataAnalysis{DatasetDescription: "x", AnalysisType: "magic"}.Prompt()
		assert.True(t, errors.Is(err, core.ErrInvalidModel))
	})
}
