package prompts

import (
	"fmt"
	"strings"

	"incidentflow/core"
	"incidentflow/utils"
)

var defaultReviewFocus = []string{"security", "performance", "maintainability"}

type CodeReview struct {
	Language           string `validate:"required"`
	CodeSnippet        string `validate:"required"`
	ReviewFocus        []string
	IncludeSuggestions bool
}

func (p CodeReview) Prompt() (string, error) {
	if err := core.ValidateModel(p); err != nil {
		return "", err
	}

	focus := p.ReviewFocus
	if len(focus) == 0 {
		focus = defaultReviewFocus
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert code reviewer specializing in %s. Please review the following code snippet with focus on: %s.\n\n", p.Language, strings.Join(focus, ", "))
	sb.WriteString("Code to review:\n")
	fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", p.Language, p.CodeSnippet)
	sb.WriteString(lines(
		"Please provide a comprehensive review covering:",
		"1. **Security Issues**: Identify potential vulnerabilities, input validation issues, and security anti-patterns",
		"2. **Performance**: Analyze algorithmic complexity, resource usage, and optimization opportunities",
		"3. **Maintainability**: Check code clarity, documentation, naming conventions, and adherence to best practices",
		"4. **Bugs and Logic Issues**: Identify potential runtime errors, edge cases, and logical flaws",
	))
	if p.IncludeSuggestions {
		sb.WriteString("\n5. **Improvement Suggestions**: Provide specific, actionable recommendations with code examples")
	}
	sb.WriteString("\n\nFormat your response with clear sections and use specific line references when applicable. ")
	sb.WriteString("Rate each area from 1-5 (5 being excellent) and provide an overall assessment.")
	return sb.String(), nil
}

var urgencyContext = map[string]string{
	"low":      "This is a low-priority issue that can be resolved during regular maintenance windows.",
	"medium":   "This issue should be resolved within normal business hours.",
	"high":     "This is a high-priority issue requiring prompt attention.",
	"critical": "This is a critical issue requiring immediate resolution to prevent service impact.",
}

type Troubleshooting struct {
	ProblemDescription string `validate:"required"`
	SystemContext      string `validate:"required"`
	ErrorLogs          string
	AffectedComponents []string
	// UrgencyLevel defaults to medium
	UrgencyLevel string `validate:"omitempty,oneof=low medium high critical"`
}

func (p Troubleshooting) Prompt() (string, error) {
	if err := core.ValidateModel(p); err != nil {
		return "", err
	}

	urgency := p.UrgencyLevel
	if urgency == "" {
		urgency = "medium"
	}
	components := "Unknown"
	if len(p.AffectedComponents) > 0 {
		components = strings.Join(p.AffectedComponents, ", ")
	}

	var sb strings.Builder
	sb.WriteString("You are a senior systems engineer conducting systematic troubleshooting.\n\n")
	sb.WriteString(lines(
		"Problem Report:",
		"- Description: "+p.ProblemDescription,
		"- System Context: "+p.SystemContext,
		"- Affected Components: "+components,
		"- Urgency Level: "+utils.TitleCase(urgency),
		"- Priority Context: "+urgencyContext[urgency],
	))
	sb.WriteString("\n\n")
	if p.ErrorLogs != "" {
		fmt.Fprintf(&sb, "Error Logs:\n```\n%s\n```\n\n", p.ErrorLogs)
	}
	sb.WriteString(lines(
		"Please provide a systematic troubleshooting approach:",
		"",
		"1. **Problem Analysis**:",
		"   - Symptom classification and impact assessment",
		"   - Timeline analysis (when did it start, frequency)",
		"   - Scope determination (affected users, systems, functions)",
		"",
		"2. **Initial Hypothesis**:",
		"   - Most likely root causes based on symptoms",
		"   - Risk assessment for each potential cause",
		"   - Dependencies and interconnections to consider",
		"",
		"3. **Diagnostic Steps** (in priority order):",
		"   - Immediate checks to perform",
		"   - Data to collect and logs to examine",
		"   - Tests to run for validation",
		"   - Monitoring points to establish",
		"",
		"4. **Solution Strategy**:",
		"   - Immediate mitigation steps (if critical)",
		"   - Root cause resolution approach",
		"   - Rollback plan if solutions fail",
		"   - Verification steps to confirm resolution",
		"",
		"5. **Prevention Measures**:",
		"   - Process improvements to prevent recurrence",
		"   - Monitoring enhancements",
		"   - Documentation updates needed",
		"",
		fmt.Sprintf("Prioritize solutions based on the %s urgency level and provide clear, actionable steps.", urgency),
	))
	return sb.String(), nil
}

var analysisFocus = map[string]string{
	"exploratory":  "Explore the data to understand its structure, patterns, and relationships. Focus on descriptive statistics and data visualization.",
	"predictive":   "Build predictive models to forecast future outcomes. Focus on feature engineering and model validation.",
	"diagnostic":   "Investigate why certain events occurred. Focus on correlation analysis and root cause identification.",
	"prescriptive": "Recommend actions based on the analysis. Focus on optimization and decision support.",
}

const defaultAnalysisQuestions = "- Identify key patterns and trends\n- Detect anomalies or outliers\n- Provide actionable insights"

type DataAnalysis struct {
	DatasetDescription string `validate:"required"`
	AnalysisType       string `validate:"required,oneof=exploratory predictive diagnostic prescriptive"`
	// DataFormat defaults to csv
	DataFormat   string
	KeyQuestions []string
}

func (p DataAnalysis) Prompt() (string, error) {
	if err := core.ValidateModel(p); err != nil {
		return "", err
	}

	format := p.DataFormat
	if format == "" {
		format = "csv"
	}
	questions := defaultAnalysisQuestions
	if len(p.KeyQuestions) > 0 {
		items := make([]string, 0, len(p.KeyQuestions))
		for _, q := range p.KeyQuestions {
			items = append(items, "- "+q)
		}
		questions = strings.Join(items, "\n")
	}

	return lines(
		fmt.Sprintf("You are a senior data analyst conducting %s data analysis.", p.AnalysisType),
		"",
		"Dataset Description: "+p.DatasetDescription,
		"Data Format: "+strings.ToUpper(format),
		"Analysis Type: "+utils.TitleCase(p.AnalysisType),
		"",
		"Analysis Objectives:",
		questions,
		"",
		"Please perform "+analysisFocus[p.AnalysisType],
		"",
		"Your analysis should include:",
		"1. **Data Understanding**:",
		"   - Dataset structure and dimensions",
		"   - Data types and quality assessment",
		"   - Missing values and data completeness",
		"",
		"2. **Exploratory Analysis**:",
		"   - Descriptive statistics and distributions",
		"   - Correlation analysis between variables",
		"   - Pattern identification and trends",
		"",
		"3. **Key Findings**:",
		"   - Significant insights and patterns",
		"   - Anomalies or unexpected observations",
		"   - Statistical significance of findings",
		"",
		"4. **Visualizations**:",
		"   - Recommend appropriate charts and graphs",
		"   - Explain what each visualization reveals",
		"",
		"5. **Actionable Insights**:",
		"   - Business implications of findings",
		"   - Recommended next steps",
		"   - Potential areas for further investigation",
		"",
		"Provide specific, data-driven recommendations with supporting evidence.",
	), nil
}
