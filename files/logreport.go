package files

import (
	"encoding/json"
	"fmt"
	"time"

	"incidentflow/core"
	"incidentflow/utils"
)

type LogSummary struct {
	TotalRequests   int     `json:"total_requests"`
	SuccessRate     float64 `json:"success_rate"`
	ErrorCount      int     `json:"error_count"`
	AvgResponseTime float64 `json:"avg_response_time"`
}

type ErrorPattern struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type LogErrors struct {
	Patterns []ErrorPattern `json:"patterns"`
}

type ResponseTimeBucket struct {
	Bucket  string  `json:"bucket"`
	Percent float64 `json:"percent"`
}

type LogPerformance struct {
	Distribution []ResponseTimeBucket `json:"response_time_distribution"`
}

type LogSecurity struct {
	FailedLogins        int `json:"failed_logins"`
	SuspiciousIPs       int `json:"suspicious_ips"`
	RateLimitViolations int `json:"rate_limit_violations"`
}

type logMetadata struct {
	Source      string `json:"source"`
	Period      string `json:"period"`
	GeneratedAt string `json:"generated_at"`
	Format      string `json:"format"`
}

// logReport is the report body shared by every output format. Disabled sections stay nil.
type logReport struct {
	Metadata    logMetadata     `json:"metadata"`
	Summary     LogSummary      `json:"summary"`
	Errors      *LogErrors      `json:"errors,omitempty"`
	Performance *LogPerformance `json:"performance,omitempty"`
	Security    *LogSecurity    `json:"security,omitempty"`

	// display values for the templates
	Source    string `json:"-"`
	Period    string `json:"-"`
	Generated string `json:"-"`
}

// sampleLogReport carries the demo figures the report is rendered with
var sampleLogReport = struct {
	Summary     LogSummary
	Errors      LogErrors
	Performance LogPerformance
	Security    LogSecurity
}{
	Summary: LogSummary{TotalRequests: 15847, SuccessRate: 98.2, ErrorCount: 287, AvgResponseTime: 1.2},
	Errors: LogErrors{Patterns: []ErrorPattern{
		{Type: "500 Internal Server Error", Count: 145},
		{Type: "404 Not Found", Count: 98},
		{Type: "Connection timeout", Count: 44},
	}},
	Performance: LogPerformance{Distribution: []ResponseTimeBucket{
		{Bucket: "< 1s", Percent: 85.2},
		{Bucket: "1-3s", Percent: 12.8},
		{Bucket: "3-5s", Percent: 1.7},
		{Bucket: "> 5s", Percent: 0.3},
	}},
	Security: LogSecurity{FailedLogins: 23, SuspiciousIPs: 7, RateLimitViolations: 12},
}

// LogAnalysisReport renders a log analysis report as html, markdown or json
type LogAnalysisReport struct {
	LogSource      string `validate:"required"`
	AnalysisPeriod string `validate:"required"`
	// Section toggles; nil means included
	IncludeErrors      *bool
	IncludePerformance *bool
	IncludeSecurity    *bool
	// OutputFormat defaults to html
	OutputFormat string `validate:"omitempty,oneof=html markdown json"`
	GeneratedAt  time.Time
}

func enabled(b *bool) bool {
	return b == nil || *b
}

func (r LogAnalysisReport) report() logReport {
	generated := timeOr(r.GeneratedAt).Format("2006-01-02 15:04:05")
	rep := logReport{
		Metadata: logMetadata{
			Source:      r.LogSource,
			Period:      r.AnalysisPeriod,
			GeneratedAt: generated,
			Format:      "json",
		},
		Summary:   sampleLogReport.Summary,
		Source:    utils.TitleCase(r.LogSource),
		Period:    utils.TitleCase(r.AnalysisPeriod),
		Generated: generated,
	}
	if enabled(r.IncludeErrors) {
		errs := sampleLogReport.Errors
		rep.Errors = &errs
	}
	if enabled(r.IncludePerformance) {
		perf := sampleLogReport.Performance
		rep.Performance = &perf
	}
	if enabled(r.IncludeSecurity) {
		sec := sampleLogReport.Security
		rep.Security = &sec
	}
	return rep
}

func (r LogAnalysisReport) Files() ([]File, error) {
	if err := core.ValidateModel(r); err != nil {
		return nil, err
	}

	format := valueOr(r.OutputFormat, "html")
	rep := r.report()

	var (
		content string
		err     error
	)
	switch format {
	case "markdown":
		content, err = renderText("log_report.md.tmpl", rep)
	case "json":
		var out []byte
		out, err = json.MarshalIndent(map[string]logReport{"report": rep}, "", "  ")
		content = string(out) + "\n"
	default:
		content, err = renderHTML("log_report.html.tmpl", rep)
	}
	if err != nil {
		return nil, err
	}

	return []File{{
		Destination: fmt.Sprintf("log_analysis_report_%s_%s.%s", r.LogSource, r.AnalysisPeriod, format),
		Content:     content,
	}}, nil
}

func (r LogAnalysisReport) Command() (string, error) {
	fs, err := r.Files()
	if err != nil {
		return "", err
	}
	return WriteCommand(fs[0], Preview{
		Heading: "🔍 GENERATING LOG ANALYSIS REPORT",
		Details: []string{
			"Source: " + r.LogSource,
			"Period: " + r.AnalysisPeriod,
			"Format: " + valueOr(r.OutputFormat, "html"),
		},
		Action:  "📊 Creating log analysis report...",
		Subject: "Log analysis report",
	}), nil
}
