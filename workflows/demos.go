package workflows

import (
	"incidentflow/tools"
	"incidentflow/workflow"
)

// URLValidation validates a URL and checks that it is reachable
func URLValidation() (*workflow.Workflow, error) {
	return workflow.New("url_validation_workflow").
		Description("Validate URLs and check their connectivity").
		Params(map[string]string{"target_url": "https://example.com"}).
		Step("validate_url", func(s *workflow.StepBuilder) {
			s.Description("Validate URL format using custom tool").
				Tool(tools.URLValidator).
				Args(map[string]string{"url": "${target_url}"}).
				Output("validation_result")
		}).
		Step("echo_validation", func(s *workflow.StepBuilder) {
			s.Description("Echo validation completion message").
				Shell(`echo "URL validation completed for: ${target_url}"`)
		}).
		Step("check_connectivity", func(s *workflow.StepBuilder) {
			s.Description("Check network connectivity using custom shell tool").
				Tool(tools.NetworkChecker).
				Args(map[string]string{"target": "${target_url}"}).
				Output("connectivity_result")
		}).
		Step("generate_summary", func(s *workflow.StepBuilder) {
			s.Description("Generate comprehensive analysis summary").
				Shell(`echo "=== URL Analysis Summary ==="
echo "Target URL: ${target_url}"
echo "Validation: ${validation_result}"
echo "Connectivity: ${connectivity_result}"
echo "Analysis completed at: $(date)"`).
				Depends("validate_url", "check_connectivity")
		}).
		Build()
}

// TextProcessing runs a piece of text through several analysis stages
func TextProcessing() (*workflow.Workflow, error) {
	return workflow.New("text_processing_workflow").
		Description("Process and analyze text content through multiple stages").
		Params(map[string]string{"input_text": "Hello world! This is a sample text for analysis."}).
		Step("prepare_text", func(s *workflow.StepBuilder) {
			s.Description("Prepare text for analysis").
				Shell(`echo "Preparing text for analysis..." && echo "${input_text}" > /tmp/text_input.txt`).
				Output("prepared")
		}).
		Step("analyze_text", func(s *workflow.StepBuilder) {
			s.Description("Analyze text using custom tool").
				Tool(tools.TextAnalyzer).
				Args(map[string]string{"text": "${input_text}"}).
				Output("analysis_result").
				Depends("prepare_text")
		}).
		Step("count_characters", func(s *workflow.StepBuilder) {
			s.Description("Count characters using shell").
				Shell(`echo "Character count: $(echo -n "${input_text}" | wc -c)"`).
				Output("char_count").
				Depends("prepare_text")
		}).
		Step("extract_unique_words", func(s *workflow.StepBuilder) {
			s.Description("Extract unique words using shell").
				Shell(`echo "${input_text}" | tr ' ' '\n' | tr '[:upper:]' '[:lower:]' | sort | uniq | head -10`).
				Output("unique_words").
				Depends("prepare_text")
		}).
		Step("generate_report", func(s *workflow.StepBuilder) {
			s.Description("Generate final text processing report").
				Shell(`echo "=== Text Processing Report ==="
echo "Original text length: ${char_count}"
echo ""
echo "Analysis Results:"
echo "${analysis_result}"
echo ""
echo "Top unique words:"
echo "${unique_words}"
echo ""
echo "Report generated at: $(date)"`).
				Depends("analyze_text", "count_characters", "extract_unique_words")
		}).
		Build()
}

// SystemMonitoring collects host status and summarises a block of log lines
func SystemMonitoring() (*workflow.Workflow, error) {
	return workflow.New("system_monitoring_workflow").
		Description("Monitor system status and analyze log data").
		Params(map[string]string{
			"log_data": "2024-01-01 10:00:00 [INFO] System started\n2024-01-01 10:01:00 [ERROR] Connection failed",
		}).
		Step("get_system_info", func(s *workflow.StepBuilder) {
			s.Description("Get system information using custom shell tool").
				Tool(tools.SystemInfo).
				Output("system_status")
		}).
		Step("check_disk_space", func(s *workflow.StepBuilder) {
			s.Description("Check disk space using shell").
				Shell(`df -h | grep -E "^/dev" | head -5`).
				Output("disk_info")
		}).
		Step("check_processes", func(s *workflow.StepBuilder) {
			s.Description("Check current processes").
				Shell(`ps aux | head -10`).
				Output("process_list")
		}).
		Step("analyze_logs", func(s *workflow.StepBuilder) {
			s.Description("Analyze logs using custom shell tool").
				Tool(tools.LogAnalyzer).
				Args(map[string]string{"logs": "${log_data}", "analysis_type": "summary"}).
				Output("log_summary")
		}).
		Step("check_log_errors", func(s *workflow.StepBuilder) {
			s.Description("Check for errors in logs").
				Tool(tools.LogAnalyzer).
				Args(map[string]string{"logs": "${log_data}", "analysis_type": "errors"}).
				Output("error_summary").
				Depends("analyze_logs")
		}).
		Step("create_monitoring_report", func(s *workflow.StepBuilder) {
			s.Description("Create comprehensive monitoring report").
				Shell(`echo "=== System Monitoring Report ==="
echo "Timestamp: $(date)"
echo ""
echo "=== System Status ==="
echo "${system_status}"
echo ""
echo "=== Disk Usage ==="
echo "${disk_info}"
echo ""
echo "=== Running Processes (Top 10) ==="
echo "${process_list}"
echo ""
echo "=== Log Analysis ==="
echo "${log_summary}"
echo ""
echo "=== Error Summary ==="
echo "${error_summary}"
echo ""
echo "=== End of Report ==="`).
				Depends("get_system_info", "check_disk_space", "check_processes", "check_log_errors")
		}).
		Step("cleanup", func(s *workflow.StepBuilder) {
			s.Description("Cleanup temporary files").
				Shell(`echo "Monitoring workflow completed successfully" && rm -f /tmp/monitoring_*`).
				Depends("create_monitoring_report")
		}).
		Build()
}
