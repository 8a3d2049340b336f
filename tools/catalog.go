package tools

// CustomToolsCollection is the collection the catalogue registers into
const CustomToolsCollection = "custom_tools"

var (
	JSONProcessor = Tool{
		Name:        "json_processor",
		Description: "Process and validate JSON data using shell commands",
		Type:        "docker",
		Image:       "python:3.11-slim",
		Content:     script("json_processor"),
		Args: []Arg{
			{Name: "json_data", Type: "str", Description: "JSON data to process", Required: true},
			{Name: "operation", Type: "str", Description: "Operation: validate, pretty, minify", Default: "validate"},
		},
	}

	TextAnalyzer = Tool{
		Name:        "text_analyzer",
		Description: "Analyze text content and provide statistics",
		Type:        "docker",
		Image:       "python:3.12",
		Content:     script("text_analyzer"),
		Args: []Arg{
			{Name: "text", Type: "str", Description: "Text to analyze", Required: true},
		},
	}

	MathCalculator = Tool{
		Name:        "math_calculator",
		Description: "Perform mathematical calculations",
		Type:        "docker",
		Image:       "python:3.9",
		Content:     script("math_calculator"),
		Args: []Arg{
			{Name: "expression", Type: "str", Description: "Mathematical expression (e.g., '2+2', 'sqrt(16)')", Required: true},
		},
	}

	URLValidator = Tool{
		Name:        "url_validator",
		Description: "Simple URL format validation",
		Type:        "docker",
		Image:       "alpine:latest",
		Content:     script("url_validator"),
		Args: []Arg{
			{Name: "url", Type: "str", Description: "URL to validate", Required: true},
		},
	}

	// DataConverter shells out to python3, so it runs on a python image
	DataConverter = Tool{
		Name:        "data_converter",
		Description: "Convert data between different formats",
		Type:        "docker",
		Image:       "python:3.11-slim",
		Content:     script("data_converter"),
		Args: []Arg{
			{Name: "data", Type: "str", Description: "Data to convert", Required: true},
			{Name: "from_format", Type: "str", Description: "Source format: json, csv", Required: true},
			{Name: "to_format", Type: "str", Description: "Target format: json, csv", Required: true},
		},
	}

	SystemInfo = Tool{
		Name:        "system_info",
		Description: "Get basic system information",
		Type:        "docker",
		Image:       "alpine:latest",
		Content:     script("system_info"),
		Args:        []Arg{},
	}

	NetworkChecker = Tool{
		Name:        "network_checker",
		Description: "Check network connectivity",
		Type:        "docker",
		Image:       "curlimages/curl:latest",
		Content:     script("network_checker"),
		Args: []Arg{
			{Name: "target", Type: "str", Description: "URL or hostname to check", Required: true},
		},
	}

	FileOperations = Tool{
		Name:        "file_operations",
		Description: "Perform file operations",
		Type:        "docker",
		Image:       "busybox:latest",
		Content:     script("file_operations"),
		Args: []Arg{
			{Name: "operation", Type: "str", Description: "Operation: create, count, search", Required: true},
			{Name: "content", Type: "str", Description: "Content to process", Required: true},
			{Name: "pattern", Type: "str", Description: "Search pattern (for search operation)"},
		},
	}

	TextProcessor = Tool{
		Name:        "text_processor",
		Description: "Advanced text processing",
		Type:        "docker",
		Image:       "debian:bullseye-slim",
		Content:     script("text_processor"),
		Args: []Arg{
			{Name: "text", Type: "str", Description: "Text to process", Required: true},
			{Name: "operation", Type: "str", Description: "Operation: uppercase, lowercase, reverse, sort_lines, unique_lines, word_count", Required: true},
		},
	}

	LogAnalyzer = Tool{
		Name:        "log_analyzer",
		Description: "Analyze log files",
		Type:        "docker",
		Image:       "alpine:latest",
		Content:     script("log_analyzer"),
		Args: []Arg{
			{Name: "logs", Type: "str", Description: "Log content to analyze", Required: true},
			{Name: "analysis_type", Type: "str", Description: "Analysis type: errors, warnings, summary, recent", Required: true},
		},
	}
)

// Catalog lists the custom tools in registration order
func Catalog() []Tool {
	return []Tool{
		JSONProcessor,
		TextAnalyzer,
		MathCalculator,
		URLValidator,
		DataConverter,
		SystemInfo,
		NetworkChecker,
		FileOperations,
		TextProcessor,
		LogAnalyzer,
	}
}

// DefaultRegistry returns a registry holding the catalogue under CustomToolsCollection
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, t := range Catalog() {
		if err := r.Register(CustomToolsCollection, t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
