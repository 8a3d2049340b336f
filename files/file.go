package files

import (
	"fmt"
	"strings"
	"time"

	"incidentflow/utils"
)

// File is a generated artifact a workflow step writes to disk
type File struct {
	Destination string `json:"destination" yaml:"destination"`
	Content     string `json:"content" yaml:"content"`
}

// FileModel is implemented by every generator in this package
type FileModel interface {
	Files() ([]File, error)
}

// Preview controls the banner a write script prints around the file
type Preview struct {
	Heading string
	Details []string
	Action  string
	// Subject names the artifact in the success and failure lines, e.g. "Configuration"
	Subject string
}

// WriteCommand renders a script that writes f through base64, so nothing in the
// content is interpreted by the shell, then prints its size and first lines.
func WriteCommand(f File, p Preview) string {
	dest := utils.DoubleQuote(f.Destination)
	lines := []string{fmt.Sprintf("echo %s", utils.DoubleQuote(p.Heading))}
	for _, d := range p.Details {
		lines = append(lines, fmt.Sprintf("echo %s", utils.DoubleQuote(d)))
	}
	lines = append(lines,
		fmt.Sprintf("echo %s", utils.DoubleQuote("Output: "+f.Destination)),
		`echo ""`,
		fmt.Sprintf("echo %s", utils.DoubleQuote(p.Action)),
		fmt.Sprintf(`mkdir -p "$(dirname %s)"`, dest),
		fmt.Sprintf("if %s; then", utils.Base64WriteCommand(f.Content, f.Destination)),
		fmt.Sprintf("  echo %s", utils.DoubleQuote("✅ "+p.Subject+" generated successfully: "+f.Destination)),
		fmt.Sprintf(`  echo "📊 File size: $(du -h %s | cut -f1)"`, dest),
		`  echo "📄 Preview (first 10 lines):"`,
		fmt.Sprintf("  head -10 %s", dest),
		"else",
		fmt.Sprintf("  echo %s", utils.DoubleQuote("❌ Failed to generate "+strings.ToLower(p.Subject))),
		"  exit 1",
		"fi",
	)
	return strings.Join(lines, "\n")
}

// writeAll renders one write script per file, all sharing the same preview
func writeAll(fs []File, p Preview) string {
	scripts := make([]string, 0, len(fs))
	for _, f := range fs {
		scripts = append(scripts, WriteCommand(f, p))
	}
	return strings.Join(scripts, "\n")
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func timeOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
