package files

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"
	"time"

	"incidentflow/core"
	"incidentflow/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTemplates = template.Must(template.ParseFS(templateFS, "templates/*.md.tmpl"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
)

func renderText(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Documentation generates a README, an API reference or a general guide for a project
type Documentation struct {
	DocType          string `validate:"required"`
	ProjectName      string `validate:"required"`
	OrganizationName string `validate:"required"`
	// Version defaults to 1.0.0
	Version string
	// Author defaults to Development Team
	Author          string
	IncludeExamples bool
	GeneratedAt     time.Time
}

type docData struct {
	Documentation
	ProjectLower string
	DocTitle     string
	Updated      string
}

func (d Documentation) Files() ([]File, error) {
	if err := core.ValidateModel(d); err != nil {
		return nil, err
	}

	data := docData{
		Documentation: d,
		ProjectLower:  strings.ToLower(d.ProjectName),
		DocTitle:      utils.TitleCase(d.DocType),
		Updated:       timeOr(d.GeneratedAt).Format(time.RFC3339),
	}
	data.Version = valueOr(d.Version, "1.0.0")
	data.Author = valueOr(d.Author, "Development Team")

	name := "guide.md.tmpl"
	switch d.DocType {
	case "readme":
		name = "readme.md.tmpl"
	case "api":
		name = "api.md.tmpl"
	}
	content, err := renderText(name, data)
	if err != nil {
		return nil, err
	}

	return []File{{
		Destination: fmt.Sprintf("%s_%s.md", d.DocType, data.ProjectLower),
		Content:     content,
	}}, nil
}

func (d Documentation) Command() (string, error) {
	fs, err := d.Files()
	if err != nil {
		return "", err
	}
	return WriteCommand(fs[0], Preview{
		Heading: fmt.Sprintf("📚 GENERATING %s DOCUMENTATION", strings.ToUpper(d.DocType)),
		Details: []string{
			"Project: " + d.ProjectName,
			"Organization: " + d.OrganizationName,
			"Version: " + valueOr(d.Version, "1.0.0"),
		},
		Action:  "📝 Creating documentation file...",
		Subject: "Documentation",
	}), nil
}
