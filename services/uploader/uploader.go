package uploader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"incidentflow/clients"
	"incidentflow/core/log"
	"incidentflow/messages"
	"incidentflow/prompts"
)

// TimestampFormat is used in report headers and the summary message
const TimestampFormat = "2006-01-02 15:04:05 UTC"

// Input carries the investigation outputs handed to the uploader step
type Input struct {
	Channel          string
	IncidentID       string
	IncidentTitle    string
	IncidentSeverity string
	AffectedServices string
	ExecutiveSummary string
	FormattedReport  string
	NAResults        string
	EUResults        string
}

// InputFromEnv reads the uploader arguments the way the workflow tool step passes them
func InputFromEnv(getenv func(string) string) Input {
	return Input{
		Channel:          getenv("channel"),
		IncidentID:       getenv("incident_id"),
		IncidentTitle:    getenv("incident_title"),
		IncidentSeverity: getenv("incident_severity"),
		AffectedServices: getenv("affected_services"),
		ExecutiveSummary: getenv("executive_summary"),
		FormattedReport:  getenv("formatted_report"),
		NAResults:        getenv("na_results"),
		EUResults:        getenv("eu_results"),
	}
}

// Result reports which files made it and where the summary was posted
type Result struct {
	FileLinks []string
	Failed    []string
	Message   *clients.SlackPostMessageResponse
	Timestamp string
}

type UploaderService struct {
	slackClient clients.SlackClient
	now         func() time.Time
}

func NewUploaderService(slackClient clients.SlackClient) *UploaderService {
	return &UploaderService{
		slackClient: slackClient,
		now:         time.Now,
	}
}

type report struct {
	filename string
	title    string
	label    string
	content  string
}

func regionReport(region, regionName string, in Input, timestamp, results string) string {
	return strings.Join([]string{
		fmt.Sprintf("# %s Production Investigation", region),
		"",
		fmt.Sprintf("**Incident:** %s - %s", in.IncidentID, in.IncidentTitle),
		fmt.Sprintf("**Generated:** %s", timestamp),
		fmt.Sprintf("**Region:** %s (%s)", regionName, region),
		"",
		"## Investigation Results",
		"",
		results,
		"",
	}, "\n")
}

func (s *UploaderService) reports(in Input, timestamp string) []report {
	var out []report
	if strings.TrimSpace(in.FormattedReport) != "" {
		out = append(out, report{
			filename: fmt.Sprintf("incident_report_%s.md", in.IncidentID),
			title:    fmt.Sprintf("Incident Report - %s", in.IncidentTitle),
			label:    "📄 <%s|Full Incident Report>",
			content:  in.FormattedReport,
		})
	}
	if strings.TrimSpace(in.NAResults) != "" {
		out = append(out, report{
			filename: fmt.Sprintf("na_investigation_%s.md", in.IncidentID),
			title:    fmt.Sprintf("NA Investigation - %s", in.IncidentTitle),
			label:    "🇺🇸 <%s|NA Cluster Analysis>",
			content:  regionReport("NA", "North America", in, timestamp, in.NAResults),
		})
	}
	if strings.TrimSpace(in.EUResults) != "" {
		out = append(out, report{
			filename: fmt.Sprintf("eu_investigation_%s.md", in.IncidentID),
			title:    fmt.Sprintf("EU Investigation - %s", in.IncidentTitle),
			label:    "🇪🇺 <%s|EU Cluster Analysis>",
			content:  regionReport("EU", "Europe", in, timestamp, in.EUResults),
		})
	}
	return out
}

// Summary extracts the Slack TL;DR from the executive summary agent output
func Summary(executiveSummary string) string {
	parsed, err := prompts.ParseExecutiveSummary(executiveSummary)
	if err != nil || strings.TrimSpace(parsed.SlackSummary) == "" {
		return messages.DefaultSummary
	}
	return parsed.SlackSummary
}

// Upload shares each non-empty report as a markdown file and posts the results summary
// with links to whatever uploaded. Failed uploads are logged and skipped; only a failure
// to post the summary is returned.
func (s *UploaderService) Upload(ctx context.Context, in Input) (*Result, error) {
	log.Info("📋 Starting to upload investigation results", "incident_id", in.IncidentID, "channel", in.Channel)

	if in.Channel == "" {
		return nil, fmt.Errorf("channel cannot be empty")
	}
	if in.IncidentID == "" {
		return nil, fmt.Errorf("incident_id cannot be empty")
	}

	result := &Result{Timestamp: s.now().UTC().Format(TimestampFormat)}

	for _, r := range s.reports(in, result.Timestamp) {
		file, err := s.slackClient.UploadFile(ctx, clients.SlackUploadParams{
			Channel:  in.Channel,
			Filename: r.filename,
			Title:    r.title,
			Content:  r.content,
		})
		if err != nil {
			log.Warn("⚠️ Failed to upload report", "file", r.filename, "error", err)
			result.Failed = append(result.Failed, r.filename)
			continue
		}

		permalink := file.Permalink
		if permalink == "" {
			permalink = "#"
		}
		result.FileLinks = append(result.FileLinks, fmt.Sprintf(r.label, permalink))
		log.Info("✅ Report uploaded", "file", r.filename)
	}

	severity := in.IncidentSeverity
	if severity == "" {
		severity = "unknown"
	}
	title := in.IncidentTitle
	if title == "" {
		title = "Incident " + in.IncidentID
	}

	msg, err := messages.InvestigationResultsMessage{
		Channel:          in.Channel,
		IncidentID:       in.IncidentID,
		IncidentTitle:    title,
		IncidentSeverity: severity,
		AffectedServices: in.AffectedServices,
		Summary:          Summary(in.ExecutiveSummary),
		FileLinks:        result.FileLinks,
		Timestamp:        result.Timestamp,
	}.ToMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to build results message: %w", err)
	}

	posted, err := s.slackClient.PostMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to post summary: %w", err)
	}
	result.Message = posted

	log.Info("📋 Completed successfully - posted investigation summary",
		"incident_id", in.IncidentID,
		"files", len(result.FileLinks),
		"failed", len(result.Failed),
	)
	return result, nil
}
