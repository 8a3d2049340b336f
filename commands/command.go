package commands

import (
	"fmt"
	"regexp"
	"strings"

	"incidentflow/messages"
	"incidentflow/utils"
)

// Command is implemented by every model that renders a shell step body
type Command interface {
	Command() (string, error)
}

// ChatPostMessageURL is the Slack endpoint generated scripts post to
const ChatPostMessageURL = "https://slack.com/api/chat.postMessage"

const jsonHeredocDelimiter = "INCIDENTFLOW_JSON"

// heredocEscaper keeps an unquoted heredoc from altering JSON escapes or running substitutions.
// Only ${...} expansions survive.
var heredocEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`", "$(", `\$(`)

// shellRef matches ${name} and ${name:-default} references left in a rendered payload
var shellRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// jsonEscapeFunc turns a shell value into the body of a JSON string literal
var jsonEscapeFunc = script(
	"incidentflow_json_escape() {",
	"  local s=$1",
	`  s=${s//\\/\\\\}`,
	`  s=${s//\"/\\\"}`,
	`  s=${s//$'\n'/\\n}`,
	`  s=${s//$'\r'/\\r}`,
	`  s=${s//$'\t'/\\t}`,
	`  printf '%s' "$s"`,
	"}",
)

func script(lines ...string) string {
	return strings.Join(lines, "\n")
}

func q(s string) string {
	return utils.DoubleQuote(s)
}

// writeMessage renders the payload to outputFile. With expand set the payload is written
// through an unquoted heredoc so shell variables such as ${SEVERITY_EMOJI} resolve first.
// The expanded script expects incidentflow_json_escape to be defined.
func writeMessage(msg *messages.Message, outputFile string, expand bool) (string, error) {
	payload, err := msg.ToJSON()
	if err != nil {
		return "", err
	}
	if expand {
		payload, assignments := escapeShellRefs(payload)
		write := utils.Heredoc(outputFile, jsonHeredocDelimiter, heredocEscaper.Replace(payload))
		return script(append(assignments, write)...), nil
	}
	return utils.Base64WriteCommand(payload, outputFile), nil
}

// escapeShellRefs points every shell reference in payload at a JSON-escaped copy of its value,
// so multi-line or quoted values still produce a valid document once the heredoc expands them.
func escapeShellRefs(payload string) (string, []string) {
	vars := map[string]string{}
	taken := map[string]bool{}
	var assignments []string
	out := shellRef.ReplaceAllStringFunc(payload, func(ref string) string {
		name, ok := vars[ref]
		if !ok {
			base := "json_" + shellRef.FindStringSubmatch(ref)[1]
			name = base
			for i := 2; taken[name]; i++ {
				name = fmt.Sprintf("%s_%d", base, i)
			}
			taken[name] = true
			vars[ref] = name
			assignments = append(assignments, fmt.Sprintf("%s=$(incidentflow_json_escape %s)", name, q(ref)))
		}
		return "${" + name + "}"
	})
	return out, assignments
}

// postMessage renders the curl call that sends outputFile to chat.postMessage.
// Without a token the payload is only left on disk.
func postMessage(token, outputFile, what string) string {
	return script(
		fmt.Sprintf("if [ -n %s ]; then", q(token)),
		fmt.Sprintf("  RESPONSE=$(curl -s -X POST %s \\", ChatPostMessageURL),
		fmt.Sprintf("    -H %s \\", q("Authorization: Bearer "+token)),
		`    -H "Content-Type: application/json" \`,
		fmt.Sprintf("    -d @%s)", outputFile),
		"  CURL_STATUS=$?",
		`  echo "Slack API response: $RESPONSE"`,
		`  if [ "$CURL_STATUS" -eq 0 ] && echo "$RESPONSE" | grep -q '"ok":true'; then`,
		fmt.Sprintf("    echo %s", q("✅ "+what+" posted successfully")),
		"  else",
		fmt.Sprintf("    echo %s", q("❌ Failed to post "+strings.ToLower(what))),
		"    exit 1",
		"  fi",
		"else",
		fmt.Sprintf("  echo %s", q("ℹ️ No Slack token provided, "+strings.ToLower(what)+" saved to "+outputFile)),
		"fi",
	)
}

// SlackNotification posts any message template from a workflow step
type SlackNotification struct {
	Template   messages.Template
	Banner     string
	What       string
	Token      string
	OutputFile string
	// Expand lets shell variables inside the payload resolve at execution time
	Expand bool
	// Preamble runs before the payload is written, e.g. to set variables the payload references
	Preamble []string
}

func (c SlackNotification) Command() (string, error) {
	if c.Template == nil {
		return "", fmt.Errorf("slack notification has no message template")
	}
	msg, err := c.Template.ToMessage()
	if err != nil {
		return "", err
	}

	outputFile := c.OutputFile
	if outputFile == "" {
		outputFile = "/tmp/slack_notification.json"
	}
	what := c.What
	if what == "" {
		what = "Notification"
	}
	banner := c.Banner
	if banner == "" {
		banner = "📣 POSTING " + strings.ToUpper(what)
	}

	write, err := writeMessage(msg, outputFile, c.Expand)
	if err != nil {
		return "", err
	}

	parts := []string{
		fmt.Sprintf("echo %s", q(banner)),
		fmt.Sprintf("echo %s", q("Posting to channel: "+msg.Channel)),
	}
	if c.Expand {
		parts = append(parts, jsonEscapeFunc)
	}
	parts = append(parts, c.Preamble...)
	parts = append(parts, write, postMessage(c.Token, outputFile, what))
	return script(parts...), nil
}
