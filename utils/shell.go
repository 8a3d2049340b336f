package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ShellQuote wraps s in single quotes so a POSIX shell passes it through verbatim
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Base64WriteCommand renders a command that decodes content into destination.
// Base64 keeps arbitrary file content out of shell parsing entirely.
func Base64WriteCommand(content, destination string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	return fmt.Sprintf("echo '%s' | base64 -d > %s", encoded, ShellQuote(destination))
}

// Heredoc renders an unquoted heredoc writing body into destination.
// Unquoted so ${var} placeholders still expand at execution time.
func Heredoc(destination, delimiter, body string) string {
	AssertInvariant(!strings.Contains(body, "\n"+delimiter+"\n"), "heredoc body must not contain its delimiter line")
	return fmt.Sprintf("cat > %s << %s\n%s\n%s", destination, delimiter, strings.TrimRight(body, "\n"), delimiter)
}

// ShellList renders values as a space separated, individually quoted list
func ShellList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, ShellQuote(v))
	}
	return strings.Join(quoted, " ")
}

var doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`")

// DoubleQuote wraps s in double quotes, leaving $ unescaped so ${var} placeholders still expand
func DoubleQuote(s string) string {
	return `"` + doubleQuoteEscaper.Replace(s) + `"`
}
