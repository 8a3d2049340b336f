package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "'simple'"},
		{"", "''"},
		{"it's", `'it'"'"'s'`},
		{"$HOME and `date`", "'$HOME and `date`'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellQuote(tt.input))
		})
	}
}

func TestBase64WriteCommand(t *testing.T) {
	content := "line one\nit's 'quoted' $VAR\n"
	cmd := Base64WriteCommand(content, "/tmp/out file.md")

	require.True(t, strings.HasPrefix(cmd, "echo '"))
	assert.True(t, strings.HasSuffix(cmd, "| base64 -d > '/tmp/out file.md'"))

	encoded := strings.TrimPrefix(cmd, "echo '")
	encoded = encoded[:strings.Index(encoded, "'")]
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, content, string(decoded))
}

func TestHeredoc(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		got := Heredoc("/tmp/payload.json", "EOF", "{\"channel\": \"${channel}\"}\n")
		assert.Equal(t, "cat > /tmp/payload.json << EOF\n{\"channel\": \"${channel}\"}\nEOF", got)
	})

	t.Run("DelimiterInBodyPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			Heredoc("/tmp/x", "EOF", "a\nEOF\nb")
		})
	})
}

func TestShellList(t *testing.T) {
	assert.Equal(t, "'a' 'b c' 'd'", ShellList([]string{"a", "b c", "d"}))
	assert.Equal(t, "", ShellList(nil))
}

func TestDoubleQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, DoubleQuote("plain"))
	assert.Equal(t, `"${incident_id}"`, DoubleQuote("${incident_id}"))
	assert.Equal(t, `"say \"hi\""`, DoubleQuote(`say "hi"`))
	assert.Equal(t, "\"run \\`date\\`\"", DoubleQuote("run `date`"))
	assert.Equal(t, `"C:\\tmp"`, DoubleQuote(`C:\tmp`))
}
