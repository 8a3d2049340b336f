package messages

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentflow/blocks"
	"incidentflow/core"
)

func boolPtr(b bool) *bool { return &b }

func TestMessage(t *testing.T) {
	msg := &Message{
		Channel: "#incidents",
		Text:    "hello",
		Blocks:  []slack.Block{blocks.Header("Hi"), blocks.Section("See <https://x.io|link> & more")},
		Attachments: []Attachment{
			{Color: blocks.ColorGood, Blocks: []slack.Block{blocks.Section("inside")}, Ts: 1700000000},
		},
		ThreadTS:    "1700000000.000100",
		UnfurlLinks: boolPtr(false),
	}

	t.Run("ToJSON", func(t *testing.T) {
		out, err := msg.ToJSON()
		require.NoError(t, err)

		assert.True(t, json.Valid([]byte(out)))
		assert.Contains(t, out, "<https://x.io|link> & more")
		assert.Contains(t, out, "\n  \"channel\": \"#incidents\"")
		assert.NotContains(t, out, "username")
		assert.NotContains(t, out, "icon_emoji")
	})

	t.Run("ToMap", func(t *testing.T) {
		out, err := msg.ToMap()
		require.NoError(t, err)

		assert.Equal(t, "#incidents", out["channel"])
		assert.Equal(t, false, out["unfurl_links"])
		assert.NotContains(t, out, "mrkdwn")
		attachments := out["attachments"].([]any)
		require.Len(t, attachments, 1)
		assert.Equal(t, "good", attachments[0].(map[string]any)["color"])
	})

	t.Run("MsgOptions", func(t *testing.T) {
		_, values, err := slack.UnsafeApplyMsgOptions("xoxb-token", msg.Channel, "https://slack.com/api/", msg.MsgOptions()...)
		require.NoError(t, err)

		assert.Equal(t, "hello", values.Get("text"))
		assert.Equal(t, "1700000000.000100", values.Get("thread_ts"))
		assert.Equal(t, "false", values.Get("unfurl_links"))
		assert.NotEmpty(t, values.Get("blocks"))

		var attachments []map[string]any
		require.NoError(t, json.Unmarshal([]byte(values.Get("attachments")), &attachments))
		require.Len(t, attachments, 1)
		assert.Equal(t, "good", attachments[0]["color"])
		assert.Empty(t, values.Get("parse"))
		assert.Empty(t, values.Get("link_names"))
	})

	t.Run("MsgOptions_ParseAndLinkNames", func(t *testing.T) {
		for _, parse := range []string{"full", "none"} {
			linked := &Message{Channel: "#incidents", Text: "ping @oncall", Parse: parse, LinkNames: boolPtr(true)}
			_, values, err := slack.UnsafeApplyMsgOptions("xoxb-token", linked.Channel, "https://slack.com/api/", linked.MsgOptions()...)
			require.NoError(t, err)

			assert.Equal(t, parse, values.Get("parse"))
			assert.Equal(t, "true", values.Get("link_names"))
		}

		unlinked := &Message{Channel: "#incidents", Text: "ping", LinkNames: boolPtr(false)}
		_, values, err := slack.UnsafeApplyMsgOptions("xoxb-token", unlinked.Channel, "https://slack.com/api/", unlinked.MsgOptions()...)
		require.NoError(t, err)
		assert.Equal(t, "false", values.Get("link_names"))
	})

	t.Run("Validate", func(t *testing.T) {
		assert.NoError(t, msg.Validate())

		err := (&Message{Text: "no channel"}).Validate()
		assert.True(t, errors.Is(err, core.ErrInvalidModel))

		err = (&Message{Channel: "c", Text: "t", Parse: "client"}).Validate()
		assert.True(t, errors.Is(err, core.ErrInvalidModel))

		err = (&Message{Channel: "c", Text: "t", Attachments: []Attachment{{Blocks: []slack.Block{blocks.Actions()}}}}).Validate()
		assert.ErrorIs(t, err, blocks.ErrInvalidBlock)
		assert.Contains(t, err.Error(), "attachment 0")
	})
}

func TestSeverityEmoji(t *testing.T) {
	tests := map[string]string{
		"critical": "🔴",
		"CRITICAL": "🔴",
		"high":     "🟠",
		"medium":   "🟡",
		"low":      "🟢",
		"sev0":     "⚪",
		"":         "⚪",
	}
	for severity, expected := range tests {
		assert.Equal(t, expected, SeverityEmoji(severity), severity)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "85.0%", FormatPercent("85"))
	assert.Equal(t, "92.4%", FormatPercent("92.37"))
	assert.Equal(t, "{{.cpu_threshold}}%", FormatPercent("{{.cpu_threshold}}"))
}
