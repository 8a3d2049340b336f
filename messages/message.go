package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/slack-go/slack"

	"incidentflow/blocks"
	"incidentflow/core"
)

// Template is implemented by every message model that renders into a chat.postMessage payload
type Template interface {
	ToMessage() (*Message, error)
}

// Message is a complete chat.postMessage payload
type Message struct {
	Channel     string        `json:"channel" validate:"required"`
	Text        string        `json:"text" validate:"required"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	Blocks      []slack.Block `json:"blocks,omitempty"`
	ThreadTS    string        `json:"thread_ts,omitempty"`
	Mrkdwn      *bool         `json:"mrkdwn,omitempty"`
	Username    string        `json:"username,omitempty"`
	IconEmoji   string        `json:"icon_emoji,omitempty"`
	IconURL     string        `json:"icon_url,omitempty"`
	Parse       string        `json:"parse,omitempty" validate:"omitempty,oneof=full none"`
	LinkNames   *bool         `json:"link_names,omitempty"`
	UnfurlLinks *bool         `json:"unfurl_links,omitempty"`
	UnfurlMedia *bool         `json:"unfurl_media,omitempty"`
}

// Attachment is a colour-barred message attachment carrying Block Kit blocks
type Attachment struct {
	Color      string                  `json:"color,omitempty"`
	Blocks     []slack.Block           `json:"blocks,omitempty"`
	Fallback   string                  `json:"fallback,omitempty"`
	AuthorName string                  `json:"author_name,omitempty"`
	AuthorLink string                  `json:"author_link,omitempty"`
	AuthorIcon string                  `json:"author_icon,omitempty"`
	Title      string                  `json:"title,omitempty"`
	TitleLink  string                  `json:"title_link,omitempty"`
	Text       string                  `json:"text,omitempty"`
	Fields     []slack.AttachmentField `json:"fields,omitempty"`
	ImageURL   string                  `json:"image_url,omitempty"`
	ThumbURL   string                  `json:"thumb_url,omitempty"`
	Footer     string                  `json:"footer,omitempty"`
	FooterIcon string                  `json:"footer_icon,omitempty"`
	Ts         int64                   `json:"ts,omitempty"`
	CallbackID string                  `json:"callback_id,omitempty"`
}

// Validate checks required fields and the Block Kit limits of every block set in the message
func (m *Message) Validate() error {
	if err := core.ValidateModel(m); err != nil {
		return err
	}

	if err := blocks.Validate(m.Blocks); err != nil {
		return fmt.Errorf("message blocks: %w", err)
	}

	for i, attachment := range m.Attachments {
		if err := blocks.Validate(attachment.Blocks); err != nil {
			return fmt.Errorf("attachment %d: %w", i, err)
		}
	}

	return nil
}

// ToJSON renders the payload as indented JSON, leaving <url|text> links unescaped
func (m *Message) ToJSON() (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(m); err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ToMap renders the payload as a generic map with empty fields omitted
func (m *Message) ToMap() (map[string]any, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return out, nil
}

// MsgOptions converts the payload into slack-go options for PostMessage
func (m *Message) MsgOptions() []slack.MsgOption {
	options := []slack.MsgOption{slack.MsgOptionText(m.Text, false)}

	if len(m.Blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(m.Blocks...))
	}
	if len(m.Attachments) > 0 {
		attachments := make([]slack.Attachment, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			attachments = append(attachments, a.toSlack())
		}
		options = append(options, slack.MsgOptionAttachments(attachments...))
	}
	if m.ThreadTS != "" {
		options = append(options, slack.MsgOptionTS(m.ThreadTS))
	}
	if m.Username != "" {
		options = append(options, slack.MsgOptionUsername(m.Username))
	}
	if m.IconEmoji != "" {
		options = append(options, slack.MsgOptionIconEmoji(m.IconEmoji))
	}
	if m.IconURL != "" {
		options = append(options, slack.MsgOptionIconURL(m.IconURL))
	}
	if m.Parse != "" {
		options = append(options, slack.MsgOptionParse(m.Parse == "full"))
	}
	if m.LinkNames != nil {
		options = append(options, slack.MsgOptionLinkNames(*m.LinkNames))
	}
	if m.Mrkdwn != nil && !*m.Mrkdwn {
		options = append(options, slack.MsgOptionDisableMarkdown())
	}
	if m.UnfurlLinks != nil && !*m.UnfurlLinks {
		options = append(options, slack.MsgOptionDisableLinkUnfurl())
	}
	if m.UnfurlMedia != nil && !*m.UnfurlMedia {
		options = append(options, slack.MsgOptionDisableMediaUnfurl())
	}

	return options
}

func (a Attachment) toSlack() slack.Attachment {
	attachment := slack.Attachment{
		Color:      a.Color,
		Fallback:   a.Fallback,
		AuthorName: a.AuthorName,
		AuthorLink: a.AuthorLink,
		AuthorIcon: a.AuthorIcon,
		Title:      a.Title,
		TitleLink:  a.TitleLink,
		Text:       a.Text,
		Fields:     a.Fields,
		ImageURL:   a.ImageURL,
		ThumbURL:   a.ThumbURL,
		Footer:     a.Footer,
		FooterIcon: a.FooterIcon,
		CallbackID: a.CallbackID,
		Blocks:     slack.Blocks{BlockSet: a.Blocks},
	}
	if a.Ts != 0 {
		attachment.Ts = json.Number(strconv.FormatInt(a.Ts, 10))
	}
	return attachment
}

// build validates a freshly assembled message before handing it out
func build(m *Message) (*Message, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
