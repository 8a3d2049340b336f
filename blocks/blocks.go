package blocks

import (
	"github.com/slack-go/slack"
)

// Attachment colours understood by Slack without a hex value
const (
	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

// Block Kit limits enforced by Validate
const (
	MaxHeaderLength   = 150
	MaxSectionFields  = 10
	MaxActionElements = 25
	MaxBlocks         = 50
)

// PlainText returns a plain_text object with emoji rendering enabled
func PlainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

// Markdown returns a mrkdwn text object
func Markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func Header(text string) *slack.HeaderBlock {
	return slack.NewHeaderBlock(PlainText(text))
}

// Section returns a section block with mrkdwn text
func Section(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(Markdown(text), nil, nil)
}

// SectionWithAccessory returns a section block with mrkdwn text and an element on its right side
func SectionWithAccessory(text string, element slack.BlockElement) *slack.SectionBlock {
	return slack.NewSectionBlock(Markdown(text), nil, slack.NewAccessory(element))
}

// Fields returns a section block laid out as a two-column grid of mrkdwn fields
func Fields(texts ...string) *slack.SectionBlock {
	fields := make([]*slack.TextBlockObject, 0, len(texts))
	for _, text := range texts {
		fields = append(fields, Markdown(text))
	}
	return slack.NewSectionBlock(nil, fields, nil)
}

func Divider() *slack.DividerBlock {
	return slack.NewDividerBlock()
}

func Actions(buttons ...*slack.ButtonBlockElement) *slack.ActionBlock {
	elements := make([]slack.BlockElement, 0, len(buttons))
	for _, button := range buttons {
		elements = append(elements, button)
	}
	return slack.NewActionBlock("", elements...)
}

// Context returns a context block of mrkdwn elements
func Context(texts ...string) *slack.ContextBlock {
	elements := make([]slack.MixedElement, 0, len(texts))
	for _, text := range texts {
		elements = append(elements, Markdown(text))
	}
	return slack.NewContextBlock("", elements...)
}

func Image(imageURL, altText string) *slack.ImageBlockElement {
	return slack.NewImageBlockElement(imageURL, altText)
}

// LinkButton returns a button that opens url when clicked
func LinkButton(text, url string) *slack.ButtonBlockElement {
	button := slack.NewButtonBlockElement("", "", PlainText(text))
	button.URL = url
	return button
}

// ActionButton returns a button that sends value to the app's interactivity endpoint under actionID
func ActionButton(text, actionID, value string) *slack.ButtonBlockElement {
	return slack.NewButtonBlockElement(actionID, value, PlainText(text))
}

// Styled applies a button style, primary or danger
func Styled(button *slack.ButtonBlockElement, style slack.Style) *slack.ButtonBlockElement {
	return button.WithStyle(style)
}
