package blocks

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/slack-go/slack"
)

var ErrInvalidBlock = errors.New("invalid block")

// Validate checks the Block Kit constraints Slack rejects at post time
func Validate(blockSet []slack.Block) error {
	if len(blockSet) > MaxBlocks {
		return fmt.Errorf("%w: %d blocks exceeds limit of %d", ErrInvalidBlock, len(blockSet), MaxBlocks)
	}

	for i, block := range blockSet {
		if err := validateBlock(block); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}

	return nil
}

func validateBlock(block slack.Block) error {
	switch b := block.(type) {
	case *slack.HeaderBlock:
		if b.Text == nil || b.Text.Type != slack.PlainTextType {
			return fmt.Errorf("%w: header text must be plain_text", ErrInvalidBlock)
		}
		if b.Text.Text == "" {
			return fmt.Errorf("%w: header text is empty", ErrInvalidBlock)
		}
		if utf8.RuneCountInString(b.Text.Text) > MaxHeaderLength {
			return fmt.Errorf("%w: header text exceeds %d characters", ErrInvalidBlock, MaxHeaderLength)
		}
	case *slack.SectionBlock:
		if b.Text == nil && len(b.Fields) == 0 {
			return fmt.Errorf("%w: section needs text or fields", ErrInvalidBlock)
		}
		if len(b.Fields) > MaxSectionFields {
			return fmt.Errorf("%w: section has %d fields, limit is %d", ErrInvalidBlock, len(b.Fields), MaxSectionFields)
		}
	case *slack.ActionBlock:
		if b.Elements == nil || len(b.Elements.ElementSet) == 0 {
			return fmt.Errorf("%w: actions block has no elements", ErrInvalidBlock)
		}
		if len(b.Elements.ElementSet) > MaxActionElements {
			return fmt.Errorf("%w: actions block has %d elements, limit is %d", ErrInvalidBlock, len(b.Elements.ElementSet), MaxActionElements)
		}
		for _, element := range b.Elements.ElementSet {
			if button, ok := element.(*slack.ButtonBlockElement); ok && button.URL == "" && button.ActionID == "" {
				return fmt.Errorf("%w: button needs a url or an action_id", ErrInvalidBlock)
			}
		}
	case *slack.ContextBlock:
		if len(b.ContextElements.Elements) == 0 {
			return fmt.Errorf("%w: context block has no elements", ErrInvalidBlock)
		}
	case *slack.DividerBlock:
	default:
		return fmt.Errorf("%w: unsupported block type %s", ErrInvalidBlock, block.BlockType())
	}

	return nil
}
