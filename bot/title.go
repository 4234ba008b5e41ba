package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/chatmesh/core"
)

const titlePrompt = "Generate one title based on the following message from a user in 3 to 5 words max: \n"

// defaultTitle is used when the model returns an empty title.
const defaultTitle = "New Chat"

// GenerateTitle produces a short conversation title from the user's first
// message. Surrounding whitespace and double quotes are stripped; an empty
// model output falls back to the default title.
func (b *Bot) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	resp, err := b.model.GenerateResponse(ctx, []core.Message{
		core.NewHumanMessage(titlePrompt + firstMessage),
	})
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}

	title := strings.TrimSpace(strings.ReplaceAll(resp.Message.Content, `"`, ""))
	if title == "" {
		return defaultTitle, nil
	}

	return title, nil
}
