package interfaces

import (
	"context"

	"github.com/slack-go/slack"
)

// ChatClient defines the chat-platform post-message contract: a target
// channel, rendered blocks, and a plain-text fallback for clients that cannot
// display blocks.
type ChatClient interface {
	PostMessage(ctx context.Context, channel string, blocks []slack.Block, fallback string) error
}
