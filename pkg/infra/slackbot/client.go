package slackbot

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/types"
)

type client struct {
	api *slack.Client
}

var _ interfaces.ChatClient = (*client)(nil)

// New creates a chat client using the given bot token.
func New(botToken string) interfaces.ChatClient {
	return &client{
		api: slack.New(botToken),
	}
}

// PostMessage posts rendered blocks to channel with a plain-text fallback.
func (c *client) PostMessage(ctx context.Context, channel string, blocks []slack.Block, fallback string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText(fallback, false),
	}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}

	if _, _, err := c.api.PostMessageContext(ctx, channel, opts...); err != nil {
		return goerr.Wrap(err, "failed to post chat message",
			goerr.V("channel", channel), goerr.T(types.ErrTagDelivery))
	}

	return nil
}
