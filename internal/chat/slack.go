package chat

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Publisher posts message blocks to a single Slack channel.
type Publisher struct {
	client  *slack.Client
	channel string
	logger  *zap.Logger
}

// NewPublisher returns a Publisher authenticating with token. apiURL
// overrides the Slack Web API root when non-empty.
func NewPublisher(token, channel, apiURL string, logger *zap.Logger, opts ...slack.Option) *Publisher {
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &Publisher{
		client:  slack.New(token, opts...),
		channel: channel,
		logger:  logger,
	}
}

// Publish posts blocks as one message. There are no retries.
func (p *Publisher) Publish(ctx context.Context, blocks []slack.Block) error {
	channel, ts, err := p.client.PostMessageContext(ctx, p.channel, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		return fmt.Errorf("failed to post message to %s: %w", p.channel, err)
	}

	p.logger.Debug("posted message",
		zap.String("channel", channel),
		zap.String("ts", ts),
		zap.Int("blocks", len(blocks)),
	)
	return nil
}
