// Package pipeline runs the fetch, format and publish steps of a report.
package pipeline

import (
	"context"

	"github.com/promiseofcake/dependaslack/internal/report"
	"github.com/promiseofcake/dependaslack/internal/scm"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Fetcher returns the open Dependabot pull requests matching a query.
type Fetcher interface {
	GetDependabotPRs(ctx context.Context, q scm.DependencyUpdateQuery) ([]scm.PRInfo, error)
}

// Publisher delivers rendered blocks.
type Publisher interface {
	Publish(ctx context.Context, blocks []slack.Block) error
}

// Pipeline chains the steps of one run. The first failing step aborts the
// rest, so nothing is published after a failed fetch.
type Pipeline struct {
	fetcher   Fetcher
	publisher Publisher
	logger    *zap.Logger
}

func New(fetcher Fetcher, publisher Publisher, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		publisher: publisher,
		logger:    logger,
	}
}

// Run fetches the pull requests for q, formats them and publishes the
// result. Failures are returned as *FetchError or *PublishError.
func (p *Pipeline) Run(ctx context.Context, q scm.DependencyUpdateQuery) error {
	prs, err := p.fetch(ctx, q)
	if err != nil {
		return err
	}

	blocks := report.Format(prs)
	p.logger.Info("formatted report",
		zap.Int("pull_requests", len(prs)),
		zap.Int("blocks", len(blocks)),
	)

	return p.publish(ctx, blocks)
}

func (p *Pipeline) fetch(ctx context.Context, q scm.DependencyUpdateQuery) (prs []scm.PRInfo, err error) {
	defer func() {
		if v := recover(); v != nil {
			prs, err = nil, &FetchError{Err: recovered("fetch", v)}
		}
	}()

	prs, err = p.fetcher.GetDependabotPRs(ctx, q)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return prs, nil
}

func (p *Pipeline) publish(ctx context.Context, blocks []slack.Block) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PublishError{Err: recovered("publish", v)}
		}
	}()

	if err := p.publisher.Publish(ctx, blocks); err != nil {
		return &PublishError{Err: err}
	}
	return nil
}
