package main

import (
	"context"
	"io"
	"net/http"

	"github.com/promiseofcake/dependaslack/internal/chat"
	"github.com/promiseofcake/dependaslack/internal/config"
	"github.com/promiseofcake/dependaslack/internal/pipeline"
	"github.com/promiseofcake/dependaslack/internal/scm"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// runReport resolves the configuration and runs one report. A configuration
// error returns before any network call is made.
func runReport(ctx context.Context, v *viper.Viper, logger *zap.Logger, out io.Writer) error {
	cfg, err := config.Resolve(v)
	if err != nil {
		return err
	}

	if timeout := v.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	c, err := scm.NewGithubClient(ctx, http.DefaultClient, cfg.GithubToken,
		scm.WithBaseURL(cfg.GithubAPIURL),
		scm.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var publisher pipeline.Publisher
	if v.GetBool("dry-run") {
		publisher = chat.NewPrinter(out)
	} else {
		publisher = chat.NewPublisher(cfg.SlackToken, cfg.SlackChannel, cfg.SlackAPIURL, logger)
	}

	logger.Info("checking repositories", zap.Strings("repositories", cfg.Repositories))

	q := scm.DependencyUpdateQuery{
		Repositories:   cfg.Repositories,
		DeniedPackages: cfg.DeniedPackages,
		DeniedOrgs:     cfg.DeniedOrgs,
	}
	if err := pipeline.New(c, publisher, logger).Run(ctx, q); err != nil {
		return err
	}

	logger.Info("Success!")
	return nil
}
