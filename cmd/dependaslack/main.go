package main

import (
	"fmt"
	"os"

	"github.com/promiseofcake/dependaslack/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultEnvFile = ".env"

func newRootCmd(logger *zap.Logger) *cobra.Command {
	v := viper.New()
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "dependaslack",
		Short: "Post open Dependabot PRs to Slack",
		Long: `Post a summary of open Dependabot pull requests to a Slack channel.

Searches GitHub once for open pull requests opened by Dependabot in the
repositories listed in GITHUB_REPOSITORIES, groups them by repository and
posts the result to SLACK_CHANNEL. When nothing is open a short
"nothing to report" message is posted instead.

Configuration is read from the environment (GITHUB_TOKEN, SLACK_TOKEN,
SLACK_CHANNEL, GITHUB_REPOSITORIES) and, when present, from a dotenv file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, envFile, cmd.Flags().Changed("env-file"), logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), v, logger, cmd.OutOrStdout())
		},
	}

	rootCmd.Flags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file to read configuration from")
	rootCmd.Flags().Bool("dry-run", false, "print the message blocks instead of posting them")
	rootCmd.Flags().Duration("timeout", 0, "deadline for the GitHub and Slack calls (0 means none)")

	v.BindPFlag("dry-run", rootCmd.Flags().Lookup("dry-run"))
	v.BindPFlag("timeout", rootCmd.Flags().Lookup("timeout"))
	v.BindEnv("timeout", "TIMEOUT")

	return rootCmd
}

func initConfig(v *viper.Viper, envFile string, explicit bool, logger *zap.Logger) error {
	if err := config.Bind(v); err != nil {
		return err
	}

	loaded, err := config.ReadEnvFile(v, envFile, explicit)
	if err != nil {
		return err
	}
	if loaded {
		logger.Info("using env file", zap.String("path", envFile))
	}
	return nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("report failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

