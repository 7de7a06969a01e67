package main

import (
	"errors"
	"io/fs"
	"strings"
	"sync"

	"github.com/JonMunkholm/flashcards/internal/config"
	"github.com/JonMunkholm/flashcards/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// commandContext carries the persistent flags and lazily loaded config shared
// by subcommands.
type commandContext struct {
	envFile  string
	logLevel string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

// ensureConfig loads the environment configuration once. Only commands that
// talk to the database need it.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := c.loadEnvFile(); err != nil {
			c.configErr = err
			return
		}
		c.config, c.configErr = config.Load()
	})
	return c.config, c.configErr
}

// loadEnvFile applies --env-file, or ./.env when present.
func (c *commandContext) loadEnvFile() error {
	if path := strings.TrimSpace(c.envFile); path != "" {
		return godotenv.Overload(path)
	}
	if err := godotenv.Overload(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "cardimport",
		Short:         "Preview and import flashcard files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries command output; logs go to stderr
			logging.SetupWriter(cmd.ErrOrStderr(), ctx.logLevel, "text")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.envFile, "env-file", "", "Load environment variables from this file")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newPreviewCommand())
	rootCmd.AddCommand(newPushCommand(ctx))

	return rootCmd
}
