/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/config"
	"github.com/ssargent/mcapidx/pkg/di"
	"github.com/ssargent/mcapidx/pkg/logging"
	"github.com/ssargent/mcapidx/pkg/scan"
)

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

type contextKey string

const envKey contextKey = "env"

// env carries the resolved configuration and logger to subcommands
type env struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mcapidx",
	Short: "mcapidx - MCAP record walker and scan catalog",
	Long: `mcapidx validates MCAP log files, walks their record stream and
keeps a catalog of scan results that can be browsed from the CLI or
served over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), envKey, e))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if e := envFrom(cmd); e != nil {
			_ = e.logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/mcapidx/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the scan catalog")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
}

// loadEnv reads the config file when one exists and applies flag overrides.
func loadEnv(cmd *cobra.Command) (*env, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &env{cfg: cfg, configPath: configPath, logger: logger}, nil
}

func envFrom(cmd *cobra.Command) *env {
	e, _ := cmd.Context().Value(envKey).(*env)
	return e
}

// scanOptions merges the configured scan defaults with the --strict flag.
func scanOptions(cmd *cobra.Command, cfg *config.Config) scan.Options {
	opts := scan.Options{
		Strict:      cfg.Scan.Strict,
		KeepRecords: cfg.Scan.KeepRecords,
		BufferSize:  cfg.Scan.BufferSize,
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict, _ = cmd.Flags().GetBool("strict")
	}
	return opts
}

// newScanner builds a scanner reporting to the container's metrics.
func newScanner(e *env) *scan.Scanner {
	if container == nil {
		return scan.NewScanner(e.logger, nil)
	}
	return scan.NewScanner(e.logger, container.GetMetrics())
}
