/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/mcapidx/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the mcapidx configuration file",
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with a generated API key",
	Long: `Create a configuration file with default settings and a freshly
generated API key for the HTTP server.

Examples:
  mcapidx config init
  mcapidx config init --config ./mcapidx.yaml --data-dir ./data --print-key`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")

		e := envFrom(cmd)
		out := cmd.OutOrStdout()
		if config.ConfigExists(e.configPath) && !force {
			fmt.Fprintf(out, "Configuration already exists at %s. Use --force to overwrite.\n", e.configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(e.configPath, e.cfg.DataDir)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Configuration created at %s\n", e.configPath)
		if printKey {
			fmt.Fprintf(out, "API key: %s\n", cfg.Security.APIKey)
		}
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *envFrom(cmd).cfg
		if cfg.Security.APIKey != "" {
			cfg.Security.APIKey = "********"
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(&cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
	configInitCmd.Flags().Bool("print-key", false, "Print the generated API key")
}
