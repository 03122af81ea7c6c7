// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/pwpolicy/internal/config"
	"github.com/holomush/pwpolicy/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the pwpolicy CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pwpolicy",
		Short: "pwpolicy - password policy checks for sign-up and password change",
		Long: `pwpolicy evaluates candidate passwords against a rule catalog and
reports per-rule feedback for password-entry screens. It never stores,
hashes or logs a password.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $XDG_CONFIG_HOME/pwpolicy/config.yaml if present)")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newValidateConfigCmd())

	return cmd
}

// configPath returns --config, else the XDG default when that file exists.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	if path, ok := xdg.DefaultConfigFile(); ok {
		return path
	}
	return ""
}

// loadConfig loads configuration with the command's changed flags applied.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	//nolint:wrapcheck // config errors carry their own oops codes
	return config.Load(configPath(), cmd.Flags())
}

// addPolicyFlags registers the flags that override the configured policy.
func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().Int("min-length", 0, "minimum password length (0 = configured or default)")
	cmd.Flags().String("tier", "", "policy tier: none, low, fair, good, excellent")
}
