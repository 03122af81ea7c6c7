// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pwpolicy/internal/config"
)

func newValidateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config [file]",
		Short: "Validate a config file without starting the server",
		Long: `Validates a config file against the configuration schema and its
semantic constraints. Without an argument the --config file, or the default
config file, is checked. Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch config errors early:
  pwpolicy validate-config deploy/config.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if len(args) == 1 {
				path = args[0]
			}
			return runValidateConfig(cmd, path)
		},
	}
}

func runValidateConfig(cmd *cobra.Command, path string) error {
	if path == "" {
		return oops.Code("CONFIG_READ_FAILED").Errorf("no config file given and no default config file found")
	}
	cfg, err := config.Load(path, nil)
	if err != nil {
		//nolint:wrapcheck // config errors carry their own oops codes
		return err
	}
	policy := cfg.PasswordPolicy()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (version %s, min_length %d, tier %s)\n",
		path, cfg.Version, policy.MinLength, policy.Tier)
	return nil
}
