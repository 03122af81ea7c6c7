// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pwpolicy/internal/checker"
	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

// errPasswordRejected is returned by check when the password fails the policy.
var errPasswordRejected = errors.New("password does not meet the policy")

// checkConfig holds configuration for the check command.
type checkConfig struct {
	jsonOutput bool
	password   string
}

func newCheckCmd() *cobra.Command {
	cfg := &checkConfig{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a password against the policy",
		Long: `Evaluate a password and print the rule checklist.

The password is taken from --password or, when that flag is absent, from the
first line of standard input. Exits with status 2 when the password does not
meet the policy.

  printf 'StrongPass123!\n' | pwpolicy check --min-length 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, cfg)
		},
	}

	addPolicyFlags(cmd)
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output the result as JSON")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password to evaluate (visible in process listings; prefer stdin)")

	return cmd
}

func runCheck(cmd *cobra.Command, cfg *checkConfig) error {
	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	password := cfg.password
	if !cmd.Flags().Changed("password") {
		password, err = readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	res := checker.New(appCfg.PasswordPolicy()).Check(cmd.Context(), password)

	out := cmd.OutOrStdout()
	if cfg.jsonOutput {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return oops.Wrapf(err, "encoding result")
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprint(out, formatChecklist(res))
	}

	if !res.IsValid {
		return errPasswordRejected
	}
	return nil
}

// readPassword returns the first line of r without its line terminator.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", oops.Code("PASSWORD_READ_FAILED").Wrapf(err, "reading password from stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func formatChecklist(res pwpolicy.ValidationResult) string {
	var b strings.Builder
	for _, r := range res.Results {
		writeItem(&b, r, 0)
	}
	if res.IsValid {
		b.WriteString("\nPassword meets the policy.\n")
	} else {
		b.WriteString("\nPassword does not meet the policy.\n")
	}
	return b.String()
}

func writeItem(b *strings.Builder, r pwpolicy.RuleResult, depth int) {
	mark := "✗"
	if r.IsValid {
		mark = "✓"
	}
	fmt.Fprintf(b, "%s%s %s\n", strings.Repeat("    ", depth), mark, r.Label)
	for _, sub := range r.SubItems {
		writeItem(b, sub, depth+1)
	}
}
