// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pwpolicy/internal/checker"
	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

// rulesConfig holds configuration for the rules command.
type rulesConfig struct {
	filter     string
	jsonOutput bool
}

func newRulesCmd() *cobra.Command {
	cfg := &rulesConfig{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the password rules",
		Long: `List the rules in the catalog, in evaluation order, with labels rendered
against the configured policy.

--filter takes a glob matched against rule codes:
  pwpolicy rules --filter 'password-policy-*-case'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRules(cmd, cfg)
		},
	}

	addPolicyFlags(cmd)
	cmd.Flags().StringVar(&cfg.filter, "filter", "", "glob pattern matched against rule codes")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output rules as JSON")

	return cmd
}

func runRules(cmd *cobra.Command, cfg *rulesConfig) error {
	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rules, err := filterRules(checker.New(appCfg.PasswordPolicy()).Rules(), cfg.filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.jsonOutput {
		data, err := json.MarshalIndent(rules, "", "  ")
		if err != nil {
			return oops.Wrapf(err, "encoding rules")
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	return writeRulesTable(out, rules)
}

// filterRules keeps top-level rules whose code matches pattern.
// An empty pattern keeps everything.
func filterRules(rules []pwpolicy.RuleDescription, pattern string) ([]pwpolicy.RuleDescription, error) {
	if pattern == "" {
		return rules, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, oops.Code("RULES_FILTER_INVALID").With("filter", pattern).Wrapf(err, "invalid filter pattern")
	}

	out := make([]pwpolicy.RuleDescription, 0, len(rules))
	for _, r := range rules {
		if g.Match(r.Code) {
			out = append(out, r)
		}
	}
	return out, nil
}

func writeRulesTable(w io.Writer, rules []pwpolicy.RuleDescription) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tKIND\tLABEL")
	for _, r := range rules {
		writeRuleRow(tw, r, 0)
	}
	if err := tw.Flush(); err != nil {
		return oops.Wrapf(err, "writing rules")
	}
	return nil
}

func writeRuleRow(w io.Writer, r pwpolicy.RuleDescription, depth int) {
	fmt.Fprintf(w, "%s%s\t%s\t%s\n", strings.Repeat("  ", depth), r.Code, r.Kind, r.Label)
	for _, sub := range r.SubItems {
		writeRuleRow(w, sub, depth+1)
	}
}
