// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/pwpolicy/pkg/errutil"
	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

func TestRules_Table(t *testing.T) {
	output, err := execute(t, "", "rules", "--min-length", "12")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 1+7+4)
	assert.Contains(t, lines[0], "CODE")
	assert.Contains(t, lines[1], pwpolicy.CodeLengthAtLeast)
	assert.Contains(t, lines[1], "At least 12 characters")
	assert.True(t, strings.HasPrefix(lines[7], "  "+pwpolicy.CodeLowerCase), lines[7])
}

func TestRules_Filter(t *testing.T) {
	output, err := execute(t, "", "rules", "--json", "--filter", "password-policy-*-case")
	require.NoError(t, err)

	var rules []map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, pwpolicy.CodeLowerCase, rules[0]["code"])
	assert.Equal(t, pwpolicy.CodeUpperCase, rules[1]["code"])
}

func TestRules_FilterNoMatch(t *testing.T) {
	output, err := execute(t, "", "rules", "--filter", "nothing-*")
	require.NoError(t, err)
	assert.Equal(t, "CODE  KIND  LABEL", strings.TrimSpace(output))
}

func TestRules_InvalidFilter(t *testing.T) {
	_, err := execute(t, "", "rules", "--filter", "password-[")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "RULES_FILTER_INVALID")
	errutil.AssertErrorContext(t, err, "filter", "password-[")
}

func TestFilterRules_EmptyPatternKeepsAll(t *testing.T) {
	all := pwpolicy.DefaultCatalog().Describe(pwpolicy.Policy{})
	got, err := filterRules(all, "")
	require.NoError(t, err)
	assert.Equal(t, all, got)
}
