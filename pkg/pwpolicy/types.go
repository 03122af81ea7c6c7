// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pwpolicy

import (
	"fmt"
	"strings"
)

// Status is the display status of a single rule result.
type Status string

// Status constants define the only two outcomes a rule can have.
const (
	StatusValid Status = "valid"
	StatusError Status = "error"
)

// StatusOf maps a rule outcome to its display status.
func StatusOf(ok bool) Status {
	if ok {
		return StatusValid
	}
	return StatusError
}

// Kind classifies how a rule decides.
type Kind int

// Kind constants define the supported rule kinds.
const (
	KindLength           Kind = iota // length
	KindCharacterClass               // characterClass
	KindCompositeAtLeast             // compositeAtLeast
	KindNoRepeatedRun                // noRepeatedRun
)

var kindStrings = [...]string{
	"length",
	"characterClass",
	"compositeAtLeast",
	"noRepeatedRun",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindStrings) {
		return kindStrings[k]
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Tier is the named strength profile reported by the authentication backend.
// It is informational and does not change which rules run.
type Tier string

// Tier constants mirror the profile names the backend emits.
const (
	TierNone      Tier = "none"
	TierLow       Tier = "low"
	TierFair      Tier = "fair"
	TierGood      Tier = "good"
	TierExcellent Tier = "excellent"
)

// Tiers lists the known tiers from weakest to strongest.
func Tiers() []Tier {
	return []Tier{TierNone, TierLow, TierFair, TierGood, TierExcellent}
}

// ParseTier normalizes s to a known tier. The empty string is TierNone.
func ParseTier(s string) (Tier, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TierNone, true
	}
	for _, t := range Tiers() {
		if string(t) == s {
			return t, true
		}
	}
	return TierNone, false
}

// String returns the tier name.
func (t Tier) String() string {
	return string(t)
}

// RuleResult is the outcome of one rule against one password.
// SubItems is only populated for composite rules.
type RuleResult struct {
	Code     string       `json:"code"`
	Label    string       `json:"label"`
	Status   Status       `json:"status"`
	IsValid  bool         `json:"isValid"`
	SubItems []RuleResult `json:"subItems,omitempty"`
}

func newRuleResult(r *Rule, label string, ok bool) RuleResult {
	return RuleResult{
		Code:    r.Code,
		Label:   label,
		Status:  StatusOf(ok),
		IsValid: ok,
	}
}

// ValidationResult is the full evaluation of a password against a catalog.
// It is derived state; callers re-evaluate instead of mutating it.
type ValidationResult struct {
	IsValid bool         `json:"isValid"`
	Results []RuleResult `json:"results"`
}

// Result returns the top-level result with the given code.
func (v ValidationResult) Result(code string) (RuleResult, bool) {
	for _, r := range v.Results {
		if r.Code == code {
			return r, true
		}
	}
	return RuleResult{}, false
}

// Failed returns the codes of failing top-level rules in catalog order.
func (v ValidationResult) Failed() []string {
	var codes []string
	for _, r := range v.Results {
		if !r.IsValid {
			codes = append(codes, r.Code)
		}
	}
	return codes
}

// Validate checks that the result is internally consistent: every status
// agrees with its boolean and the aggregate is the AND of the top level.
func (v ValidationResult) Validate() error {
	all := true
	for _, r := range v.Results {
		if err := r.validate(); err != nil {
			return err
		}
		all = all && r.IsValid
	}
	if v.IsValid != all {
		return fmt.Errorf("validation result invariant violated: isValid=%v but rules=%v", v.IsValid, all)
	}
	return nil
}

func (r RuleResult) validate() error {
	if r.Status != StatusOf(r.IsValid) {
		return fmt.Errorf("rule %s invariant violated: status=%s but isValid=%v", r.Code, r.Status, r.IsValid)
	}
	for _, sub := range r.SubItems {
		if err := sub.validate(); err != nil {
			return err
		}
	}
	return nil
}
