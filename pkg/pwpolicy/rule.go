// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pwpolicy

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Rule is one checkable password property. Rules are stateless values; build
// them with LengthRule, CharacterClassRule, AtLeastRule or NoRepeatedRunRule.
type Rule struct {
	Code  string
	Label string
	Kind  Kind

	// test is nil for composite rules, which decide from their members.
	test      func(password string, p Policy) bool
	labelFunc func(p Policy) string
	threshold int
	members   []Rule
}

// LengthRule passes when the password has at least the policy's minimum
// number of characters. format must contain one %d verb for the minimum.
func LengthRule(code, format string) Rule {
	return Rule{
		Code:  code,
		Label: format,
		Kind:  KindLength,
		test: func(password string, p Policy) bool {
			return utf8.RuneCountInString(password) >= p.MinLength
		},
		labelFunc: func(p Policy) string {
			return fmt.Sprintf(format, p.MinLength)
		},
	}
}

// CharacterClassRule passes when the password contains at least one
// character from set.
func CharacterClassRule(code, label, set string) Rule {
	cs := newCharSet(set)
	return Rule{
		Code:  code,
		Label: label,
		Kind:  KindCharacterClass,
		test: func(password string, _ Policy) bool {
			return cs.containsAny(password)
		},
	}
}

// AtLeastRule passes when at least n of members pass. Members are reported
// as sub-items in the order given.
func AtLeastRule(code, label string, n int, members ...Rule) Rule {
	return Rule{
		Code:      code,
		Label:     label,
		Kind:      KindCompositeAtLeast,
		threshold: n,
		members:   append([]Rule(nil), members...),
	}
}

// NoRepeatedRunRule passes when no character repeats more than maxRun times
// in a row. The empty password does not pass.
func NoRepeatedRunRule(code, label string, maxRun int) Rule {
	return Rule{
		Code:  code,
		Label: label,
		Kind:  KindNoRepeatedRun,
		test: func(password string, _ Policy) bool {
			return password != "" && longestRun(password) <= maxRun
		},
	}
}

// Threshold returns how many members a composite rule requires, or zero.
func (r Rule) Threshold() int {
	return r.threshold
}

// Members returns a copy of a composite rule's members.
func (r Rule) Members() []Rule {
	return append([]Rule(nil), r.members...)
}

// DisplayLabel renders the label against a policy. p is resolved first.
func (r Rule) DisplayLabel(p Policy) string {
	return r.label(p.Resolve())
}

func (r *Rule) label(p Policy) string {
	if r.labelFunc != nil {
		return r.labelFunc(p)
	}
	return r.Label
}

// evaluate runs the rule against a resolved policy.
func (r *Rule) evaluate(password string, p Policy) RuleResult {
	if r.Kind != KindCompositeAtLeast {
		return newRuleResult(r, r.label(p), r.test != nil && r.test(password, p))
	}

	subs := make([]RuleResult, 0, len(r.members))
	passed := 0
	for i := range r.members {
		sub := r.members[i].evaluate(password, p)
		if sub.IsValid {
			passed++
		}
		subs = append(subs, sub)
	}
	res := newRuleResult(r, r.label(p), passed >= r.threshold)
	res.SubItems = subs
	return res
}

// charSet is a membership table for ASCII with a fallback for anything else.
type charSet struct {
	ascii [utf8.RuneSelf]bool
	other string
}

func newCharSet(set string) *charSet {
	cs := &charSet{}
	var other strings.Builder
	for _, r := range set {
		if r < utf8.RuneSelf {
			cs.ascii[r] = true
			continue
		}
		other.WriteRune(r)
	}
	cs.other = other.String()
	return cs
}

func (cs *charSet) containsAny(s string) bool {
	for _, r := range s {
		if r < utf8.RuneSelf {
			if cs.ascii[r] {
				return true
			}
			continue
		}
		if cs.other != "" && r != utf8.RuneError && strings.ContainsRune(cs.other, r) {
			return true
		}
	}
	return false
}

// longestRun returns the length of the longest run of one repeated
// character. Characters are compared by their encoded bytes, so distinct
// invalid UTF-8 bytes never count as identical.
func longestRun(s string) int {
	longest, run := 0, 0
	prev := ""
	for len(s) > 0 {
		_, size := utf8.DecodeRuneInString(s)
		cur := s[:size]
		if cur == prev {
			run++
		} else {
			run = 1
		}
		prev = cur
		s = s[size:]
		if run > longest {
			longest = run
		}
	}
	return longest
}
