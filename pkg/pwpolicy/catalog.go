// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pwpolicy

import (
	"fmt"

	"github.com/samber/oops"
)

// Rule codes of the default catalog.
const (
	CodeLengthAtLeast     = "password-policy-length-at-least"
	CodeLowerCase         = "password-policy-lower-case"
	CodeUpperCase         = "password-policy-upper-case"
	CodeNumbers           = "password-policy-numbers"
	CodeSpecialCharacters = "password-policy-special-characters"
	CodeContainsAtLeast   = "password-policy-contains-at-least"
	CodeIdenticalChars    = "password-policy-identical-chars"
)

// Character sets used by the default catalog.
const (
	LowerCaseSet = "abcdefghijklmnopqrstuvwxyz"
	UpperCaseSet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	NumberSet    = "0123456789"
	// SpecialCharacterSet is every printable ASCII character that is not a
	// letter, digit or space.
	SpecialCharacterSet = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Thresholds used by the default catalog.
const (
	DefaultContainsAtLeast = 2
	DefaultMaxRepeatedRun  = 2
)

// Catalog is an ordered, immutable list of rules. Order is display order.
type Catalog struct {
	rules []Rule
}

var defaultCatalog = mustCatalog(defaultRules()...)

func defaultRules() []Rule {
	classes := []Rule{
		CharacterClassRule(CodeLowerCase, "Lower case letters (a-z)", LowerCaseSet),
		CharacterClassRule(CodeUpperCase, "Upper case letters (A-Z)", UpperCaseSet),
		CharacterClassRule(CodeNumbers, "Numbers (0-9)", NumberSet),
		CharacterClassRule(CodeSpecialCharacters, "Special characters (e.g. !@#$%^&*)", SpecialCharacterSet),
	}

	rules := []Rule{LengthRule(CodeLengthAtLeast, "At least %d characters")}
	rules = append(rules, classes...)
	rules = append(rules,
		AtLeastRule(CodeContainsAtLeast,
			fmt.Sprintf("At least %d of the following %d types of characters:", DefaultContainsAtLeast, len(classes)),
			DefaultContainsAtLeast, classes...),
		NoRepeatedRunRule(CodeIdenticalChars,
			fmt.Sprintf("No more than %d identical characters in a row (e.g., \"aaa\" not allowed)", DefaultMaxRepeatedRun),
			DefaultMaxRepeatedRun),
	)
	return rules
}

// DefaultCatalog returns the standard seven-rule catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a catalog from rules in display order. Returns a
// CATALOG_INVALID error for empty catalogs, empty or duplicate codes,
// composites with no members or an unreachable threshold, and nested
// composites.
func NewCatalog(rules ...Rule) (*Catalog, error) {
	if len(rules) == 0 {
		return nil, oops.Code("CATALOG_INVALID").Errorf("catalog must contain at least one rule")
	}

	seen := make(map[string]struct{}, len(rules))
	for i := range rules {
		r := &rules[i]
		if err := validateRule(r, false); err != nil {
			return nil, err
		}
		if _, dup := seen[r.Code]; dup {
			return nil, oops.Code("CATALOG_INVALID").With("code", r.Code).Errorf("duplicate rule code %q", r.Code)
		}
		seen[r.Code] = struct{}{}
	}

	return &Catalog{rules: append([]Rule(nil), rules...)}, nil
}

func mustCatalog(rules ...Rule) *Catalog {
	c, err := NewCatalog(rules...)
	if err != nil {
		panic(err)
	}
	return c
}

func validateRule(r *Rule, nested bool) error {
	if r.Code == "" {
		return oops.Code("CATALOG_INVALID").Errorf("rule code must not be empty")
	}
	if r.Kind != KindCompositeAtLeast {
		if r.test == nil {
			return oops.Code("CATALOG_INVALID").With("code", r.Code).Errorf("rule %q has no predicate", r.Code)
		}
		return nil
	}

	if nested {
		return oops.Code("CATALOG_INVALID").With("code", r.Code).Errorf("composite rule %q cannot be nested", r.Code)
	}
	if len(r.members) == 0 {
		return oops.Code("CATALOG_INVALID").With("code", r.Code).Errorf("composite rule %q has no members", r.Code)
	}
	if r.threshold < 1 || r.threshold > len(r.members) {
		return oops.Code("CATALOG_INVALID").
			With("code", r.Code).
			With("threshold", r.threshold).
			Errorf("composite rule %q threshold must be in [1..%d]", r.Code, len(r.members))
	}

	seen := make(map[string]struct{}, len(r.members))
	for i := range r.members {
		m := &r.members[i]
		if err := validateRule(m, true); err != nil {
			return err
		}
		if _, dup := seen[m.Code]; dup {
			return oops.Code("CATALOG_INVALID").With("code", m.Code).Errorf("duplicate member code %q in %q", m.Code, r.Code)
		}
		seen[m.Code] = struct{}{}
	}
	return nil
}

// Rules returns a copy of the top-level rules in display order.
func (c *Catalog) Rules() []Rule {
	return append([]Rule(nil), c.orDefault().rules...)
}

// Len returns the number of top-level rules.
func (c *Catalog) Len() int {
	return len(c.orDefault().rules)
}

// Lookup finds a rule by code, searching composite members too.
func (c *Catalog) Lookup(code string) (Rule, bool) {
	for _, r := range c.orDefault().rules {
		if r.Code == code {
			return r, true
		}
		for _, m := range r.members {
			if m.Code == code {
				return m, true
			}
		}
	}
	return Rule{}, false
}

// orDefault lets a nil *Catalog behave as the default catalog.
func (c *Catalog) orDefault() *Catalog {
	if c == nil {
		return defaultCatalog
	}
	return c
}
