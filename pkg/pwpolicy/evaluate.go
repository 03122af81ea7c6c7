// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pwpolicy

import (
	"encoding/json"
	"math"
)

// Evaluate checks password against the default catalog.
func Evaluate(password string, policy Policy) ValidationResult {
	return defaultCatalog.Evaluate(password, policy)
}

// Evaluate checks password against every rule in catalog order. The policy
// is resolved once before any rule runs. It never fails: anything a rule
// cannot satisfy is reported as StatusError.
func (c *Catalog) Evaluate(password string, policy Policy) ValidationResult {
	c = c.orDefault()
	p := policy.Resolve()

	results := make([]RuleResult, 0, len(c.rules))
	valid := true
	for i := range c.rules {
		res := c.rules[i].evaluate(password, p)
		valid = valid && res.IsValid
		results = append(results, res)
	}

	return ValidationResult{IsValid: valid, Results: results}
}

// CoercePassword converts a dynamically typed password value to a string.
// Anything that is not a string, including nil, becomes the empty password.
func CoercePassword(v any) string {
	switch pw := v.(type) {
	case string:
		return pw
	case *string:
		if pw != nil {
			return *pw
		}
	}
	return ""
}

// CoercePolicy converts a dynamically typed policy object, as decoded from
// JSON, to a Policy. minLength is kept only when it is an integral number and
// the tier only when it is a string; anything else is left zero so Resolve
// substitutes the default. A value that is not an object yields the zero
// Policy.
func CoercePolicy(v any) Policy {
	switch pv := v.(type) {
	case Policy:
		return pv
	case *Policy:
		if pv != nil {
			return *pv
		}
		return Policy{}
	case map[string]any:
		var p Policy
		if n, ok := integral(pv["minLength"]); ok {
			p.MinLength = n
		}
		if t, ok := pv["policy"].(string); ok {
			p.Tier = Tier(t)
		}
		return p
	}
	return Policy{}
}

// integral reports v as an int when it is a whole number within int range.
func integral(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		f = n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return integral(i)
		}
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// RuleDescription is a password-independent view of a rule for listings.
type RuleDescription struct {
	Code      string            `json:"code"`
	Label     string            `json:"label"`
	Kind      Kind              `json:"kind"`
	Threshold int               `json:"threshold,omitempty"`
	SubItems  []RuleDescription `json:"subItems,omitempty"`
}

// Describe lists the catalog's rules with labels rendered against policy.
func (c *Catalog) Describe(policy Policy) []RuleDescription {
	c = c.orDefault()
	p := policy.Resolve()

	out := make([]RuleDescription, 0, len(c.rules))
	for i := range c.rules {
		out = append(out, describe(&c.rules[i], p))
	}
	return out
}

func describe(r *Rule, p Policy) RuleDescription {
	d := RuleDescription{
		Code:      r.Code,
		Label:     r.label(p),
		Kind:      r.Kind,
		Threshold: r.threshold,
	}
	for i := range r.members {
		d.SubItems = append(d.SubItems, describe(&r.members[i], p))
	}
	return d
}
