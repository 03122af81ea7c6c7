// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pwpolicy

// DefaultMinLength is used whenever a policy carries no usable minimum length.
const DefaultMinLength = 8

// Policy is the password policy supplied by the authentication transaction.
// The zero value is usable and resolves to the defaults.
type Policy struct {
	MinLength int  `json:"minLength,omitempty" yaml:"min_length,omitempty"`
	Tier      Tier `json:"policy,omitempty" yaml:"tier,omitempty"`
}

// DefaultPolicy returns the policy an empty or absent policy resolves to.
func DefaultPolicy() Policy {
	return Policy{MinLength: DefaultMinLength, Tier: TierNone}
}

// Resolve substitutes defaults for absent or malformed fields. It is the only
// place defaults are applied; rules always see a resolved policy.
func (p Policy) Resolve() Policy {
	if p.MinLength < 1 {
		p.MinLength = DefaultMinLength
	}
	if t, ok := ParseTier(string(p.Tier)); ok {
		p.Tier = t
	} else {
		p.Tier = TierNone
	}
	return p
}
