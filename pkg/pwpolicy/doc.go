// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pwpolicy evaluates candidate passwords against a catalog of
// strength rules and reports a per-rule result for live form feedback.
//
// The default catalog has seven rules, evaluated in this order:
//   - password-policy-length-at-least: at least Policy.MinLength characters (default 8)
//   - password-policy-lower-case: at least one of a-z
//   - password-policy-upper-case: at least one of A-Z
//   - password-policy-numbers: at least one of 0-9
//   - password-policy-special-characters: at least one of SpecialCharacterSet
//   - password-policy-contains-at-least: at least 2 of the four classes above,
//     reported with the four classes as sub-items
//   - password-policy-identical-chars: no character three or more times in a row
//
// Evaluation is pure and never fails. A ValidationResult gates submission
// through its IsValid field, which is the AND of all top-level results.
//
//	res := pwpolicy.Evaluate(value, pwpolicy.Policy{MinLength: 10})
//	if !res.IsValid {
//		// render res.Results as a checklist and keep submit disabled
//	}
package pwpolicy
