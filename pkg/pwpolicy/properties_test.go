// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pwpolicy_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

func statusOf(res pwpolicy.ValidationResult, code string) pwpolicy.Status {
	r, ok := res.Result(code)
	Expect(ok).To(BeTrue(), "missing result for %s", code)
	return r.Status
}

var _ = Describe("Evaluate", func() {
	Describe("passwords meeting every rule", func() {
		DescribeTable("are valid",
			func(password string, minLength int) {
				res := pwpolicy.Evaluate(password, pwpolicy.Policy{MinLength: minLength})
				Expect(res.IsValid).To(BeTrue())
				Expect(res.Failed()).To(BeEmpty())
				Expect(res.Validate()).To(Succeed())
			},
			Entry("example from the sign-up screen", "StrongPass123!", 8),
			Entry("exact minimum length", "aB3$efgh", 8),
			Entry("long minimum", "correct-Horse-battery-9", 20),
			Entry("symbols at both ends", "~Xy1z2W3{", 9),
		)
	})

	Describe("the empty password", func() {
		It("fails every rule", func() {
			res := pwpolicy.Evaluate("", pwpolicy.Policy{})
			Expect(res.IsValid).To(BeFalse())
			for _, r := range res.Results {
				Expect(r.Status).To(Equal(pwpolicy.StatusError), "rule %s", r.Code)
			}
		})

		It("matches a nil value coerced by a dynamic caller", func() {
			Expect(pwpolicy.Evaluate(pwpolicy.CoercePassword(nil), pwpolicy.Policy{})).
				To(Equal(pwpolicy.Evaluate("", pwpolicy.Policy{})))
		})
	})

	Describe("an absent policy", func() {
		DescribeTable("behaves like minLength 8",
			func(password string) {
				Expect(pwpolicy.Evaluate(password, pwpolicy.Policy{})).
					To(Equal(pwpolicy.Evaluate(password, pwpolicy.Policy{MinLength: 8})))
			},
			Entry("seven characters", "Abc12!x"),
			Entry("eight characters", "Abc12!xy"),
			Entry("empty", ""),
		)
	})

	Describe("repeated calls", func() {
		It("return deep-equal results", func() {
			p := pwpolicy.Policy{MinLength: 10, Tier: pwpolicy.TierExcellent}
			first := pwpolicy.Evaluate("Hunter2!!", p)
			Expect(pwpolicy.Evaluate("Hunter2!!", p)).To(Equal(first))
		})
	})

	Describe("the composite rule", func() {
		var before, after pwpolicy.ValidationResult

		BeforeEach(func() {
			before = pwpolicy.Evaluate("12345678", pwpolicy.Policy{})
			after = pwpolicy.Evaluate("1234567!", pwpolicy.Policy{})
		})

		It("fails with exactly one class satisfied", func() {
			Expect(statusOf(before, pwpolicy.CodeContainsAtLeast)).To(Equal(pwpolicy.StatusError))
		})

		It("passes once a second class is satisfied", func() {
			Expect(statusOf(after, pwpolicy.CodeContainsAtLeast)).To(Equal(pwpolicy.StatusValid))
		})

		It("leaves unrelated rules untouched", func() {
			for _, code := range []string{
				pwpolicy.CodeLengthAtLeast,
				pwpolicy.CodeLowerCase,
				pwpolicy.CodeUpperCase,
				pwpolicy.CodeNumbers,
				pwpolicy.CodeIdenticalChars,
			} {
				Expect(statusOf(after, code)).To(Equal(statusOf(before, code)), "rule %s", code)
			}
		})

		It("reports its four classes as sub-items", func() {
			r, ok := after.Result(pwpolicy.CodeContainsAtLeast)
			Expect(ok).To(BeTrue())
			Expect(r.SubItems).To(HaveLen(4))
			Expect(r.SubItems[2].Status).To(Equal(pwpolicy.StatusValid))
			Expect(r.SubItems[3].Status).To(Equal(pwpolicy.StatusValid))
		})
	})

	Describe("the identical characters rule", func() {
		DescribeTable("detects runs of three",
			func(password string, expected pwpolicy.Status) {
				res := pwpolicy.Evaluate(password, pwpolicy.Policy{})
				Expect(statusOf(res, pwpolicy.CodeIdenticalChars)).To(Equal(expected))
			},
			Entry("aaa", "aaa", pwpolicy.StatusError),
			Entry("aab", "aab", pwpolicy.StatusValid),
			Entry("run in the middle", "Pa555word", pwpolicy.StatusError),
		)
	})

	Describe("a custom minimum length", func() {
		It("fails a short password", func() {
			res := pwpolicy.Evaluate("Ab1!", pwpolicy.Policy{MinLength: 10})
			Expect(statusOf(res, pwpolicy.CodeLengthAtLeast)).To(Equal(pwpolicy.StatusError))
		})

		It("passes at exactly the minimum regardless of other rules", func() {
			res := pwpolicy.Evaluate("Ab1!......", pwpolicy.Policy{MinLength: 10})
			Expect(statusOf(res, pwpolicy.CodeLengthAtLeast)).To(Equal(pwpolicy.StatusValid))
		})
	})
})
