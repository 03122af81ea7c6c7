// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package checker runs password evaluations for a form session and reports
// them to metrics, tracing and the debug log. The password itself is never
// recorded anywhere.
package checker

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

const tracerName = "github.com/holomush/pwpolicy/internal/checker"

// Recorder receives completed evaluations.
type Recorder interface {
	RecordEvaluation(res pwpolicy.ValidationResult, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordEvaluation(pwpolicy.ValidationResult, time.Duration) {}

// Checker evaluates passwords against one catalog and a session policy.
// It is safe for concurrent use.
type Checker struct {
	catalog  *pwpolicy.Catalog
	policy   pwpolicy.Policy
	recorder Recorder
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Checker.
type Option func(*Checker)

// WithCatalog replaces the default catalog.
func WithCatalog(c *pwpolicy.Catalog) Option {
	return func(ch *Checker) {
		if c != nil {
			ch.catalog = c
		}
	}
}

// WithRecorder sets where evaluations are reported.
func WithRecorder(r Recorder) Option {
	return func(ch *Checker) {
		if r != nil {
			ch.recorder = r
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ch *Checker) {
		if l != nil {
			ch.logger = l
		}
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(ch *Checker) {
		if tp != nil {
			ch.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates a Checker whose default policy is policy, resolved once here.
func New(policy pwpolicy.Policy, opts ...Option) *Checker {
	c := &Checker{
		catalog:  pwpolicy.DefaultCatalog(),
		policy:   policy.Resolve(),
		recorder: nopRecorder{},
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the resolved session policy.
func (c *Checker) Policy() pwpolicy.Policy {
	return c.policy
}

// Catalog returns the catalog in use.
func (c *Checker) Catalog() *pwpolicy.Catalog {
	return c.catalog
}

// Check evaluates password against the session policy.
func (c *Checker) Check(ctx context.Context, password string) pwpolicy.ValidationResult {
	return c.CheckWithPolicy(ctx, password, nil)
}

// CheckWithPolicy evaluates password against override, or the session
// policy when override is nil.
func (c *Checker) CheckWithPolicy(ctx context.Context, password string, override *pwpolicy.Policy) pwpolicy.ValidationResult {
	policy := c.policy
	if override != nil {
		policy = override.Resolve()
	}

	ctx, span := c.tracer.Start(ctx, "pwpolicy.evaluate")
	defer span.End()

	start := time.Now()
	res := c.catalog.Evaluate(password, policy)
	elapsed := time.Since(start)

	failed := res.Failed()
	span.SetAttributes(
		attribute.Bool("result.valid", res.IsValid),
		attribute.Int("rules.failed", len(failed)),
		attribute.Int("policy.min_length", policy.MinLength),
		attribute.String("policy.tier", policy.Tier.String()),
	)

	c.recorder.RecordEvaluation(res, elapsed)
	c.logger.DebugContext(ctx, "password evaluated",
		"valid", res.IsValid,
		"failed", failed,
		"min_length", policy.MinLength,
		"tier", policy.Tier,
		"duration_us", elapsed.Microseconds(),
	)

	return res
}

// Rules describes the catalog rendered against the session policy.
func (c *Checker) Rules() []pwpolicy.RuleDescription {
	return c.catalog.Describe(c.policy)
}
