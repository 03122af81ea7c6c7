// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package httpapi serves live password feedback for sign-up and
// password-change screens. Passwords are evaluated and discarded; they are
// never logged, stored or forwarded.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/holomush/pwpolicy/pkg/errutil"
	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

// MaxBodyBytes is the largest evaluate request body accepted.
const MaxBodyBytes = 64 << 10

// Route names used in logs and request metrics.
const (
	RouteEvaluate = "evaluate"
	RouteRules    = "rules"
)

// Evaluator evaluates passwords and describes the active rules.
// *checker.Checker satisfies it.
type Evaluator interface {
	CheckWithPolicy(ctx context.Context, password string, policy *pwpolicy.Policy) pwpolicy.ValidationResult
	Rules() []pwpolicy.RuleDescription
}

// RequestRecorder counts served requests. *observability.Metrics satisfies it.
type RequestRecorder interface {
	RecordRequest(route string, status int)
}

// EvaluateRequest is the body of POST /v1/password/evaluate.
// Both fields are untyped so that malformed values are normalized instead of
// failing the request: a non-string password becomes the empty password, and
// malformed policy fields fall back to their defaults.
type EvaluateRequest struct {
	Password any `json:"password"`
	Policy   any `json:"policy,omitempty"`
}

// policy returns the request's policy override, or nil when the request
// carries no policy object and the configured policy applies.
func (req EvaluateRequest) policy() *pwpolicy.Policy {
	if _, ok := req.Policy.(map[string]any); !ok {
		return nil
	}
	p := pwpolicy.CoercePolicy(req.Policy)
	return &p
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handler routes the password API.
type Handler struct {
	evaluator Evaluator
	recorder  RequestRecorder
	logger    *slog.Logger
	mux       *http.ServeMux
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithRequestRecorder sets where request counts are reported.
func WithRequestRecorder(r RequestRecorder) HandlerOption {
	return func(h *Handler) {
		h.recorder = r
	}
}

// WithHandlerLogger sets the logger. Defaults to slog.Default().
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates the API handler.
func NewHandler(ev Evaluator, opts ...HandlerOption) *Handler {
	h := &Handler{
		evaluator: ev,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /v1/password/evaluate", h.instrument(RouteEvaluate, h.handleEvaluate))
	mux.Handle("GET /v1/password/rules", h.instrument(RouteRules, h.handleRules))
	h.mux = mux
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	withRequestID(h.mux).ServeHTTP(w, r)
}

// statusWriter remembers the status code written.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (h *Handler) instrument(route string, fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		fn(sw, r)
		if h.recorder != nil {
			h.recorder.RecordRequest(route, sw.status)
		}
		h.logger.DebugContext(r.Context(), "request served",
			"route", route,
			"status", sw.status,
			"request_id", RequestID(r.Context()),
		)
	})
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEvaluate(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.logger.WarnContext(r.Context(), "rejected evaluate request",
			append(errutil.Attrs(err), "request_id", RequestID(r.Context()))...)
		h.writeError(w, r, status, err)
		return
	}

	res := h.evaluator.CheckWithPolicy(r.Context(), pwpolicy.CoercePassword(req.Password), req.policy())
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) handleRules(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.evaluator.Rules())
}

func decodeEvaluate(w http.ResponseWriter, r *http.Request) (EvaluateRequest, error) {
	var req EvaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, oops.Code("INVALID_REQUEST").Errorf("request body is empty")
		}
		return req, oops.Code("INVALID_REQUEST").Wrapf(err, "malformed request body")
	}
	if dec.More() {
		return req, oops.Code("INVALID_REQUEST").Errorf("request body has trailing data")
	}
	return req, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := errutil.Code(err)
	if code == "" {
		code = "INVALID_REQUEST"
	}
	msg := err.Error()
	if status == http.StatusRequestEntityTooLarge {
		msg = "request body too large"
	}
	h.writeJSON(w, r, status, ErrorResponse{Error: msg, Code: code})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errutil.LogErrorContext(r.Context(), h.logger, "failed to write response",
			oops.With("request_id", RequestID(r.Context())).Wrap(err))
	}
}
