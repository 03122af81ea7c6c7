// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/pwpolicy/internal/checker"
	"github.com/holomush/pwpolicy/internal/httpapi"
	"github.com/holomush/pwpolicy/internal/logging"
	"github.com/holomush/pwpolicy/pkg/pwpolicy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockRequestRecorder struct {
	mock.Mock
}

func (m *mockRequestRecorder) RecordRequest(route string, status int) {
	m.Called(route, status)
}

func newHandler(t *testing.T, policy pwpolicy.Policy, opts ...httpapi.HandlerOption) *httpapi.Handler {
	t.Helper()
	quiet := slog.New(slog.DiscardHandler)
	c := checker.New(policy, checker.WithLogger(quiet))
	return httpapi.NewHandler(c, append([]httpapi.HandlerOption{httpapi.WithHandlerLogger(quiet)}, opts...)...)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/password/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) pwpolicy.ValidationResult {
	t.Helper()
	var res pwpolicy.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func TestEvaluate_StrongPassword(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{})

	rec := post(t, h, `{"password":"StrongPass123!"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	res := decodeResult(t, rec)
	assert.True(t, res.IsValid)
	require.Len(t, res.Results, 7)
	assert.Equal(t, pwpolicy.CodeLengthAtLeast, res.Results[0].Code)
	assert.Equal(t, "At least 8 characters", res.Results[0].Label)
	require.NoError(t, res.Validate())
}

func TestEvaluate_NonStringPasswordFailsEveryRule(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{})

	for _, body := range []string{`{"password":null}`, `{}`, `{"password":12345678}`, `{"password":["a"]}`} {
		t.Run(body, func(t *testing.T) {
			rec := post(t, h, body)
			require.Equal(t, http.StatusOK, rec.Code)

			res := decodeResult(t, rec)
			assert.False(t, res.IsValid)
			for _, r := range res.Results {
				assert.Equal(t, pwpolicy.StatusError, r.Status, r.Code)
			}
		})
	}
}

func TestEvaluate_UsesConfiguredPolicyWhenAbsent(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{MinLength: 16})

	res := decodeResult(t, post(t, h, `{"password":"StrongPass123!"}`))

	assert.False(t, res.IsValid)
	assert.Equal(t, []string{pwpolicy.CodeLengthAtLeast}, res.Failed())
	assert.Equal(t, "At least 16 characters", res.Results[0].Label)
}

func TestEvaluate_RequestPolicyOverrides(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{MinLength: 16})

	res := decodeResult(t, post(t, h, `{"password":"StrongPass123!","policy":{"minLength":10,"policy":"good"}}`))

	assert.True(t, res.IsValid)
	assert.Equal(t, "At least 10 characters", res.Results[0].Label)
}

func TestEvaluate_MalformedPolicyFieldsFallBackToDefaults(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{MinLength: 16})

	tests := []struct {
		name      string
		body      string
		wantLabel string
		wantValid bool
	}{
		{"string min length", `{"password":"StrongPass123!","policy":{"minLength":"10"}}`, "At least 8 characters", true},
		{"fractional min length", `{"password":"StrongPass123!","policy":{"minLength":10.5}}`, "At least 8 characters", true},
		{"non-string tier", `{"password":"StrongPass123!","policy":{"minLength":10,"policy":7}}`, "At least 10 characters", true},
		{"zero min length", `{"password":"StrongPass123!","policy":{"minLength":0}}`, "At least 8 characters", true},
		{"string policy", `{"password":"StrongPass123!","policy":"x"}`, "At least 16 characters", false},
		{"null policy", `{"password":"StrongPass123!","policy":null}`, "At least 16 characters", false},
		{"array policy", `{"password":"StrongPass123!","policy":[10]}`, "At least 16 characters", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			res := decodeResult(t, rec)
			assert.Equal(t, tt.wantValid, res.IsValid)
			assert.Equal(t, tt.wantLabel, res.Results[0].Label)
		})
	}
}

func TestEvaluate_RejectsMalformedBodies(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{})

	for _, body := range []string{``, `{"password":`, `not json`, `{"password":"a"} {"password":"b"}`, `[1,2]`} {
		t.Run(body, func(t *testing.T) {
			rec := post(t, h, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp httpapi.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_REQUEST", resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestEvaluate_RejectsOversizedBody(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{})

	body := `{"password":"` + strings.Repeat("a", httpapi.MaxBodyBytes) + `"}`
	rec := post(t, h, body)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var resp httpapi.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
}

func TestEvaluate_MethodNotAllowed(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/password/evaluate", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEvaluate_NeverLogsPassword(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("pwpolicy", "test", "json", &buf)
	c := checker.New(pwpolicy.Policy{}, checker.WithLogger(logger))
	h := httpapi.NewHandler(c, httpapi.WithHandlerLogger(logger))

	post(t, h, `{"password":"Sup3rSecret!"}`)
	post(t, h, `{"password":"Sup3rSecret!"`)

	assert.NotEmpty(t, buf.String())
	assert.NotContains(t, buf.String(), "Sup3rSecret")
}

func TestRules(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{MinLength: 12})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/password/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rules []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.Len(t, rules, 7)
	assert.Equal(t, "At least 12 characters", rules[0]["label"])
	assert.Equal(t, "length", rules[0]["kind"])
	assert.Equal(t, "compositeAtLeast", rules[5]["kind"])
	assert.Len(t, rules[5]["subItems"], 4)
}

func TestRequestID(t *testing.T) {
	h := newHandler(t, pwpolicy.Policy{})

	t.Run("generated when absent", func(t *testing.T) {
		rec := post(t, h, `{"password":"x"}`)
		assert.Len(t, rec.Header().Get(httpapi.RequestIDHeader), 26)
	})

	t.Run("echoed when supplied", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/password/rules", nil)
		req.Header.Set(httpapi.RequestIDHeader, "abc-123")
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get(httpapi.RequestIDHeader))
	})

	t.Run("set on errors", func(t *testing.T) {
		rec := post(t, h, `{`)
		assert.NotEmpty(t, rec.Header().Get(httpapi.RequestIDHeader))
	})

	t.Run("replaced when oversized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/password/rules", nil)
		req.Header.Set(httpapi.RequestIDHeader, strings.Repeat("x", 500))
		h.ServeHTTP(rec, req)
		assert.Len(t, rec.Header().Get(httpapi.RequestIDHeader), 26)
	})
}

func TestRecordsRequests(t *testing.T) {
	rec := new(mockRequestRecorder)
	rec.On("RecordRequest", httpapi.RouteEvaluate, http.StatusOK).Return().Once()
	rec.On("RecordRequest", httpapi.RouteEvaluate, http.StatusBadRequest).Return().Once()
	rec.On("RecordRequest", httpapi.RouteRules, http.StatusOK).Return().Once()

	h := newHandler(t, pwpolicy.Policy{}, httpapi.WithRequestRecorder(rec))
	post(t, h, `{"password":"x"}`)
	post(t, h, `{`)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/password/rules", nil))

	rec.AssertExpectations(t)
}

func TestServer_Lifecycle(t *testing.T) {
	srv := httpapi.NewServer("127.0.0.1:0", newHandler(t, pwpolicy.Policy{}))
	assert.Empty(t, srv.Addr())

	errCh, err := srv.Start()
	require.NoError(t, err)

	_, err = srv.Start()
	require.Error(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post("http://"+srv.Addr()+"/v1/password/evaluate", "application/json",
		strings.NewReader(`{"password":"StrongPass123!"}`))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"isValid":true`)
	client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, srv.Stop(ctx), "second stop is a no-op")

	for err := range errCh {
		t.Fatalf("unexpected serve error: %v", err)
	}
}

func TestServer_ListenFailure(t *testing.T) {
	srv := httpapi.NewServer("256.0.0.1:bad", http.NotFoundHandler())
	_, err := srv.Start()
	require.Error(t, err)
}
