package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNew_RetryableDetection(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeTimeout, true},
		{ErrCodeServiceUnavailable, true},
		{ErrCodeDatabaseError, true},
		{ErrCodeRateLimited, true},
		{ErrCodeNotFound, false},
		{ErrCodeInvalidInput, false},
		{ErrCodeInternal, false},
	}
	for _, tc := range tests {
		err := New(tc.code, "msg", http.StatusTeapot)
		if err.Retryable != tc.retryable {
			t.Errorf("%s: retryable = %v, want %v", tc.code, err.Retryable, tc.retryable)
		}
		if err.HTTPStatus != http.StatusTeapot {
			t.Errorf("%s: status = %d", tc.code, err.HTTPStatus)
		}
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"not found", NotFound("image", "42"), ErrCodeNotFound, http.StatusNotFound},
		{"invalid input", InvalidInput("url", "must be absolute"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"missing field", MissingField("url"), ErrCodeMissingField, http.StatusBadRequest},
		{"invalid format", InvalidFormat("url", "http(s) URL"), ErrCodeInvalidFormat, http.StatusBadRequest},
		{"unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden(""), ErrCodeForbidden, http.StatusForbidden},
		{"expired", TokenExpired(), ErrCodeTokenExpired, http.StatusUnauthorized},
		{"invalid token", InvalidToken(), ErrCodeInvalidToken, http.StatusUnauthorized},
		{"internal", Internal(fmt.Errorf("boom")), ErrCodeInternal, http.StatusInternalServerError},
		{"database", DatabaseError(fmt.Errorf("locked")), ErrCodeDatabaseError, http.StatusInternalServerError},
		{"external", ExternalServiceError("redis", nil), ErrCodeExternalService, http.StatusBadGateway},
		{"unavailable", ServiceUnavailable("stream"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"connection", ConnectionFailed("redis"), ErrCodeConnectionFailed, http.StatusServiceUnavailable},
		{"timeout", Timeout("publish"), ErrCodeTimeout, http.StatusGatewayTimeout},
		{"rate limited", RateLimited(1500 * time.Millisecond), ErrCodeRateLimited, http.StatusTooManyRequests},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("code = %s, want %s", tc.err.Code, tc.code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("status = %d, want %d", tc.err.HTTPStatus, tc.status)
			}
		})
	}
}

func TestRateLimited_RetryAfter(t *testing.T) {
	err := RateLimited(1500 * time.Millisecond)
	if err.Details["retry_after_seconds"] != 2 || !err.Retryable {
		t.Errorf("details = %v retryable = %v", err.Details, err.Retryable)
	}
}

func TestNotFound_EmptyID(t *testing.T) {
	err := NotFound("image", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestUnwrapAndAs(t *testing.T) {
	cause := fmt.Errorf("disk full")
	wrapped := fmt.Errorf("store: %w", DatabaseError(cause))

	if !stderrors.Is(wrapped, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to find the AppError")
	}
	if appErr.Code != ErrCodeDatabaseError {
		t.Errorf("code = %s", appErr.Code)
	}
	if !IsAppError(wrapped) || !IsRetryable(wrapped) {
		t.Error("expected wrapped database error to be a retryable AppError")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors are not retryable")
	}
	if !strings.Contains(appErr.Error(), "disk full") {
		t.Errorf("Error() should include cause, got %q", appErr.Error())
	}
}

func TestWithDetailAndCause(t *testing.T) {
	err := Validation("bad").WithDetail("field", "url").WithCause(fmt.Errorf("x"))
	if err.Details["field"] != "url" {
		t.Errorf("details = %v", err.Details)
	}
	if err.Cause == nil {
		t.Error("expected cause to be set")
	}
}

func TestToResponse_JSON(t *testing.T) {
	body, err := json.Marshal(MissingField("url").ToResponse())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	e := decoded["error"]
	if e["code"] != string(ErrCodeMissingField) {
		t.Errorf("code = %v", e["code"])
	}
	if e["retryable"] != false {
		t.Errorf("retryable = %v", e["retryable"])
	}
	details, _ := e["details"].(map[string]any)
	if details["field"] != "url" {
		t.Errorf("details = %v", e["details"])
	}
}
