package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed"},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded", retryable: true},
		{code: CodeDecode, status: http.StatusBadGateway, publicMsg: "unexpected response shape"},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		code   Code
	}{
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusForbidden, CodeForbidden},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusConflict, CodeConflict},
		{http.StatusTooManyRequests, CodeRateLimit},
		{http.StatusUnprocessableEntity, CodeValidation},
		{http.StatusBadRequest, CodeValidation},
		{http.StatusInternalServerError, CodeDependency},
		{http.StatusBadGateway, CodeDependency},
	}
	for _, tt := range tests {
		if got := FromStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing listing id")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing listing id" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	cause := stdErrors.New("socket closed")
	wrapped := Wrap(CodeDependency, cause, "cart request failed")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("expected wrapped error to unwrap to cause")
	}
	if wrapped.Error() != fmt.Sprintf("%s: %s", CodeDependency, "cart request failed") {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsAndCodeOf(t *testing.T) {
	plain := stdErrors.New("plain")
	if As(plain) != nil {
		t.Fatalf("expected nil for untyped error")
	}
	if CodeOf(plain) != CodeInternal {
		t.Fatalf("untyped errors should map to internal")
	}

	typed := New(CodeNotFound, "listing gone")
	outer := fmt.Errorf("lookup: %w", typed)
	if got := As(outer); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("expected to find typed error through wrapping")
	}
	if !IsRetryable(Wrap(CodeDependency, plain, "x")) {
		t.Fatalf("dependency errors should be retryable")
	}
	if IsRetryable(typed) {
		t.Fatalf("not-found errors should not be retryable")
	}
}
