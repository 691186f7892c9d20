package ollama

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

func TestClassifyOllamaError(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{"context canceled", context.Canceled, false, false},
		{"retryable status", &HTTPStatusError{StatusCode: http.StatusServiceUnavailable}, true, true},
		{"throttled status", &HTTPStatusError{StatusCode: http.StatusTooManyRequests}, true, true},
		{"client error status", &HTTPStatusError{StatusCode: http.StatusBadRequest}, false, false},
		{"unknown error", errors.New("boom"), false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			class := classifyOllamaError(tc.err)
			if class.Retryable != tc.retryable || class.RecordFailure != tc.recordFailure {
				t.Fatalf("classify(%v) = %+v, want retryable=%v record=%v", tc.err, class, tc.retryable, tc.recordFailure)
			}
		})
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	wrapped := wrapTemporaryIfNeeded("generate", &HTTPStatusError{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway"})
	if !domain.IsKind(wrapped, domain.ErrTemporary) {
		t.Fatalf("expected retryable status wrapped as temporary, got %v", wrapped)
	}

	permanent := wrapTemporaryIfNeeded("generate", &HTTPStatusError{StatusCode: http.StatusBadRequest, Status: "400 Bad Request"})
	if domain.IsKind(permanent, domain.ErrTemporary) {
		t.Fatalf("client errors must not be temporary, got %v", permanent)
	}

	if wrapTemporaryIfNeeded("generate", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}
