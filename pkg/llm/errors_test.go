package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		errType   ErrorType
		retryable bool
	}{
		{"unauthorized", errors.New("HTTP 401 unauthorized"), ErrorTypeAuth, false},
		{"rate limited", errors.New("HTTP 429 too many requests"), ErrorTypeEndpoint, true},
		{"server error", errors.New("HTTP 503 service unavailable"), ErrorTypeEndpoint, true},
		{"timeout", errors.New("context deadline exceeded"), ErrorTypeTimeout, true},
		{"unreachable", errors.New("dial tcp: connection refused"), ErrorTypeEndpoint, true},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyError(tt.err)
			require.NotNil(t, classified)
			assert.Equal(t, tt.errType, classified.Type)
			assert.Equal(t, tt.retryable, classified.IsRetryable())
			assert.ErrorIs(t, classified, tt.err)
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))
}

func TestErrorMessage(t *testing.T) {
	err := NewError(ErrorTypeAuth, "authentication failed", false, errors.New("HTTP 401"))
	assert.Contains(t, err.Error(), "auth")
	assert.Contains(t, err.Error(), "HTTP 401")
}
