package githubapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func serverError(status int) error {
	return &github.ErrorResponse{Response: &http.Response{StatusCode: status}}
}

func TestRetryWithBackoffSucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	result, err := retryWithBackoff(context.Background(), fastRetryConfig(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", serverError(http.StatusBadGateway)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffStopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := retryWithBackoff(context.Background(), fastRetryConfig(), func() (string, error) {
		calls++
		return "", serverError(http.StatusNotFound)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "client errors are not retried")
}

func TestRetryWithBackoffExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := retryWithBackoff(context.Background(), fastRetryConfig(), func() (int, error) {
		calls++
		return 0, serverError(http.StatusServiceUnavailable)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := retryWithBackoff(ctx, fastRetryConfig(), func() (string, error) {
		calls++
		cancel()
		return "", serverError(http.StatusInternalServerError)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&github.RateLimitError{}))
	assert.True(t, isRetryable(&github.AbuseRateLimitError{}))
	assert.True(t, isRetryable(serverError(http.StatusInternalServerError)))
	assert.True(t, isRetryable(serverError(http.StatusBadGateway)))

	assert.False(t, isRetryable(serverError(http.StatusUnauthorized)))
	assert.False(t, isRetryable(serverError(http.StatusNotFound)))
	assert.False(t, isRetryable(errors.New("plain error")))
}
