// errors.go - Retry logic and error categorization for Gemini API calls

package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/quoc48/receipt-parser/internal/common"
	"google.golang.org/api/googleapi"
)

// RetryConfig defines retry behavior for model API calls. Retries happen
// inside one adapter call window; the arbitration engine never retries.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults for retry behavior
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        8 * time.Second,
	BackoffMultiple: 2.0,
}

// ModelError is a categorized model API error
type ModelError struct {
	OriginalError error
	Category      string
	StatusCode    int
	Message       string
	Retryable     bool
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d, retryable: %v)", e.Category, e.Message, e.StatusCode, e.Retryable)
}

func (e *ModelError) Unwrap() error {
	return e.OriginalError
}

// categorizeModelError analyzes an error and determines the retry strategy
func categorizeModelError(err error) *ModelError {
	if err == nil {
		return nil
	}

	modelErr := &ModelError{
		OriginalError: err,
		Category:      "unknown",
		Message:       err.Error(),
		Retryable:     false,
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		modelErr.StatusCode = apiErr.Code

		switch apiErr.Code {
		case 400:
			modelErr.Category = "bad_request"
			modelErr.Message = "Invalid request format or parameters"
		case 401, 403:
			modelErr.Category = "unauthorized"
			modelErr.Message = "Invalid API key or missing permissions"
		case 404:
			modelErr.Category = "not_found"
			modelErr.Message = "Model not found or invalid endpoint"
		case 413:
			modelErr.Category = "payload_too_large"
			modelErr.Message = "Request size exceeds limit (reduce image size)"
		case 429:
			modelErr.Category = "rate_limit"
			modelErr.Message = "Rate limit exceeded - too many requests"
			modelErr.Retryable = true
		case 500, 502, 503, 504:
			modelErr.Category = "server_error"
			modelErr.Message = fmt.Sprintf("Gemini server error (%d)", apiErr.Code)
			modelErr.Retryable = true
		default:
			modelErr.Category = "unknown_api_error"
			modelErr.Message = fmt.Sprintf("API error: %s", apiErr.Message)
			modelErr.Retryable = apiErr.Code >= 500
		}

		return modelErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		modelErr.Category = "timeout"
		modelErr.Message = "Request timeout - processing took too long"
		return modelErr
	}

	if errors.Is(err, context.Canceled) {
		modelErr.Category = "canceled"
		modelErr.Message = "Request was canceled"
		return modelErr
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "resource exhausted"):
		modelErr.Category = "quota_exceeded"
		modelErr.Message = "API quota exceeded"
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline"):
		modelErr.Category = "timeout"
		modelErr.Message = "Request timeout"
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network"):
		modelErr.Category = "network_error"
		modelErr.Message = "Network connection error"
		modelErr.Retryable = true
	}

	return modelErr
}

// GenerateWithRetry executes a Gemini API call with categorized retries.
// The deadline on ctx bounds the whole window including backoff waits.
func GenerateWithRetry(
	ctx context.Context,
	model *genai.GenerativeModel,
	reqCtx *common.RequestContext,
	config RetryConfig,
	parts ...genai.Part,
) (*genai.GenerateContentResponse, error) {

	var lastErr *ModelError

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if attempt > 1 {
			reqCtx.LogInfo("Retry attempt %d/%d", attempt, config.MaxAttempts)
		}

		resp, err := model.GenerateContent(ctx, parts...)
		if err == nil {
			return resp, nil
		}

		lastErr = categorizeModelError(err)
		reqCtx.LogError("API call failed (attempt %d/%d): %s", attempt, config.MaxAttempts, lastErr.Error())

		if !lastErr.Retryable {
			return nil, lastErr
		}

		if attempt >= config.MaxAttempts {
			break
		}

		delay := calculateBackoff(attempt, config)
		if lastErr.Category == "rate_limit" {
			delay *= 2
			reqCtx.LogWarning("Rate limit hit, waiting %v before retry", delay)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context done during retry wait: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("gemini API call failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

// calculateBackoff computes exponential backoff delay capped at MaxDelay
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
