package ai

import (
	"errors"
	"net/http"

	"github.com/openai/openai-go"
)

// Retryable classifies an upstream failure for the caller. Client-side
// mistakes (bad request, auth) are not worth retrying; everything else,
// including timeouts and rate limits, is.
func Retryable(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return true
		default:
			return apierr.StatusCode >= 500
		}
	}

	return true
}
