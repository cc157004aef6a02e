package gemini

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/jobmatch/internal/embedding"
	"github.com/spigell/jobmatch/internal/utils"
)

const (
	baseBackoff   = time.Second
	maxQuotaDelay = 30 * time.Second
)

var wait = utils.WaitFor

var retryDelayPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

func (e *Embedder) embedWithRetry(ctx context.Context, contents []*genai.Content) ([]embedding.Vector, error) {
	var lastErr error

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		vectors, err := e.embedContents(ctx, contents)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		delay, retryable := retryDelay(err, attempt)
		if !retryable || attempt == e.maxRetries {
			break
		}

		e.logger.Warn("gemini embed request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("inputs", len(contents)),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// retryDelay decides whether err is temporary and how long to wait before the next attempt.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return 0, false
	}

	backoff := baseBackoff << (attempt - 1)

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		if match := retryDelayPattern.FindStringSubmatch(apiErr.Message); match != nil {
			seconds, parseErr := strconv.ParseFloat(match[1], 64)
			if parseErr == nil {
				delay := time.Duration(seconds * float64(time.Second))
				if delay > maxQuotaDelay {
					return 0, false
				}
				return delay, true
			}
		}
		return backoff, true
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return backoff, true
	default:
		return 0, false
	}
}
