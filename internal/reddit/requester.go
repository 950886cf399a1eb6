package reddit

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
	"github.com/dsaidinesh/adsynth-backedn/pkg/errors"
)

// requester performs GET requests with retry on transport errors, 429 and 5xx.
// Consecutive exhausted requests open a shared circuit.
type requester struct {
	httpClient     *http.Client
	userAgent      string
	maxAttempts    int
	baseDelay      time.Duration
	jitter         time.Duration
	circuitBreaker *util.CircuitBreaker
	logger         *zap.Logger
}

func newRequester(httpClient *http.Client, name, userAgent string, logger *zap.Logger) *requester {
	if userAgent == "" {
		userAgent = constants.APIConfig.DefaultUserAgent
	}
	return &requester{
		httpClient:  httpClient,
		userAgent:   userAgent,
		maxAttempts: constants.APIConfig.MaxRetryAttempts,
		baseDelay:   constants.RetryConfig.BaseDelay,
		jitter:      constants.RetryConfig.Jitter,
		circuitBreaker: util.NewCircuitBreaker(
			name,
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		logger: logger,
	}
}

func (r *requester) get(ctx context.Context, source, query, reqURL string) ([]byte, error) {
	if !r.circuitBreaker.CanExecute() {
		r.logger.Warn("Search circuit open, skipping request",
			zap.String("source", source),
			zap.String("query", query),
		)
		return nil, errors.NewSearchError("search circuit open", source, query, http.StatusServiceUnavailable, nil)
	}

	var lastErr error
	lastStatus := 0

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.computeDelay(attempt - 1)
			r.logger.Warn("Search request failed, retrying",
				zap.String("source", source),
				zap.Int("attempt", attempt+1),
				zap.Int("status", lastStatus),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, errors.NewSearchError("search cancelled", source, query, lastStatus, ctx.Err())
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, errors.NewSearchError("failed to build request", source, query, 0, err)
		}
		req.Header.Set("User-Agent", r.userAgent)

		resp, err := r.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.NewSearchError("search cancelled", source, query, 0, ctx.Err())
			}
			lastErr = err
			lastStatus = 0
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, constants.APIConfig.MaxResponseBytes))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			lastStatus = resp.StatusCode
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			lastStatus = resp.StatusCode
			continue
		case resp.StatusCode >= 400:
			return nil, errors.NewSearchError(
				fmt.Sprintf("search request rejected with status %d", resp.StatusCode),
				source, query, resp.StatusCode, nil,
			)
		}

		r.circuitBreaker.RecordSuccess()
		return body, nil
	}

	if lastStatus == http.StatusTooManyRequests {
		r.circuitBreaker.RecordFailure(constants.CircuitBreakerConfig.RateLimitTimeout)
	} else {
		r.circuitBreaker.RecordFailure(0)
	}

	return nil, errors.NewSearchError("search request failed after retries", source, query, lastStatus, lastErr)
}

func (r *requester) computeDelay(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if r.jitter <= 0 {
		return base
	}
	jitter := time.Duration(rand.Float64() * float64(r.jitter))
	return base + jitter
}
