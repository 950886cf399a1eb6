package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dsaidinesh/adsynth-backedn/internal/constants"
	"github.com/dsaidinesh/adsynth-backedn/internal/util"
)

// ErrCircuitOpen is reported when the primary backend is skipped by the breaker.
var ErrCircuitOpen = errors.New("primary provider unavailable (circuit open)")

// ModelInvoker is what agents generate through.
type ModelInvoker interface {
	GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, *GenerateMetadata)
	GenerateStructured(ctx context.Context, prompt string, opts *GenerateOptions) (*Response, *GenerateMetadata)
}

// ModelManager applies the agent fallback policy over a primary backend and a
// designated default backend.
type ModelManager struct {
	primary        *Adapter
	fallback       *Adapter
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	Primary Provider
	// Fallback is tried once with its default model. Nil disables fallback.
	Fallback Provider
}

func NewModelManager(cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	if cfg.Primary == nil {
		return nil, fmt.Errorf("primary provider is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mm := &ModelManager{
		primary: NewAdapter(cfg.Primary, logger),
		logger:  logger,
	}
	if cfg.Fallback != nil {
		mm.fallback = NewAdapter(cfg.Fallback, logger)
		logger.Info("Fallback provider enabled",
			zap.String("provider", cfg.Fallback.Name()),
			zap.String("model", cfg.Fallback.DefaultModel()),
		)
	}

	mm.circuitBreaker = util.NewCircuitBreaker(
		cfg.Primary.Name(),
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		logger,
	)
	return mm, nil
}

func (mm *ModelManager) ProviderName() string {
	return mm.primary.Name()
}

// ResolveModel returns the model a call with the given override would use.
func (mm *ModelManager) ResolveModel(requested string) string {
	if requested != "" {
		return requested
	}
	return mm.primary.DefaultModel()
}

// GenerateText never fails: after the primary and one fallback attempt it
// returns an inline error string and marks the metadata as failed.
func (mm *ModelManager) GenerateText(ctx context.Context, prompt string, opts *GenerateOptions) (string, *GenerateMetadata) {
	var options GenerateOptions
	if opts != nil {
		options = *opts
	}

	primaryErr := ErrCircuitOpen
	if mm.circuitBreaker.CanExecute() {
		resp, err := mm.primary.Generate(ctx, prompt, &options)
		if err == nil {
			mm.circuitBreaker.RecordSuccess()
			return resp.Text, &GenerateMetadata{Provider: resp.Provider, Model: resp.Model}
		}
		primaryErr = err
		mm.recordFailure(err)
	}

	if mm.fallback != nil {
		mm.logger.Warn("Primary provider failed, falling back",
			zap.String("primary", mm.primary.Name()),
			zap.String("fallback", mm.fallback.Name()),
			zap.Error(primaryErr),
		)

		fallbackOpts := options
		fallbackOpts.Model = ""
		resp, err := mm.fallback.Generate(ctx, prompt, &fallbackOpts)
		if err == nil {
			return resp.Text, &GenerateMetadata{
				Provider:     resp.Provider,
				Model:        resp.Model,
				UsedFallback: true,
			}
		}
		mm.logger.Error("Fallback provider failed", zap.String("fallback", mm.fallback.Name()), zap.Error(err))
	}

	return fmt.Sprintf("Error generating response: %v", primaryErr), &GenerateMetadata{
		Provider: mm.primary.Name(),
		Model:    mm.ResolveModel(options.Model),
		Failed:   true,
		Err:      primaryErr,
	}
}

// GenerateStructured never fails: backend errors come back as the safe
// default payload. There is no backend fallback for structured calls.
func (mm *ModelManager) GenerateStructured(ctx context.Context, prompt string, opts *GenerateOptions) (*Response, *GenerateMetadata) {
	model := mm.ResolveModel("")
	if opts != nil {
		model = mm.ResolveModel(opts.Model)
	}

	if !mm.circuitBreaker.CanExecute() {
		mm.logger.Warn("Primary provider circuit open, returning safe default", zap.String("provider", mm.primary.Name()))
		resp := safeDefaultResponse(ErrCircuitOpen, mm.primary.Name(), model)
		return resp, &GenerateMetadata{Provider: resp.Provider, Model: resp.Model, Defaulted: true, Err: resp.Err}
	}

	resp, err := mm.primary.Generate(ctx, prompt, opts)
	if err != nil {
		resp = safeDefaultResponse(err, mm.primary.Name(), model)
	}

	if resp.Defaulted {
		mm.recordFailure(resp.Err)
	} else {
		mm.circuitBreaker.RecordSuccess()
	}

	return resp, &GenerateMetadata{
		Provider:  resp.Provider,
		Model:     resp.Model,
		Defaulted: resp.Defaulted,
		Err:       resp.Err,
	}
}

func (mm *ModelManager) recordFailure(err error) {
	if !isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) CircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.Status()
}

var (
	statusCodePattern = regexp.MustCompile(`\b(5\d{2})\b`)
	jsonCodePattern   = regexp.MustCompile(`"code":\s*(\d{3})`)
)

func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}
	if isRateLimitError(err) {
		return true
	}
	if statusCodePattern.MatchString(msg) {
		return true
	}
	if matches := jsonCodePattern.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code >= 500 && code < 600
		}
	}
	return false
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "rate_limit") || strings.Contains(msg, "quota") {
		return true
	}
	if matches := jsonCodePattern.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code == 429
		}
	}
	return false
}
