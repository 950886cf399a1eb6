package errors

import "fmt"

// Error codes
const (
	CodePipeline   = "PIPELINE_ERROR"
	CodeConfig     = "CONFIG_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeProvider   = "PROVIDER_ERROR"
	CodeSearch     = "SEARCH_ERROR"
	CodeStore      = "STORE_ERROR"
	CodeCache      = "CACHE_ERROR"
)

type PipelineError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func NewPipelineError(message, code string, context map[string]any) *PipelineError {
	return &PipelineError{
		Message: message,
		Code:    code,
		Context: context,
	}
}

func (e *PipelineError) WithCause(cause error) *PipelineError {
	e.Cause = cause
	return e
}

// ConfigError is fatal and raised before any stage runs.
type ConfigError struct {
	*PipelineError
	Key string
}

func NewConfigError(message, key string) *ConfigError {
	return &ConfigError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeConfig,
			Context: map[string]any{"key": key},
		},
		Key: key,
	}
}

type ValidationError struct {
	*PipelineError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeValidation,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type ProviderError struct {
	*PipelineError
	Provider string
	Model    string
}

func NewProviderError(message, provider, model string, cause error) *ProviderError {
	return &ProviderError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeProvider,
			Context: map[string]any{
				"provider": provider,
				"model":    model,
			},
			Cause: cause,
		},
		Provider: provider,
		Model:    model,
	}
}

type SearchError struct {
	*PipelineError
	Source     string
	Query      string
	StatusCode int
}

func NewSearchError(message, source, query string, statusCode int, cause error) *SearchError {
	return &SearchError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeSearch,
			Context: map[string]any{
				"source": source,
				"query":  query,
				"status": statusCode,
			},
			Cause: cause,
		},
		Source:     source,
		Query:      query,
		StatusCode: statusCode,
	}
}

type StoreError struct {
	*PipelineError
	Operation string
	Target    string
}

func NewStoreError(message, operation, target string, cause error) *StoreError {
	return &StoreError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeStore,
			Context: map[string]any{
				"operation": operation,
				"target":    target,
			},
			Cause: cause,
		},
		Operation: operation,
		Target:    target,
	}
}

type CacheError struct {
	*PipelineError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		PipelineError: &PipelineError{
			Message: message,
			Code:    CodeCache,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}
