// Package errors defines the error taxonomy for the matching engine.
//
// Every error carries a category, a specific code, and optional context
// and suggestion text. Background concerns (training, model promotion)
// use these for logging only; nothing in this package ever aborts a
// match evaluation.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryParse         ErrorCategory = "parse"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryTraining      ErrorCategory = "training"
	CategoryMatching      ErrorCategory = "matching"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeInvalidWeight ErrorCode = "invalid_weight"

	// Training errors
	CodeInsufficientSamples ErrorCode = "insufficient_samples"
	CodeTrainingFailed      ErrorCode = "training_failed"
	CodePromotionRejected   ErrorCode = "promotion_rejected"
	CodeUnknownStrategy     ErrorCode = "unknown_strategy"

	// Matching errors
	CodeStrategyFailed ErrorCode = "strategy_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// EngineError is the base error type for the matching engine
type EngineError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *EngineError) WithSuggestion(suggestion string) *EngineError {
	e.Suggestion = suggestion
	return e
}

// stackTracer is the interface pkg/errors values expose their trace on.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new EngineError
func New(category ErrorCategory, code ErrorCode, message string) *EngineError {
	return &EngineError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with EngineError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *EngineError {
	if err == nil {
		return nil
	}

	return &EngineError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// TrainingError creates a training-related error carrying the strategy
// and training snapshot it belongs to.
func TrainingError(code ErrorCode, strategy, snapshotID string, err error) *EngineError {
	var message, suggestion string

	switch code {
	case CodeInsufficientSamples:
		message = fmt.Sprintf("not enough feedback samples to train strategy %q", strategy)
		suggestion = "continue collecting feedback; training triggers automatically"
	case CodeTrainingFailed:
		message = fmt.Sprintf("training failed for strategy %q", strategy)
		suggestion = "the previously promoted model remains active"
	case CodePromotionRejected:
		message = fmt.Sprintf("candidate model for strategy %q did not improve test F1", strategy)
		suggestion = "the previously promoted model remains active"
	case CodeUnknownStrategy:
		message = fmt.Sprintf("unknown strategy %q", strategy)
		suggestion = "check the strategy identifier"
	default:
		message = fmt.Sprintf("training error for strategy %q", strategy)
	}

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryTraining, code, message)
	} else {
		result = New(CategoryTraining, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("strategy", strategy).
		WithContext("snapshot_id", snapshotID)
}

// ConfigError creates a configuration-related error
func ConfigError(code ErrorCode, field string, value interface{}) *EngineError {
	message := fmt.Sprintf("invalid configuration field %q: %v", field, value)
	return New(CategoryConfiguration, code, message).
		WithContext("field", field).
		WithContext("value", value)
}

// ParseError creates a parsing-related error for record ingestion
func ParseError(code ErrorCode, file string, line int, column string, err error) *EngineError {
	var message string
	switch code {
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column %q in %s", column, file)
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in %s at line %d, column %q", file, line, column)
	default:
		message = fmt.Sprintf("parse error in %s at line %d", file, line)
	}

	var result *EngineError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column)
}

// GetCategory extracts the category from an error, or CategoryInternal
// for foreign errors.
func GetCategory(err error) ErrorCategory {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Category
	}
	return CategoryInternal
}

// IsCategory reports whether the error belongs to the given category
func IsCategory(err error, category ErrorCategory) bool {
	return GetCategory(err) == category
}
