package helpers

import (
	"errors"
	"fmt"
	"sync/atomic"

	"crypto-compare/src/logger"
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	ErrFetchFailed         = errors.New("fetch failed")
	ErrComparisonFull      = errors.New("comparison is full")
	ErrIndexOutOfRange     = errors.New("comparison index out of range")
	ErrUnknownAsset        = errors.New("unknown asset")
	ErrRefreshInFlight     = errors.New("refresh already in flight")
	ErrUnknownCommand      = errors.New("unknown command")
	ErrInvalidSortOption   = errors.New("invalid sort option")
	ErrStoreNotInitialized = errors.New("store not initialized")
)

// ComparisonFullNotice is the user-facing message for ErrComparisonFull
const ComparisonFullNotice = "You can compare up to 5 cryptocurrencies at a time. Remove one to add another."

// FetchFailedNotice is the user-facing message for ErrFetchFailed
const FetchFailedNotice = "Error loading data. Please try again later."

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As
type ConfigurationError struct{ DashboardError }
type StorageError struct{ DashboardError }

// FetchError matches ErrFetchFailed under errors.Is in addition to its cause
type FetchError struct{ DashboardError }

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// -----------------------------------------------------------------------------

// NewFetchError wraps a transport or decode failure
func NewFetchError(message string, cause error) error {
	return &FetchError{DashboardError{Message: message, Cause: cause}}
}

// NewStorageError wraps a persistence failure
func NewStorageError(message string, cause error) error {
	return &StorageError{DashboardError{Message: message, Cause: cause}}
}

// NewConfigurationError wraps a setup failure
func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{DashboardError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs errors local to one action and keeps a running count.
// It never stops the caller.
type ErrorHandler struct {
	Logger     *logger.Logger
	errorCount atomic.Int64
}

func NewErrorHandler(l *logger.Logger) *ErrorHandler {
	if l == nil {
		l = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: l}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ErrorCount() int64 {
	return e.errorCount.Load()
}

func (e *ErrorHandler) ResetErrorCount() {
	e.errorCount.Store(0)
}

// -----------------------------------------------------------------------------

// Handle logs err with its context. User errors (full comparison, bad index)
// are logged as warnings, everything else as errors.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}
	e.errorCount.Add(1)

	if IsUserError(err) {
		e.Logger.Warning("%s: %v", context, err)
		return
	}
	e.Logger.Error("Error in %s: %v", context, err)
}

// IsUserError reports errors caused by the request rather than the system
func IsUserError(err error) bool {
	return errors.Is(err, ErrComparisonFull) ||
		errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrUnknownAsset) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidSortOption)
}
