package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeUnreachable represents transport or timeout failures
	ErrorTypeUnreachable ErrorType = "unreachable"
	// ErrorTypeMerchantInfo represents a landing page without merchant markers
	ErrorTypeMerchantInfo ErrorType = "merchant_info"
	// ErrorTypeLogin represents a rejected or unparseable login response
	ErrorTypeLogin ErrorType = "login"
	// ErrorTypeToken represents a success login response missing credentials
	ErrorTypeToken ErrorType = "token"
	// ErrorTypeAPI represents an upstream business failure or bad JSON
	ErrorTypeAPI ErrorType = "api"
	// ErrorTypeShape represents upstream data of an unexpected shape
	ErrorTypeShape ErrorType = "shape"
	// ErrorTypeSink represents an output sink write failure
	ErrorTypeSink ErrorType = "sink"
	// ErrorTypeRateLimit represents rate limiting by the upstream
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scraper-specific error tied to one site
type ScrapeError struct {
	Type    ErrorType
	Site    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Site, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Site, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if a later run may succeed without changes
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeUnreachable, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// Reason returns a short tag for run summaries
func (e *ScrapeError) Reason() string {
	switch e.Type {
	case ErrorTypeUnreachable:
		return "Unreachable"
	case ErrorTypeMerchantInfo:
		return "No Merchant Info"
	case ErrorTypeLogin:
		return "Login Fail"
	case ErrorTypeToken:
		return "No Token"
	case ErrorTypeAPI:
		return "API Err"
	case ErrorTypeSink:
		return "Sink Err"
	case ErrorTypeRateLimit:
		return "Rate Limited"
	default:
		return string(e.Type)
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, site, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Site:    site,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewUnreachable creates a new transport/timeout error
func NewUnreachable(site, message string, err error) *ScrapeError {
	return New(ErrorTypeUnreachable, site, message, err)
}

// NewMerchantInfo creates a new missing-merchant-info error
func NewMerchantInfo(site, message string) *ScrapeError {
	return New(ErrorTypeMerchantInfo, site, message, nil)
}

// NewLogin creates a new login failure error
func NewLogin(site, message string, err error) *ScrapeError {
	return New(ErrorTypeLogin, site, message, err)
}

// NewToken creates a new missing-token error
func NewToken(site, message string) *ScrapeError {
	return New(ErrorTypeToken, site, message, nil)
}

// NewAPI creates a new upstream API error
func NewAPI(site, message string, err error) *ScrapeError {
	return New(ErrorTypeAPI, site, message, err)
}

// NewShape creates a new data shape error
func NewShape(site, message string) *ScrapeError {
	return New(ErrorTypeShape, site, message, nil)
}

// NewSink creates a new sink write error
func NewSink(site, message string, err error) *ScrapeError {
	return New(ErrorTypeSink, site, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(site string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, site, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of err, or an empty string for foreign errors
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}

// ReasonOf returns the summary tag of err, falling back to a generic tag
func ReasonOf(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Reason()
	}
	return "Error"
}

// IsUnreachable reports whether err is a transport/timeout failure
func IsUnreachable(err error) bool {
	return TypeOf(err) == ErrorTypeUnreachable
}

// IsSink reports whether err is a sink write failure
func IsSink(err error) bool {
	return TypeOf(err) == ErrorTypeSink
}
