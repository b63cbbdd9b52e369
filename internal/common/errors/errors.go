// Package errors provides standardized error handling for the bot
// orchestrator and its adapters.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Dispatch / registry errors
	ErrCodeUnknownBot ErrorCode = "UNKNOWN_BOT"

	// Adapter execution errors
	ErrCodeNavigationFailed      ErrorCode = "NAVIGATION_FAILED"
	ErrCodeElementNotFound       ErrorCode = "ELEMENT_NOT_FOUND"
	ErrCodeUploadFailed          ErrorCode = "UPLOAD_FAILED"
	ErrCodePaymentRejected       ErrorCode = "PAYMENT_REJECTED"
	ErrCodeOTPTimeout            ErrorCode = "OTP_TIMEOUT"
	ErrCodePortalTimeout         ErrorCode = "PORTAL_TIMEOUT"
	ErrCodeAccountCreationFailed ErrorCode = "ACCOUNT_CREATION_FAILED"
	ErrCodeMissingApplicantField ErrorCode = "MISSING_APPLICANT_FIELD"

	// Orchestrator side-effect errors
	ErrCodePersistenceFailed      ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInvalidWebhookPayload  ErrorCode = "INVALID_WEBHOOK_PAYLOAD"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	// The bare message is what ends up in a BotResult error field, so it has
	// to stand on its own without the code prefix.
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// ==========================
// 2. Error Constructors
// ==========================

// NewUnknownBotError creates the error recorded for an unresolvable bot
// identifier. The message format is part of the run-artifact contract.
func NewUnknownBotError(botID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownBot,
		Message:   fmt.Sprintf("Unknown bot: %s", botID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNavigationFailedError creates a retryable portal navigation error.
func NewNavigationFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNavigationFailed,
		Message:   "Portal navigation failed",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElementNotFoundError creates a non-retryable missing element error.
func NewElementNotFoundError(selector string) *StandardError {
	return &StandardError{
		Code:      ErrCodeElementNotFound,
		Message:   "Expected page element not found",
		Details:   fmt.Sprintf("selector: %s", selector),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadFailedError creates a retryable document upload error.
func NewUploadFailedError(document string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   "Document upload failed",
		Details:   fmt.Sprintf("document: %s, error: %s", document, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentRejectedError creates a non-retryable payment error.
func NewPaymentRejectedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentRejected,
		Message:   "Application fee payment rejected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOTPTimeoutError creates a retryable OTP wait timeout error.
func NewOTPTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOTPTimeout,
		Message:   "Timed out waiting for OTP confirmation",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPortalTimeoutError creates a retryable portal timeout error.
func NewPortalTimeoutError(step string) *StandardError {
	return &StandardError{
		Code:      ErrCodePortalTimeout,
		Message:   "Portal step timed out",
		Details:   fmt.Sprintf("step: %s", step),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAccountCreationFailedError creates a retryable account creation error.
func NewAccountCreationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAccountCreationFailed,
		Message:   "Account creation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingApplicantFieldError creates a non-retryable payload error. The
// dispatch core never validates payloads; adapters raise this when a field
// they require is absent.
func NewMissingApplicantFieldError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingApplicantField,
		Message:   fmt.Sprintf("Applicant payload missing required field '%s'", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a persistence error. It is logged and
// never propagated: the in-memory run record is still returned.
func NewPersistenceFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Failed to persist run artifact",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a notification delivery error.
// Delivery is at-most-once: logged, counted, swallowed.
func NewNotificationSendFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidWebhookPayloadError creates a non-retryable inbound payload error.
func NewInvalidWebhookPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWebhookPayload,
		Message:   "Webhook payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the per-step retry budget for a code. Retrying is an
// adapter concern; the dispatch core itself never retries.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeNavigationFailed,
		ErrCodeUploadFailed,
		ErrCodeAccountCreationFailed:
		return 3

	case ErrCodePortalTimeout,
		ErrCodeOTPTimeout:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "UNKNOWN_BOT"):
		return "REGISTRY"
	case strings.Contains(codeStr, "PAYMENT"):
		return "PAYMENT"
	case strings.Contains(codeStr, "UPLOAD"):
		return "DOCUMENTS"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "PERSISTENCE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "WEBHOOK") || strings.Contains(codeStr, "MISSING"):
		return "VALIDATION"
	default:
		return "PORTAL"
	}
}

// Normalize ensures any error is represented as a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
