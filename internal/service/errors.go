package service

import (
	"errors"
	"fmt"
)

// ErrorCode classifies receipt pipeline failures for the HTTP boundary.
type ErrorCode string

const (
	ErrorValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrorRecognitionFailed ErrorCode = "RECOGNITION_FAILED"
	ErrorUnreadableContent ErrorCode = "UNREADABLE_CONTENT"
	ErrorInternal          ErrorCode = "INTERNAL"
)

var (
	ErrAllRecognitionFailed = errors.New("all recognition attempts failed")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDate          = errors.New("invalid date")
	ErrMissingFile          = errors.New("no file uploaded")
	ErrNoExpenses           = errors.New("no expenses found")
)

// MsgFileTooLarge is also returned when the HTTP layer rejects an oversized body.
const MsgFileTooLarge = "File too large. Maximum size is 10MB."

const (
	msgUnsupportedFileType = "Unsupported file type. Please upload JPG, PNG, or PDF files."
	msgMissingFile         = "No file uploaded"
	msgAllRecognitionFail  = "All OCR attempts failed. Please try with a clearer image."
	msgUnreadableContent   = "Could not extract readable text from the uploaded file. Please ensure the image is clear and readable."
	msgInvalidAmount       = "Valid amount is required"
	msgInternal            = "Error processing receipt. Please try again with a clearer image or different file."
)

// ReceiptError carries a user-facing message alongside the underlying cause.
type ReceiptError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ReceiptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ReceiptError) Unwrap() error {
	return e.Cause
}

func NewValidationError(message string, cause error) *ReceiptError {
	return &ReceiptError{Code: ErrorValidationFailed, Message: message, Cause: cause}
}

func NewMissingFileError(cause error) *ReceiptError {
	return NewValidationError(msgMissingFile, fmt.Errorf("%w: %v", ErrMissingFile, cause))
}

func NewRecognitionFailedError(cause error) *ReceiptError {
	return &ReceiptError{Code: ErrorRecognitionFailed, Message: msgAllRecognitionFail, Cause: cause}
}

func NewUnreadableContentError(textLength int) *ReceiptError {
	return &ReceiptError{
		Code:    ErrorUnreadableContent,
		Message: msgUnreadableContent,
		Cause:   fmt.Errorf("extracted text has %d characters", textLength),
	}
}

func NewInternalError(cause error) *ReceiptError {
	return &ReceiptError{Code: ErrorInternal, Message: msgInternal, Cause: cause}
}

// AsReceiptError returns err as a *ReceiptError, wrapping unknown errors as INTERNAL.
func AsReceiptError(err error) *ReceiptError {
	var re *ReceiptError
	if errors.As(err, &re) {
		return re
	}
	return NewInternalError(err)
}
