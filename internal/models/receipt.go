package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MethodOCR       = "OCR"
	MethodPDFParser = "PDF Parser"

	ConfidenceHigh = "High"
	ConfidenceLow  = "Low"
)

// UploadedDocument is a file handed over for one extraction request. The
// extraction pipeline owns Path and removes it before returning.
type UploadedDocument struct {
	Path     string
	MIMEType string
	Size     int64
}

type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptTimeout AttemptOutcome = "timeout"
	AttemptError   AttemptOutcome = "error"
)

// RecognitionAttempt is the result of one recognition pass over one variant.
// Confidence is meaningful only when Outcome is AttemptSuccess.
type RecognitionAttempt struct {
	Variant    string
	Text       string
	Confidence float64
	Outcome    AttemptOutcome
	Err        error
	Duration   time.Duration
}

// ExtractedExpenseData holds the fields recovered from receipt text. A nil
// Amount or Date and an empty Merchant mean the field was not found.
type ExtractedExpenseData struct {
	Amount       *decimal.Decimal
	Category     string
	Merchant     string
	Date         *time.Time
	Items        []ExpenseItem
	ParseWarning string
}

type ExtractionResult struct {
	ProcessingMethod string
	ExtractedText    string
	ExpenseData      ExtractedExpenseData
	Confidence       string
}
