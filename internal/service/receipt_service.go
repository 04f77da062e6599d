package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"expense-tracker/internal/models"
	"expense-tracker/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultMaxUploadBytes = 10 << 20
	defaultMinTextLength  = 10

	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimePDF  = "application/pdf"
)

// TextExtractor produces raw text from receipt images and PDFs.
type TextExtractor interface {
	RecognizeImage(ctx context.Context, imagePath string) (*models.RecognitionAttempt, error)
	ExtractPDFText(ctx context.Context, pdfPath string) (string, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, e *models.Expense) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Expense, error)
}

// ReceiptExpenseInput is the user-confirmed result of an extraction.
type ReceiptExpenseInput struct {
	Amount   decimal.Decimal
	Category string
	Merchant string
	Date     string
	Items    []models.ExpenseItem
}

type ReceiptServiceConfig struct {
	MaxUploadBytes int64
	MinTextLength  int
}

type ReceiptService struct {
	extractor     TextExtractor
	expenses      ExpenseStore
	maxBytes      int64
	minTextLength int
	metrics       *metrics.OCRMetrics
	logger        *zap.Logger
	now           func() time.Time
}

func NewReceiptService(extractor TextExtractor, expenses ExpenseStore, cfg ReceiptServiceConfig, m *metrics.OCRMetrics, logger *zap.Logger) *ReceiptService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = defaultMinTextLength
	}
	return &ReceiptService{
		extractor:     extractor,
		expenses:      expenses,
		maxBytes:      cfg.MaxUploadBytes,
		minTextLength: cfg.MinTextLength,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// Extract turns an uploaded receipt into structured expense data. The uploaded
// file is removed before Extract returns, whatever the outcome.
func (s *ReceiptService) Extract(ctx context.Context, doc models.UploadedDocument) (result *models.ExtractionResult, err error) {
	start := time.Now()
	method := models.MethodOCR

	defer func() {
		if rmErr := os.Remove(doc.Path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("Failed to remove uploaded file", zap.String("path", doc.Path), zap.Error(rmErr))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Receipt extraction panicked", zap.Any("panic", r), zap.Stack("stack"))
			result, err = nil, NewInternalError(fmt.Errorf("panic: %v", r))
		}

		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusFailure
		}
		s.metrics.ObserveExtraction(method, status, time.Since(start))
	}()

	mimeType, err := s.validate(doc)
	if err != nil {
		s.logger.Info("Rejected receipt upload", zap.String("mime_type", doc.MIMEType), zap.Int64("size", doc.Size), zap.Error(err))
		return nil, err
	}

	var text string
	if mimeType == mimePDF {
		method = models.MethodPDFParser
		text, err = s.extractor.ExtractPDFText(ctx, doc.Path)
		if err != nil {
			s.logger.Error("PDF text extraction failed", zap.String("path", doc.Path), zap.Error(err))
			return nil, NewRecognitionFailedError(err)
		}
	} else {
		attempt, recErr := s.extractor.RecognizeImage(ctx, doc.Path)
		if recErr != nil {
			if errors.Is(recErr, ErrAllRecognitionFailed) {
				return nil, NewRecognitionFailedError(recErr)
			}
			s.logger.Error("Image recognition failed", zap.String("path", doc.Path), zap.Error(recErr))
			return nil, NewInternalError(recErr)
		}
		text = attempt.Text
	}

	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < s.minTextLength {
		s.logger.Info("Extracted text too short", zap.String("method", method), zap.Int("length", n))
		return nil, NewUnreadableContentError(n)
	}

	data := ParseReceiptText(text)

	confidence := models.ConfidenceLow
	if data.Amount != nil {
		confidence = models.ConfidenceHigh
	}

	s.logger.Info("Receipt extracted",
		zap.String("method", method),
		zap.String("confidence", confidence),
		zap.String("merchant", data.Merchant),
		zap.String("category", data.Category),
		zap.Int("items", len(data.Items)),
		zap.Duration("duration", time.Since(start)),
	)

	return &models.ExtractionResult{
		ProcessingMethod: method,
		ExtractedText:    text,
		ExpenseData:      data,
		Confidence:       confidence,
	}, nil
}

func (s *ReceiptService) validate(doc models.UploadedDocument) (string, error) {
	mimeType := normalizeMIME(doc.MIMEType)
	switch mimeType {
	case mimeJPEG, mimePNG, mimePDF:
	default:
		return "", NewValidationError(msgUnsupportedFileType, fmt.Errorf("%w: %q", ErrUnsupportedFileType, doc.MIMEType))
	}

	size := doc.Size
	if size <= 0 {
		info, err := os.Stat(doc.Path)
		if err != nil {
			return "", NewValidationError("Uploaded file is not readable", err)
		}
		size = info.Size()
	}
	if size > s.maxBytes {
		return "", NewValidationError(MsgFileTooLarge, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size))
	}

	return mimeType, nil
}

func normalizeMIME(declared string) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType = declared
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "image/jpg" || mediaType == "image/pjpeg" {
		return mimeJPEG
	}
	return mediaType
}

// Commit persists a user-confirmed extraction as a receipt-sourced expense.
func (s *ReceiptService) Commit(ctx context.Context, userID uuid.UUID, input ReceiptExpenseInput) (*models.Expense, error) {
	if userID == uuid.Nil {
		return nil, NewValidationError("User is required", errors.New("empty user id"))
	}
	if !input.Amount.IsPositive() {
		return nil, NewValidationError(msgInvalidAmount, ErrInvalidAmount)
	}

	date, err := parseExpenseDate(input.Date, s.now())
	if err != nil {
		return nil, NewValidationError("Invalid date format. Use YYYY-MM-DD.", err)
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = models.CategoryOther
	}
	merchant := strings.TrimSpace(input.Merchant)
	if merchant == "" {
		merchant = models.DefaultMerchant
	}
	items := input.Items
	if items == nil {
		items = []models.ExpenseItem{}
	}

	expense := &models.Expense{
		ID:        uuid.New(),
		UserID:    userID,
		Icon:      models.ReceiptIcon,
		Amount:    input.Amount.Round(2),
		Category:  category,
		Date:      date,
		Source:    models.SourceReceipt,
		Merchant:  merchant,
		Items:     items,
		CreatedAt: s.now().UTC(),
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, &ReceiptError{Code: ErrorInternal, Message: "Error adding expense", Cause: err}
	}

	s.logger.Info("Expense added from receipt",
		zap.String("expense_id", expense.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("amount", expense.Amount.StringFixed(2)),
	)
	return expense, nil
}

// parseExpenseDate accepts YYYY-MM-DD or RFC3339 and defaults to today (UTC).
func parseExpenseDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
