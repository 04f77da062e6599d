package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"expense-tracker/internal/models"
	"expense-tracker/pkg/metrics"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAttemptTimeout = 90 * time.Second
	pdfVariant            = "pdf-text-layer"
)

// Recognizer turns an image file into text and a 0..100 confidence score.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, float64, error)
}

// Preprocessor writes enhanced variants of an image into dir.
type Preprocessor interface {
	Preprocess(ctx context.Context, srcPath, dir string) ([]Variant, error)
}

type OCRService struct {
	recognizer     Recognizer
	preprocessor   Preprocessor
	attemptTimeout time.Duration
	tempDir        string
	metrics        *metrics.OCRMetrics
	logger         *zap.Logger
}

type OCRServiceConfig struct {
	AttemptTimeout time.Duration
	// TempDir is the parent of per-request scratch directories; empty means os.TempDir.
	TempDir string
}

func NewOCRService(recognizer Recognizer, preprocessor Preprocessor, cfg OCRServiceConfig, m *metrics.OCRMetrics, logger *zap.Logger) *OCRService {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	return &OCRService{
		recognizer:     recognizer,
		preprocessor:   preprocessor,
		attemptTimeout: cfg.AttemptTimeout,
		tempDir:        cfg.TempDir,
		metrics:        m,
		logger:         logger,
	}
}

// RecognizeImage preprocesses the image into variants, recognizes all of them
// concurrently and returns the attempt with the highest confidence. Variant
// files live in a scratch directory that is removed before returning.
func (s *OCRService) RecognizeImage(ctx context.Context, imagePath string) (*models.RecognitionAttempt, error) {
	dir, err := os.MkdirTemp(s.tempDir, "receipt-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("Failed to remove scratch directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	variants, err := s.preprocessor.Preprocess(ctx, imagePath, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess image: %w", err)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: no image variants produced", ErrAllRecognitionFailed)
	}

	attempts := make([]models.RecognitionAttempt, len(variants))

	var g errgroup.Group
	for i, v := range variants {
		g.Go(func() error {
			attempts[i] = s.runAttempt(ctx, v)
			return nil
		})
	}
	_ = g.Wait()

	best := selectBestAttempt(attempts)
	if best < 0 {
		errs := make([]error, 0, len(attempts))
		for _, a := range attempts {
			errs = append(errs, fmt.Errorf("%s: %w", a.Variant, a.Err))
		}
		s.logger.Error("All recognition attempts failed", zap.Int("attempts", len(attempts)), zap.Error(errors.Join(errs...)))
		return nil, fmt.Errorf("%w: %w", ErrAllRecognitionFailed, errors.Join(errs...))
	}

	winner := attempts[best]
	s.logger.Info("Selected recognition result",
		zap.String("variant", winner.Variant),
		zap.Float64("confidence", winner.Confidence),
		zap.Int("text_length", len(winner.Text)),
	)
	return &winner, nil
}

// runAttempt bounds one recognition pass by the attempt timeout. A pass that
// overruns is abandoned; its goroutine finishes into a buffered channel.
func (s *OCRService) runAttempt(ctx context.Context, v Variant) models.RecognitionAttempt {
	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()

	type result struct {
		text       string
		confidence float64
		err        error
	}
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("recognizer panic: %v", r)}
			}
		}()
		text, confidence, err := s.recognizer.Recognize(attemptCtx, v.Path)
		done <- result{text: text, confidence: confidence, err: err}
	}()

	attempt := models.RecognitionAttempt{Variant: v.Label}

	select {
	case r := <-done:
		attempt.Duration = time.Since(start)
		if r.err != nil {
			attempt.Outcome = models.AttemptError
			attempt.Err = r.err
		} else {
			attempt.Outcome = models.AttemptSuccess
			attempt.Text = cleanText(r.text)
			attempt.Confidence = r.confidence
		}
	case <-attemptCtx.Done():
		attempt.Duration = time.Since(start)
		attempt.Err = attemptCtx.Err()
		attempt.Outcome = models.AttemptError
		if errors.Is(attempt.Err, context.DeadlineExceeded) {
			attempt.Outcome = models.AttemptTimeout
		}
	}

	fields := []zap.Field{
		zap.String("variant", attempt.Variant),
		zap.String("outcome", string(attempt.Outcome)),
		zap.Duration("duration", attempt.Duration),
	}
	if attempt.Outcome == models.AttemptSuccess {
		s.logger.Info("Recognition attempt finished", append(fields, zap.Float64("confidence", attempt.Confidence))...)
	} else {
		s.logger.Warn("Recognition attempt failed", append(fields, zap.Error(attempt.Err))...)
	}
	s.metrics.ObserveAttempt(attempt.Variant, string(attempt.Outcome))

	return attempt
}

// selectBestAttempt returns the index of the successful attempt with the
// highest confidence, keeping the earliest on ties, or -1 if none succeeded.
func selectBestAttempt(attempts []models.RecognitionAttempt) int {
	best := -1
	for i, a := range attempts {
		if a.Outcome != models.AttemptSuccess {
			continue
		}
		if best < 0 || a.Confidence > attempts[best].Confidence {
			best = i
		}
	}
	return best
}

// ExtractPDFText reads the embedded text layer of every page.
func (s *OCRService) ExtractPDFText(ctx context.Context, pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		s.metrics.ObserveAttempt(pdfVariant, metrics.OutcomeError)
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", pdfPath),
				zap.Error(err),
			)
			continue
		}

		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := cleanText(strings.TrimSpace(textBuilder.String()))

	s.logger.Info("PDF text extracted",
		zap.String("file", pdfPath),
		zap.Int("pages", doc.NumPage()),
		zap.Int("text_length", len(text)),
	)
	s.metrics.ObserveAttempt(pdfVariant, metrics.OutcomeSuccess)

	return text, nil
}
