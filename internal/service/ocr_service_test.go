package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"expense-tracker/internal/models"
	"expense-tracker/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fileVariantPreprocessor writes one placeholder file per label into dir.
type fileVariantPreprocessor struct {
	labels []string
	err    error
}

func (p *fileVariantPreprocessor) Preprocess(_ context.Context, _ string, dir string) ([]Variant, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []Variant
	for _, l := range p.labels {
		path := filepath.Join(dir, l+".png")
		if err := os.WriteFile(path, []byte("img"), 0o600); err != nil {
			return nil, err
		}
		out = append(out, Variant{Label: l, Path: path})
	}
	return out, nil
}

type recognizeFunc func(ctx context.Context, imagePath string) (string, float64, error)

type funcRecognizer map[string]recognizeFunc

func (r funcRecognizer) Recognize(ctx context.Context, imagePath string) (string, float64, error) {
	label := strings.TrimSuffix(filepath.Base(imagePath), ".png")
	return r[label](ctx, imagePath)
}

func succeed(text string, confidence float64) recognizeFunc {
	return func(context.Context, string) (string, float64, error) { return text, confidence, nil }
}

func fail(err error) recognizeFunc {
	return func(context.Context, string) (string, float64, error) { return "", 0, err }
}

// hang ignores its context and outlives any attempt timeout used in these tests.
func hang() recognizeFunc {
	return func(context.Context, string) (string, float64, error) {
		time.Sleep(2 * time.Second)
		return "late", 99, nil
	}
}

func allVariants() *fileVariantPreprocessor {
	return &fileVariantPreprocessor{labels: []string{VariantOptimized, VariantContrast, VariantThreshold}}
}

func newTestOCRService(t *testing.T, rec Recognizer, pre Preprocessor) (*OCRService, string) {
	t.Helper()
	tempDir := t.TempDir()
	svc := NewOCRService(rec, pre, OCRServiceConfig{AttemptTimeout: 50 * time.Millisecond, TempDir: tempDir}, metrics.NewOCRMetrics(), zap.NewNop())
	return svc, tempDir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch files left behind")
}

func TestRecognizeImage_OneSuccessTwoTimeouts(t *testing.T) {
	rec := funcRecognizer{
		VariantOptimized: hang(),
		VariantContrast:  succeed("TOTAL 12.00", 61),
		VariantThreshold: hang(),
	}
	svc, tempDir := newTestOCRService(t, rec, allVariants())

	attempt, err := svc.RecognizeImage(context.Background(), "upload.png")
	require.NoError(t, err)
	assert.Equal(t, VariantContrast, attempt.Variant)
	assert.Equal(t, 61.0, attempt.Confidence)
	assert.Equal(t, "TOTAL 12.00", attempt.Text)
	assertDirEmpty(t, tempDir)
}

func TestRecognizeImage_AllFail(t *testing.T) {
	rec := funcRecognizer{
		VariantOptimized: fail(errors.New("engine crashed")),
		VariantContrast:  hang(),
		VariantThreshold: fail(errors.New("bad image")),
	}
	svc, tempDir := newTestOCRService(t, rec, allVariants())

	attempt, err := svc.RecognizeImage(context.Background(), "upload.png")
	assert.Nil(t, attempt)
	assert.ErrorIs(t, err, ErrAllRecognitionFailed)
	assert.ErrorContains(t, err, "engine crashed")
	assertDirEmpty(t, tempDir)
}

func TestRecognizeImage_HighestConfidenceWins(t *testing.T) {
	rec := funcRecognizer{
		VariantOptimized: succeed("a", 70),
		VariantContrast:  succeed("b", 88.5),
		VariantThreshold: succeed("c", 40),
	}
	svc, _ := newTestOCRService(t, rec, allVariants())

	attempt, err := svc.RecognizeImage(context.Background(), "upload.png")
	require.NoError(t, err)
	assert.Equal(t, "b", attempt.Text)
}

func TestRecognizeImage_RecognizerPanicIsContained(t *testing.T) {
	rec := funcRecognizer{
		VariantOptimized: func(context.Context, string) (string, float64, error) { panic("boom") },
		VariantContrast:  fail(errors.New("nope")),
		VariantThreshold: succeed("ok", 12),
	}
	svc, tempDir := newTestOCRService(t, rec, allVariants())

	attempt, err := svc.RecognizeImage(context.Background(), "upload.png")
	require.NoError(t, err)
	assert.Equal(t, "ok", attempt.Text)
	assertDirEmpty(t, tempDir)
}

func TestRecognizeImage_PreprocessFailure(t *testing.T) {
	svc, tempDir := newTestOCRService(t, funcRecognizer{}, &fileVariantPreprocessor{err: errors.New("corrupt jpeg")})

	_, err := svc.RecognizeImage(context.Background(), "upload.jpg")
	assert.ErrorContains(t, err, "corrupt jpeg")
	assert.NotErrorIs(t, err, ErrAllRecognitionFailed)
	assertDirEmpty(t, tempDir)
}

func TestSelectBestAttempt(t *testing.T) {
	tests := []struct {
		name     string
		attempts []models.RecognitionAttempt
		want     int
	}{
		{"none", nil, -1},
		{"all failed", []models.RecognitionAttempt{
			{Outcome: models.AttemptTimeout},
			{Outcome: models.AttemptError},
		}, -1},
		{"zero confidence still counts", []models.RecognitionAttempt{
			{Outcome: models.AttemptError},
			{Outcome: models.AttemptSuccess, Confidence: 0},
		}, 1},
		{"tie keeps first", []models.RecognitionAttempt{
			{Outcome: models.AttemptSuccess, Confidence: 50},
			{Outcome: models.AttemptSuccess, Confidence: 50},
		}, 0},
		{"failed attempt confidence ignored", []models.RecognitionAttempt{
			{Outcome: models.AttemptError, Confidence: 99},
			{Outcome: models.AttemptSuccess, Confidence: 10},
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectBestAttempt(tt.attempts))
		})
	}
}
