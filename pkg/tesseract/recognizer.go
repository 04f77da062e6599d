// Package tesseract wraps the gosseract bindings. Building it requires cgo
// with the tesseract and leptonica headers installed.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

const (
	defaultLanguage = "eng"
	// Characters that show up on receipts; everything else is noise for the parser.
	receiptWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,$-:/ "
)

type Recognizer struct {
	language string
	logger   *zap.Logger
}

func NewRecognizer(language string, logger *zap.Logger) *Recognizer {
	if language == "" {
		language = defaultLanguage
	}
	return &Recognizer{language: language, logger: logger}
}

// Recognize runs one tesseract pass over the image and returns its text with
// the mean word confidence on a 0..100 scale. The call blocks until tesseract
// finishes; ctx is only checked before the engine starts.
func (r *Recognizer) Recognize(ctx context.Context, imagePath string) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return "", 0, fmt.Errorf("failed to set language %s: %w", r.language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", 0, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(receiptWhitelist); err != nil {
		return "", 0, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetVariable(gosseract.SettableVariable("preserve_interword_spaces"), "1"); err != nil {
		return "", 0, fmt.Errorf("failed to set preserve_interword_spaces: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", 0, fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to recognize text: %w", err)
	}

	confidence, err := meanConfidence(client)
	if err != nil {
		r.logger.Warn("Failed to read word confidences", zap.String("path", imagePath), zap.Error(err))
	}

	r.logger.Debug("Tesseract pass finished",
		zap.String("path", imagePath),
		zap.Int("text_length", len(text)),
		zap.Float64("confidence", confidence),
	)

	return text, confidence, nil
}

func meanConfidence(client *gosseract.Client) (float64, error) {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return 0, err
	}
	return averageConfidence(boxes), nil
}

func averageConfidence(boxes []gosseract.BoundingBox) float64 {
	if len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}
