package service

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	VariantOptimized = "optimized"
	VariantContrast  = "contrast"
	VariantThreshold = "threshold"

	defaultMinWidth = 2400
	thresholdLevel  = 128
)

// Variant is one enhanced copy of the input image written to disk.
type Variant struct {
	Label string
	Path  string
}

type ImagePreprocessor struct {
	minWidth int
	logger   *zap.Logger
}

func NewImagePreprocessor(minWidth int, logger *zap.Logger) *ImagePreprocessor {
	if minWidth <= 0 {
		minWidth = defaultMinWidth
	}
	return &ImagePreprocessor{
		minWidth: minWidth,
		logger:   logger,
	}
}

// Preprocess writes the optimized, contrast and threshold variants of srcPath
// into dir as PNG files. The caller owns dir and its removal.
func (p *ImagePreprocessor) Preprocess(ctx context.Context, srcPath, dir string) ([]Variant, error) {
	src, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	bounds := src.Bounds()
	p.logger.Info("Preprocessing receipt image",
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
		zap.String("format", strings.TrimPrefix(strings.ToLower(filepath.Ext(srcPath)), ".")),
	)

	base := normalize(p.upscale(src))

	builders := []struct {
		label string
		build func(*image.NRGBA) *image.NRGBA
	}{
		{VariantOptimized, func(img *image.NRGBA) *image.NRGBA {
			return imaging.Sharpen(img, 1.5)
		}},
		{VariantContrast, func(img *image.NRGBA) *image.NRGBA {
			stretched := linear(img, 1.5, -20)
			return imaging.Grayscale(imaging.Sharpen(stretched, 2))
		}},
		{VariantThreshold, func(img *image.NRGBA) *image.NRGBA {
			return threshold(imaging.Grayscale(img), thresholdLevel)
		}},
	}

	variants := make([]Variant, 0, len(builders))
	for _, b := range builders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, b.label+".png")
		if err := imaging.Save(b.build(base), path); err != nil {
			return nil, fmt.Errorf("failed to save %s variant: %w", b.label, err)
		}
		variants = append(variants, Variant{Label: b.label, Path: path})
	}

	return variants, nil
}

// upscale enlarges narrow images to minWidth and never shrinks wide ones.
func (p *ImagePreprocessor) upscale(img image.Image) *image.NRGBA {
	if img.Bounds().Dx() >= p.minWidth {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, p.minWidth, 0, imaging.Lanczos)
}

// normalize stretches the luminance range of img to span 0..255.
func normalize(img *image.NRGBA) *image.NRGBA {
	lo, hi := luminanceRange(img)
	if hi <= lo {
		return img
	}
	scale := 255 / (hi - lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = clamp((float64(c.R) - lo) * scale)
		c.G = clamp((float64(c.G) - lo) * scale)
		c.B = clamp((float64(c.B) - lo) * scale)
		return c
	})
}

func linear(img *image.NRGBA, gain, offset float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = clamp(float64(c.R)*gain + offset)
		c.G = clamp(float64(c.G)*gain + offset)
		c.B = clamp(float64(c.B)*gain + offset)
		return c
	})
}

// threshold maps a grayscale image to pure black and white.
func threshold(img *image.NRGBA, level uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R >= level {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
}

func luminanceRange(img *image.NRGBA) (float64, float64) {
	lo, hi := 255.0, 0.0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		l := 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
		if l < lo {
			lo = l
		}
		if l > hi {
			hi = l
		}
	}
	return lo, hi
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
