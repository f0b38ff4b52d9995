// Package preprocess normalizes uploaded receipt documents into clean PNG
// images that OCR engines read well: decode (PDF, HEIC, standard formats),
// downscale oversized photos, grayscale, median denoise and threshold.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// Threshold methods accepted by Options.Threshold.
const (
	ThresholdAdaptive = "adaptive"
	ThresholdOtsu     = "otsu"
	ThresholdNone     = "none"
)

// maxDimension caps the longer image side; phone photos well above this only
// slow OCR down without improving recognition.
const maxDimension = 2400

// Options configures the preprocessing pipeline.
type Options struct {
	// Grayscale converts the image to 8-bit grayscale before filtering.
	// Threshold and Denoise require it and are skipped when it is off.
	Grayscale bool
	// Threshold selects the binarization method: "adaptive", "otsu" or "none".
	Threshold string
	// Denoise is the median filter radius; 0 disables denoising.
	Denoise int
}

// DefaultOptions mirrors the pipeline that works best on printed receipts:
// grayscale, light median blur, adaptive mean threshold.
func DefaultOptions() Options {
	return Options{
		Grayscale: true,
		Threshold: ThresholdAdaptive,
		Denoise:   1,
	}
}

// Validate checks the threshold method name.
func (o Options) Validate() error {
	switch o.Threshold {
	case ThresholdAdaptive, ThresholdOtsu, ThresholdNone:
		return nil
	default:
		return fmt.Errorf("unknown threshold method %q (valid: adaptive, otsu, none)", o.Threshold)
	}
}

// Prepare runs the full pipeline on an uploaded document and returns PNG
// bytes ready for an OCR engine.
func Prepare(data []byte, contentType string, opts Options) ([]byte, error) {
	img, err := decode(data, contentType)
	if err != nil {
		return nil, err
	}

	img = downscale(img)

	if opts.Grayscale {
		gray := toGray(img)
		if opts.Denoise > 0 {
			gray = medianFilter(gray, opts.Denoise)
		}
		switch opts.Threshold {
		case ThresholdAdaptive:
			gray = adaptiveThreshold(gray)
		case ThresholdOtsu:
			gray = otsuThreshold(gray)
		}
		img = gray
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale resamples images whose longer side exceeds maxDimension.
func downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longer := w
	if h > longer {
		longer = h
	}
	if longer <= maxDimension {
		return img
	}

	scale := float64(maxDimension) / float64(longer)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// toGray converts any image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
