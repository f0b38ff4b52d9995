package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/ocrkit/receiptscan/internal/preprocess"
)

// Tesseract implements the Engine interface using a local Tesseract
// installation via gosseract. A fresh client is created per recognition, so
// the engine is safe for concurrent callers.
type Tesseract struct {
	languages []string
	opts      preprocess.Options
}

// NewTesseract creates a new Tesseract Engine instance. languages are
// Tesseract traineddata names such as "eng" or "deu"; empty defaults to
// English.
func NewTesseract(languages []string, opts preprocess.Options) (*Tesseract, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{languages: languages, opts: opts}, nil
}

// Recognize preprocesses the document and runs it through Tesseract.
func (t *Tesseract) Recognize(imageData []byte, contentType string) (string, error) {
	pngData, err := preprocess.Prepare(imageData, contentType, t.opts)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting tesseract languages: %w", err)
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("setting tesseract image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("running tesseract: %w", err)
	}
	return text, nil
}

// Close closes the Tesseract engine (no per-engine resources to release).
func (t *Tesseract) Close() error {
	return nil
}
