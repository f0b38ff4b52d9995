package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ocrkit/receiptscan/internal/preprocess"
)

// Gemini implements the Engine interface using a Google Gemini vision model
// as a remote OCR back end.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	opts   preprocess.Options
}

// NewGemini creates a new Gemini Engine instance.
func NewGemini(apiKey string, modelName string, opts preprocess.Options) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
		opts:   opts,
	}, nil
}

// Recognize preprocesses the document and asks the model for a verbatim
// transcription.
func (g *Gemini) Recognize(imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pngData, err := preprocess.Prepare(imageData, contentType, g.opts)
	if err != nil {
		return "", err
	}

	// genai.ImageData expects just the format suffix, and preprocessing
	// always produces PNG.
	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(transcribePrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return stripCodeFences(responseText.String()), nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// stripCodeFences removes markdown fences that vision models occasionally
// wrap transcriptions in despite the prompt.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
