// Package ocr provides pluggable engines that turn a receipt document into
// raw text. Tesseract is the default; Gemini and Ollama wrap vision models
// prompted to transcribe the image verbatim. Every engine runs the
// preprocessing pipeline before recognition.
package ocr

// Engine defines the interface for text recognition back ends.
type Engine interface {
	// Recognize extracts the raw text from a receipt image or PDF. An empty
	// string is a valid result for an unreadable but well-formed input.
	Recognize(imageData []byte, contentType string) (string, error)
	// Close releases engine resources.
	Close() error
}

// transcribePrompt is the shared prompt used by the vision-model engines.
// The models act as plain OCR: text out, no interpretation.
const transcribePrompt = `You are performing OCR on a receipt or invoice image. Transcribe every piece of visible text exactly as it appears, preserving the line structure of the document: each printed line of the receipt becomes one line of output, top to bottom.

Important:
- Output ONLY the transcribed text
- Do not summarize, interpret, translate or reorder anything
- Do not add labels, commentary or markdown code blocks
- Keep numbers, currency symbols and dates exactly as printed
- If a word is unreadable, skip it rather than guessing`
