// Package extract turns raw OCR text into structured receipt fields.
//
// Extraction is heuristic and candidate-based: each field collects every
// token in the text that looks like a value for it, scores the candidates
// with a fixed rule order (keyword proximity, then pattern specificity,
// then position), and keeps the highest scorer. A field with no candidates
// is absent, which is a normal outcome and never an error.
package extract

import "time"

// Result holds the fields recovered from OCR text. A nil field means the
// text contained no confident match for it.
type Result struct {
	Amount   *float64   `json:"amount"`
	Date     *time.Time `json:"date"`
	Merchant *string    `json:"merchant"`
}

// Extract derives amount, date and merchant candidates from raw OCR text.
// It is a pure function: same input, same output, no side effects. Every
// returned value is derived from a substring of text.
func Extract(text string) Result {
	lines := splitLines(text)

	return Result{
		Amount:   extractAmount(lines),
		Date:     extractDate(lines),
		Merchant: extractMerchant(lines),
	}
}

// splitLines splits on newlines without trimming, so match positions stay
// meaningful within each line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line := text[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	return lines
}

// scoreKeyword, scoreCurrency and friends are the weights behind the rule
// order: keyword proximity always beats specificity, and specificity always
// beats position (position only breaks exact ties, earliest first).
const (
	scoreKeyword  = 100
	scoreCurrency = 10
	scoreSpecific = 5
	scoreDecimal  = 5
	scoreGrouping = 2
)
