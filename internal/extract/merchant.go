package extract

import (
	"regexp"
	"strings"
)

// merchantStoplist holds header words that commonly appear above the actual
// business name on printed receipts.
var merchantStoplist = map[string]struct{}{
	"receipt":       {},
	"invoice":       {},
	"tax invoice":   {},
	"cash receipt":  {},
	"sales receipt": {},
	"original":      {},
	"copy":          {},
	"duplicate":     {},
	"welcome":       {},
	"thank you":     {},
}

var (
	businessKeywordRe = regexp.MustCompile(`(?i)\b(restaurant|store|hotel|cafe|mart|shop|company|llc|inc|ltd)\b`)
	spacesRe          = regexp.MustCompile(`\s+`)
)

const maxMerchantLen = 64

// extractMerchant picks the first non-empty, mostly-alphabetic line that is
// not a stoplisted header word. A later line containing a business-type
// keyword overrides the positional choice.
func extractMerchant(lines []string) *string {
	var first string

	for _, raw := range lines {
		line := cleanMerchantLine(raw)
		if line == "" || !looksLikeName(line) {
			continue
		}
		if _, stopped := merchantStoplist[strings.ToLower(strings.Trim(line, " .:*-"))]; stopped {
			continue
		}
		if first == "" {
			first = line
		}
		if businessKeywordRe.MatchString(line) {
			return &line
		}
	}

	if first == "" {
		return nil
	}
	return &first
}

func cleanMerchantLine(raw string) string {
	line := strings.TrimSpace(raw)
	line = spacesRe.ReplaceAllString(line, " ")
	if len(line) > maxMerchantLen {
		line = strings.TrimSpace(line[:maxMerchantLen])
	}
	return line
}

// looksLikeName requires at least two letters and more letters than digits,
// which filters out dividers, totals and barcode lines.
func looksLikeName(line string) bool {
	var letters, digits int
	for _, r := range line {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letters++
		case r >= '0' && r <= '9':
			digits++
		}
	}
	return letters >= 2 && letters > digits
}
