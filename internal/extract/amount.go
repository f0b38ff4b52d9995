package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Ordered alternation: grouped thousands first, then dot decimals, then
	// comma decimals, then bare integers. Go regexps prefer earlier
	// alternatives, so "12,000.00" is one token rather than "12," + "000.00".
	amountTokenRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+\.\d{1,2}|\d+,\d{1,2}|\d+`)

	amountKeywordRe  = regexp.MustCompile(`(?i)\b(grand\s+total|amount\s+due|balance\s+due|total|amount|paid)\b`)
	currencyBeforeRe = regexp.MustCompile(`(?i)(?:[$€£₹]|\b(?:usd|eur|gbp|inr|rs\.?))\s*$`)
	currencyAfterRe  = regexp.MustCompile(`(?i)^\s*(?:[$€£₹]|(?:usd|eur|gbp|inr)\b)`)
)

type amountCandidate struct {
	value float64
	score int
}

// extractAmount scans every line for monetary-looking tokens and keeps the
// best-scoring one. Tokens that are part of a date match are skipped, as are
// long bare digit runs (phone numbers, card numbers, barcodes).
func extractAmount(lines []string) *float64 {
	var best *amountCandidate

	for _, line := range lines {
		dateRanges := dateSpans(line)
		keywordLine := amountKeywordRe.MatchString(line)

		for _, loc := range amountTokenRe.FindAllStringIndex(line, -1) {
			if overlaps(loc, dateRanges) {
				continue
			}
			token := line[loc[0]:loc[1]]
			value, ok := parseAmountToken(token)
			if !ok {
				continue
			}

			score := 0
			if keywordLine {
				score += scoreKeyword
			}
			hasCurrency := currencyBeforeRe.MatchString(line[:loc[0]]) ||
				currencyAfterRe.MatchString(line[loc[1]:])
			if hasCurrency {
				score += scoreCurrency
			}
			if strings.ContainsAny(token, ".,") {
				if strings.Contains(token, ".") || decimalCommaRe.MatchString(token) {
					score += scoreDecimal
				}
				if groupedRe.MatchString(token) {
					score += scoreGrouping
				}
			}

			// Bare integers with many digits are almost never totals.
			if !hasCurrency && !keywordLine && !strings.ContainsAny(token, ".,") && len(token) > 7 {
				continue
			}

			// Strictly greater keeps the earliest candidate on ties.
			if best == nil || score > best.score {
				best = &amountCandidate{value: value, score: score}
			}
		}
	}

	if best == nil {
		return nil
	}
	return &best.value
}

var (
	groupedRe      = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?$`)
	decimalCommaRe = regexp.MustCompile(`^\d+,\d{1,2}$`)
)

// parseAmountToken normalizes separators and parses the token as a decimal.
// Comma groups of three digits are thousands separators; a single trailing
// comma group of one or two digits is a decimal comma.
func parseAmountToken(token string) (float64, bool) {
	s := token
	switch {
	case groupedRe.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case decimalCommaRe.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func overlaps(loc []int, ranges [][]int) bool {
	for _, r := range ranges {
		if loc[0] < r[1] && loc[1] > r[0] {
			return true
		}
	}
	return false
}
