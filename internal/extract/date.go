package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ymdRe       = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	dmyRe       = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})\b`)
	shortYearRe = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{2})\b`)

	monthDayYearRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthYearRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+(\d{4})\b`)

	dateKeywordRe = regexp.MustCompile(`(?i)\b(date|dated|due|issued|issue|invoice|purchased?)\b`)
)

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

type dateCandidate struct {
	date  time.Time
	score int
}

// extractDate collects every token matching a known date shape, normalizes
// each to a calendar date at UTC midnight, and keeps the best scorer.
func extractDate(lines []string) *time.Time {
	var best *dateCandidate

	for _, line := range lines {
		keywordLine := dateKeywordRe.MatchString(line)

		consider := func(date time.Time, ok bool, specificity int) {
			if !ok {
				return
			}
			score := specificity
			if keywordLine {
				score += scoreKeyword
			}
			if best == nil || score > best.score {
				best = &dateCandidate{date: date, score: score}
			}
		}

		for _, m := range ymdRe.FindAllStringSubmatch(line, -1) {
			d, ok := makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
			consider(d, ok, scoreSpecific)
		}
		for _, m := range dmyRe.FindAllStringSubmatch(line, -1) {
			d, ok := makeAmbiguousDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
			consider(d, ok, scoreSpecific)
		}
		for _, m := range shortYearRe.FindAllStringSubmatch(line, -1) {
			d, ok := makeAmbiguousDate(atoi(m[1]), atoi(m[2]), expandYear(atoi(m[3])))
			consider(d, ok, 0)
		}
		for _, m := range monthDayYearRe.FindAllStringSubmatch(line, -1) {
			d, ok := makeDate(atoi(m[3]), int(monthAbbrevs[strings.ToLower(m[1])]), atoi(m[2]))
			consider(d, ok, scoreSpecific)
		}
		for _, m := range dayMonthYearRe.FindAllStringSubmatch(line, -1) {
			d, ok := makeDate(atoi(m[3]), int(monthAbbrevs[strings.ToLower(m[2])]), atoi(m[1]))
			consider(d, ok, scoreSpecific)
		}
	}

	if best == nil {
		return nil
	}
	return &best.date
}

// dateSpans reports the index ranges of numeric date matches in a line so
// the amount scanner can skip digits that belong to a date.
func dateSpans(line string) [][]int {
	var spans [][]int
	for _, re := range []*regexp.Regexp{ymdRe, dmyRe, shortYearRe} {
		spans = append(spans, re.FindAllStringIndex(line, -1)...)
	}
	return spans
}

// makeDate validates the components by round-tripping through time.Date,
// which rejects shapes like February 31st.
func makeDate(year, month, day int) (time.Time, bool) {
	if year < 1900 || year > 2200 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// makeAmbiguousDate reads a/b/year as month/day first and falls back to
// day/month when that produces an invalid date.
func makeAmbiguousDate(a, b, year int) (time.Time, bool) {
	if d, ok := makeDate(year, a, b); ok {
		return d, true
	}
	return makeDate(year, b, a)
}

// expandYear maps two-digit years the way time.Parse does: 69-99 to the
// 1900s, everything else to the 2000s.
func expandYear(y int) int {
	if y >= 69 {
		return 1900 + y
	}
	return 2000 + y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
