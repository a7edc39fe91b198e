package enrich

import (
	"math"
	"regexp"
)

// Word content-type patterns, tried in order; the first match wins. Currency
// requires a symbol or a two-decimal tail so bare integers still classify as
// numbers.
var (
	wordEmailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	wordURLRe      = regexp.MustCompile(`^(https?://|www\.)`)
	wordPhoneRe    = regexp.MustCompile(`^[\d\s\-()+]{7,}$`)
	wordPhoneRunRe = regexp.MustCompile(`\d{3}`)
	wordCurSymRe   = regexp.MustCompile(`^[$€£¥]\s*\d+([,.]\d+)*(\.\d{2})?$`)
	wordCurDecRe   = regexp.MustCompile(`^\d+([,.]\d+)*\.\d{2}$`)
	wordDateRe1    = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)
	wordDateRe2    = regexp.MustCompile(`^\d{4}[/-]\d{1,2}[/-]\d{1,2}$`)
	wordNumberRe   = regexp.MustCompile(`^\d+([,.]\d+)*$`)
)

// classifyWordContent assigns the contentType of a single word.
func classifyWordContent(text string) string {
	switch {
	case wordEmailRe.MatchString(text):
		return ContentEmail
	case wordURLRe.MatchString(text):
		return ContentURL
	case wordPhoneRe.MatchString(text) && wordPhoneRunRe.MatchString(text):
		return ContentPhone
	case wordCurSymRe.MatchString(text) || wordCurDecRe.MatchString(text):
		return ContentCurrency
	case wordDateRe1.MatchString(text) || wordDateRe2.MatchString(text):
		return ContentDate
	case wordNumberRe.MatchString(text):
		return ContentNumber
	default:
		return ContentText
	}
}

// fontSizeFromHeight infers a point size from a bounding-box height.
func fontSizeFromHeight(height float64) int {
	return int(math.Round(height * 0.75))
}
