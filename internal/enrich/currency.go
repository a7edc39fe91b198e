package enrich

import (
	"regexp"
	"strings"
)

// Five currency pattern families, tried in order: symbol before amount,
// symbol after amount, ISO code, currency name, parenthesized negative.
var (
	curAmount = `\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?`

	curSymbolBeforeRe = regexp.MustCompile(`[$€£¥]\s?` + curAmount)
	curSymbolAfterRe  = regexp.MustCompile(curAmount + `\s?[$€£¥]`)
	curISOCodeRe      = regexp.MustCompile(`\b(USD|EUR|GBP|JPY|CHF|CAD|AUD)\s?` + curAmount + `\b|\b` + curAmount + `\s?(USD|EUR|GBP|JPY|CHF|CAD|AUD)\b`)
	curNameRe         = regexp.MustCompile(`(?i)\b` + curAmount + `\s(dollars?|euros?|pounds?|yen)\b`)
	curNegativeRe     = regexp.MustCompile(`\(\s?[$€£¥]?\s?` + curAmount + `\s?\)`)

	curSymbolCurrency = map[string]string{
		"$": "USD",
		"€": "EUR",
		"£": "GBP",
		"¥": "JPY",
	}

	curNameCurrency = map[string]string{
		"dollar": "USD",
		"euro":   "EUR",
		"pound":  "GBP",
		"yen":    "JPY",
	}
)

// detectCurrencyAmounts extracts monetary amounts from the full text.
// Overlaps are resolved positionally: a match whose span lies inside an
// already claimed span is skipped, so the body of a parenthesized negative is
// never double-counted while an equal amount elsewhere in the text still is.
// Duplicates by raw string are collapsed.
func detectCurrencyAmounts(text string) []CurrencyAmount {
	var amounts []CurrencyAmount
	var claimed [][]int
	seen := map[string]bool{}

	inClaimed := func(span []int) bool {
		for _, c := range claimed {
			if span[0] >= c[0] && span[1] <= c[1] {
				return true
			}
		}
		return false
	}

	add := func(span []int, currency string, negative bool) {
		if inClaimed(span) {
			return
		}
		claimed = append(claimed, span)

		raw := strings.TrimSpace(text[span[0]:span[1]])
		if raw == "" || seen[raw] {
			return
		}
		seen[raw] = true
		amounts = append(amounts, CurrencyAmount{Raw: raw, Currency: currency, Negative: negative})
	}

	// Negatives first so the inner span of "(1,200.00)" is already claimed
	// before the plain-amount families run.
	for _, span := range curNegativeRe.FindAllStringIndex(text, -1) {
		add(span, symbolCurrency(text[span[0]:span[1]]), true)
	}
	for _, span := range curSymbolBeforeRe.FindAllStringIndex(text, -1) {
		add(span, symbolCurrency(text[span[0]:span[1]]), false)
	}
	for _, span := range curSymbolAfterRe.FindAllStringIndex(text, -1) {
		add(span, symbolCurrency(text[span[0]:span[1]]), false)
	}
	for _, span := range curISOCodeRe.FindAllStringIndex(text, -1) {
		add(span, isoCurrency(text[span[0]:span[1]]), false)
	}
	for _, span := range curNameRe.FindAllStringIndex(text, -1) {
		add(span, nameCurrency(text[span[0]:span[1]]), false)
	}

	return amounts
}

func symbolCurrency(s string) string {
	for sym, code := range curSymbolCurrency {
		if strings.Contains(s, sym) {
			return code
		}
	}
	return ""
}

func isoCurrency(s string) string {
	for _, code := range []string{"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD"} {
		if strings.Contains(s, code) {
			return code
		}
	}
	return ""
}

func nameCurrency(s string) string {
	lower := strings.ToLower(s)
	for name, code := range curNameCurrency {
		if strings.Contains(lower, name) {
			return code
		}
	}
	return ""
}
