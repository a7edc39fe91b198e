/**
 * Notable-data extraction.
 *
 * A single ordered regex pass over the full document text. Ordering is
 * load-bearing: the Dutch BTW shape is matched before IBAN so BTW values are
 * never misclassified, and routing numbers require a nearby keyword so bare
 * nine-digit numbers stay plain numbers. Sensitive kinds keep the raw digits
 * in Value and expose a mask in DisplayValue.
 */

package enrich

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	EntityVAT       = "vat"
	EntityIBAN      = "iban"
	EntityCard      = "credit_card"
	EntitySSN       = "ssn"
	EntitySwift     = "swift_bic"
	EntityEIN       = "ein"
	EntityPercent   = "percentage"
	EntityEmail     = "email"
	EntityPhone     = "phone"
	EntityURL       = "url"
	EntityIPv4      = "ipv4"
	EntityDate      = "date"
	EntityReference = "reference_number"
	EntitySerial    = "serial_number"
	EntityRouting   = "routing_number"
)

var (
	btwRe       = regexp.MustCompile(`\b[A-Z]{2}\d{9}B\d{2}\b`)
	ibanRe      = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`)
	cardRe      = regexp.MustCompile(`\b(?:\d{4}[ \-]?){3}\d{4}\b`)
	ssnRe       = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	swiftRe     = regexp.MustCompile(`\b[A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`)
	einRe       = regexp.MustCompile(`\b\d{2}-\d{7}\b`)
	vatKeywordRe = regexp.MustCompile(`(?i)\bVAT(?:\s*(?:no\.?|number|reg\.?))?\s*[:#]?\s*([A-Z]{2}[0-9A-Z]{8,12})\b`)
	percentRe   = regexp.MustCompile(`\b\d+(?:\.\d+)?\s?%`)
	emailRe     = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	phoneRe     = regexp.MustCompile(`\+?\d[\d\s\-().]{5,}\d`)
	urlRe       = regexp.MustCompile(`\bhttps?://\S+|\bwww\.\S+`)
	ipv4Re      = regexp.MustCompile(`\b(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})\b`)
	referenceRe = regexp.MustCompile(`(?i)\bref(?:erence)?\s*(?:no\.?|number|#)?\s*[:#]?\s*([A-Z0-9][A-Z0-9\-]{2,})`)
	serialRe    = regexp.MustCompile(`(?i)\b(?:serial|s/n)\s*(?:no\.?|number|#)?\s*[:#]?\s*([A-Z0-9][A-Z0-9\-]{2,})`)
	routingRe   = regexp.MustCompile(`\b\d{9}\b`)
	routingKeyRe = regexp.MustCompile(`(?i)routing|ABA|RTN`)

	dateNumericRe1 = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	dateNumericRe2 = regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`)
	dateDayMonthRe = regexp.MustCompile(`\b\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+\d{2,4}\b`)
	dateMonthDayRe = regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+\d{1,2},?\s+\d{2,4}\b`)

	digitsOnlyRe = regexp.MustCompile(`\D`)
)

// entityCollector accumulates entities while collapsing duplicates of the
// same type and value.
type entityCollector struct {
	entities []Entity
	seen     map[string]bool
}

func newEntityCollector() *entityCollector {
	return &entityCollector{seen: map[string]bool{}}
}

func (c *entityCollector) add(kind, value, display string) {
	key := kind + "\x00" + value
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	if display == "" {
		display = value
	}
	c.entities = append(c.entities, Entity{Type: kind, Value: value, DisplayValue: display})
}

// detectEntities runs the full ordered extraction pass.
func detectEntities(text string) []Entity {
	c := newEntityCollector()

	// BTW first: these would otherwise shadow-match the IBAN shape.
	btwValues := map[string]bool{}
	for _, m := range btwRe.FindAllString(text, -1) {
		btwValues[m] = true
		c.add(EntityVAT, m, "")
	}

	for _, m := range ibanRe.FindAllString(text, -1) {
		if btwValues[m] || len(m) < 15 || len(m) > 34 {
			continue
		}
		c.add(EntityIBAN, m, "")
	}

	for _, m := range cardRe.FindAllString(text, -1) {
		digits := digitsOnlyRe.ReplaceAllString(m, "")
		if len(digits) != 16 {
			continue
		}
		c.add(EntityCard, m, "****-****-****-"+digits[12:])
	}

	for _, m := range ssnRe.FindAllString(text, -1) {
		c.add(EntitySSN, m, "***-**-"+m[len(m)-4:])
	}

	for _, m := range swiftRe.FindAllString(text, -1) {
		if btwValues[m] {
			continue
		}
		c.add(EntitySwift, m, "")
	}

	for _, m := range einRe.FindAllString(text, -1) {
		c.add(EntityEIN, m, "")
	}

	for _, m := range vatKeywordRe.FindAllStringSubmatch(text, -1) {
		c.add(EntityVAT, m[1], "")
	}

	for _, m := range percentRe.FindAllString(text, -1) {
		c.add(EntityPercent, strings.TrimSpace(m), "")
	}

	for _, m := range emailRe.FindAllString(text, -1) {
		c.add(EntityEmail, m, "")
	}

	for _, m := range phoneRe.FindAllString(text, -1) {
		digits := digitsOnlyRe.ReplaceAllString(m, "")
		if len(digits) < 7 || len(digits) > 15 {
			continue
		}
		c.add(EntityPhone, strings.TrimSpace(m), "")
	}

	for _, m := range urlRe.FindAllString(text, -1) {
		c.add(EntityURL, strings.TrimRight(m, ".,;)"), "")
	}

	for _, m := range ipv4Re.FindAllStringSubmatch(text, -1) {
		if validIPv4(m) {
			c.add(EntityIPv4, m[0], "")
		}
	}

	for _, d := range detectDates(text) {
		c.add(EntityDate, d, "")
	}

	for _, m := range referenceRe.FindAllStringSubmatch(text, -1) {
		c.add(EntityReference, m[1], "")
	}

	for _, m := range serialRe.FindAllStringSubmatch(text, -1) {
		c.add(EntitySerial, m[1], "")
	}

	// Routing numbers only count when a keyword appears within +-20 chars.
	for _, loc := range routingRe.FindAllStringIndex(text, -1) {
		start := loc[0] - 20
		if start < 0 {
			start = 0
		}
		end := loc[1] + 20
		if end > len(text) {
			end = len(text)
		}
		if routingKeyRe.MatchString(text[start:end]) {
			c.add(EntityRouting, text[loc[0]:loc[1]], "")
		}
	}

	return c.entities
}

// detectDates extracts dates in the four supported formats, dropping numeric
// candidates whose month/day parts are out of range.
func detectDates(text string) []string {
	var dates []string
	for _, m := range dateNumericRe1.FindAllString(text, -1) {
		if validNumericDate(m, false) {
			dates = append(dates, m)
		}
	}
	for _, m := range dateNumericRe2.FindAllString(text, -1) {
		if validNumericDate(m, true) {
			dates = append(dates, m)
		}
	}
	dates = append(dates, dateDayMonthRe.FindAllString(text, -1)...)
	dates = append(dates, dateMonthDayRe.FindAllString(text, -1)...)
	return dates
}

// validNumericDate range-checks a numeric date. For day-first/month-first
// ambiguity either reading is accepted; yearFirst pins Y-M-D ordering.
func validNumericDate(s string, yearFirst bool) bool {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return false
	}
	a, _ := strconv.Atoi(parts[0])
	b, _ := strconv.Atoi(parts[1])
	cVal, _ := strconv.Atoi(parts[2])

	if yearFirst {
		return b >= 1 && b <= 12 && cVal >= 1 && cVal <= 31
	}
	mdy := a >= 1 && a <= 12 && b >= 1 && b <= 31
	dmy := a >= 1 && a <= 31 && b >= 1 && b <= 12
	return mdy || dmy
}

func validIPv4(m []string) bool {
	for _, part := range m[1:] {
		v, err := strconv.Atoi(part)
		if err != nil || v > 255 {
			return false
		}
	}
	return true
}

// identifierTypes marks the entity kinds surfaced under
// notableData.identifiers.
var identifierTypes = map[string]bool{
	EntityVAT:       true,
	EntityIBAN:      true,
	EntitySwift:     true,
	EntityEIN:       true,
	EntityReference: true,
	EntitySerial:    true,
	EntityRouting:   true,
}

func filterIdentifiers(entities []Entity) []Entity {
	var out []Entity
	for _, e := range entities {
		if identifierTypes[e.Type] {
			out = append(out, e)
		}
	}
	return out
}
