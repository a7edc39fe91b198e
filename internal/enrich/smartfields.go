package enrich

import (
	"regexp"
	"strings"
)

// Smart-field patterns. First hit wins per field type; the submatch index 2
// is always the captured value.
var smartFieldPatterns = []struct {
	fieldType string
	label     string
	re        *regexp.Regexp
}{
	{"invoice_number", "Invoice Number", regexp.MustCompile(`(?i)(invoice|inv|bill)\s*#?\s*:?\s*([A-Z0-9\-]+)`)},
	{"po_number", "PO Number", regexp.MustCompile(`(?i)(p\.?o\.?\s*number|purchase\s*order)\s*#?\s*:?\s*([A-Z0-9\-]+)`)},
	{"total", "Total", regexp.MustCompile(`(?i)(grand total|amount due|total)\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})`)},
	{"subtotal", "Subtotal", regexp.MustCompile(`(?i)(sub\s*total|subtotal)\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})`)},
	{"tax", "Tax", regexp.MustCompile(`(?i)\b(tax|vat|gst)\s*:?\s*\$?\s*([\d,]+\.?\d{0,2})`)},
	{"date", "Date", regexp.MustCompile(`(?i)\b(date|dated)\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}[/-]\d{1,2}[/-]\d{1,2})`)},
}

// Key substrings that promote a key-value pair into a typed smart field.
var kvFieldKeys = []struct {
	fieldType string
	label     string
	keys      []string
}{
	{"email", "Email", []string{"email"}},
	{"phone", "Phone", []string{"phone", "tel"}},
	{"address", "Address", []string{"address"}},
	{"customer", "Customer", []string{"customer", "bill to"}},
	{"vendor", "Vendor", []string{"vendor", "from"}},
}

// detectSmartFields runs the pattern table over the full text (first hit
// wins per field type), then promotes matching key-value pairs to typed
// fields.
func detectSmartFields(text string, pairs []KeyValuePair) []SmartField {
	var fields []SmartField
	seen := map[string]bool{}

	for _, p := range smartFieldPatterns {
		if seen[p.fieldType] {
			continue
		}
		if m := p.re.FindStringSubmatch(text); m != nil {
			fields = append(fields, SmartField{
				FieldType: p.fieldType,
				Label:     p.label,
				Value:     strings.TrimSpace(m[2]),
			})
			seen[p.fieldType] = true
		}
	}

	for _, pair := range pairs {
		key := strings.ToLower(pair.Key)
		for _, kf := range kvFieldKeys {
			if seen[kf.fieldType] {
				continue
			}
			for _, needle := range kf.keys {
				if strings.Contains(key, needle) {
					fields = append(fields, SmartField{
						FieldType: kf.fieldType,
						Label:     kf.label,
						Value:     pair.Value,
					})
					seen[kf.fieldType] = true
					break
				}
			}
		}
	}

	return fields
}

// hasSmartField reports whether a field of the given type was detected.
func hasSmartField(fields []SmartField, fieldType string) bool {
	for _, f := range fields {
		if f.FieldType == fieldType {
			return true
		}
	}
	return false
}
