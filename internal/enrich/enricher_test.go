package enrich

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathomdocs/ocr-service/internal/ocr"
)

func word(text string, x0, y0, x1, y1 float64) ocr.Word {
	return ocr.Word{Text: text, Confidence: 90, Box: box(x0, y0, x1, y1)}
}

func lineOf(words ...ocr.Word) ocr.Line {
	b := words[0].Box
	for _, w := range words[1:] {
		b = b.Union(w.Box)
	}
	return ocr.Line{Words: words, Box: b}
}

// invoicePage is a small but realistic fixture: a title block plus an
// invoice body with a key-value line and a total.
func invoicePage() ocr.Page {
	title := lineOf(
		word("ACME", 100, 50, 180, 80),
		word("CORP", 190, 50, 270, 80),
	)
	number := lineOf(
		word("Invoice", 100, 300, 180, 320),
		word("#:", 185, 300, 200, 320),
		word("INV-001", 205, 300, 280, 320),
	)
	total := lineOf(
		word("Total:", 100, 340, 160, 360),
		word("$150.00", 165, 340, 240, 360),
	)

	return ocr.Page{
		Number: 1,
		Width:  1000,
		Height: 1000,
		Blocks: []ocr.Block{
			{
				Box:        title.Box,
				Paragraphs: []ocr.Paragraph{{Lines: []ocr.Line{title}, Box: title.Box}},
			},
			{
				Box: number.Box.Union(total.Box),
				Paragraphs: []ocr.Paragraph{{
					Lines: []ocr.Line{number, total},
					Box:   number.Box.Union(total.Box),
				}},
			},
		},
	}
}

func TestEnrichInvoiceFixture(t *testing.T) {
	result := Enrich([]ocr.Page{invoicePage()}, "eng", 1500*time.Millisecond)

	assert.Contains(t, result.Text, "ACME CORP")
	assert.Contains(t, result.Text, "Invoice #: INV-001")
	assert.InDelta(t, 90, result.Confidence, 0.01)

	require.Len(t, result.Blocks, 2)
	assert.Equal(t, 1, result.Blocks[0].ReadingOrder)
	assert.Equal(t, 2, result.Blocks[1].ReadingOrder)

	assert.Equal(t, "ACME CORP", result.Structure.Title)

	pairs := result.Structure.KeyValuePairs
	require.NotEmpty(t, pairs)
	assert.Equal(t, "Invoice #", pairs[0].Key)
	assert.Equal(t, "INV-001", pairs[0].Value)

	var invoiceNumber, total *SmartField
	for i := range result.Structure.SmartFields {
		switch result.Structure.SmartFields[i].FieldType {
		case "invoice_number":
			invoiceNumber = &result.Structure.SmartFields[i]
		case "total":
			total = &result.Structure.SmartFields[i]
		}
	}
	require.NotNil(t, invoiceNumber)
	assert.Equal(t, "INV-001", invoiceNumber.Value)
	require.NotNil(t, total)
	assert.Equal(t, "150.00", total.Value)

	assert.Equal(t, DocInvoice, result.Structure.DocumentType)

	assert.Equal(t, "eng", result.Metadata.Language)
	assert.Equal(t, int64(1500), result.Metadata.ProcessingTimeMs)
	assert.Equal(t, 1, result.Metadata.PageCount)
	assert.Equal(t, 7, result.Metadata.WordCount)
	assert.Equal(t, 3, result.Metadata.LineCount)
}

func TestEnrichIsDeterministic(t *testing.T) {
	pages := []ocr.Page{invoicePage()}

	first, err := Enrich(pages, "eng", time.Second).Marshal()
	require.NoError(t, err)
	second, err := Enrich(pages, "eng", time.Second).Marshal()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestResultRoundTrip(t *testing.T) {
	original, err := Enrich([]ocr.Page{invoicePage()}, "eng", time.Second).Marshal()
	require.NoError(t, err)

	var parsed Result
	require.NoError(t, json.Unmarshal(original, &parsed))

	again, err := parsed.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(original), string(again))
}

func TestEnrichEmptyInput(t *testing.T) {
	result := Enrich(nil, "eng", 0)

	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Blocks)
	assert.Equal(t, 0, result.Metadata.WordCount)
	assert.Equal(t, DocUnknown, result.Structure.DocumentType)
}
