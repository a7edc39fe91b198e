/**
 * Enriched result types.
 *
 * The Result is the document persisted into ocr_result on completion. It is
 * serialized with stable field order; the tree mirrors the OCR block tree
 * with classification attributes added at every level.
 */

package enrich

// BoundingBox is a rectangle in page pixels, origin top-left.
type BoundingBox struct {
	X0     float64 `json:"x0"`
	Y0     float64 `json:"y0"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Word content types.
const (
	ContentText     = "text"
	ContentNumber   = "number"
	ContentDate     = "date"
	ContentEmail    = "email"
	ContentURL      = "url"
	ContentCurrency = "currency"
	ContentPhone    = "phone"
)

// Line alignments.
const (
	AlignLeft      = "left"
	AlignCenter    = "center"
	AlignRight     = "right"
	AlignJustified = "justified"
)

// Paragraph text types.
const (
	TextHeading = "heading"
	TextBody    = "body"
	TextList    = "list"
	TextCaption = "caption"
	TextFooter  = "footer"
)

// Block types.
const (
	BlockText    = "text"
	BlockHeading = "heading"
	BlockList    = "list"
	BlockTable   = "table"
	BlockHeader  = "header"
	BlockFooter  = "footer"
)

// Word is an enriched OCR word.
type Word struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	BBox        BoundingBox `json:"bbox"`
	FontSize    int         `json:"fontSize"`
	ContentType string      `json:"contentType"`
}

// Line is an enriched OCR line.
type Line struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
	Alignment  string      `json:"alignment"`
	Words      []Word      `json:"words"`
}

// Paragraph is an enriched OCR paragraph.
type Paragraph struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
	TextType   string      `json:"textType"`
	Level      int         `json:"level,omitempty"`
	Lines      []Line      `json:"lines"`
}

// Block is an enriched OCR block.
type Block struct {
	Text         string      `json:"text"`
	Confidence   float64     `json:"confidence"`
	BBox         BoundingBox `json:"bbox"`
	BlockType    string      `json:"blockType"`
	ReadingOrder int         `json:"readingOrder"`
	Paragraphs   []Paragraph `json:"paragraphs"`
}

// Heading is a detected document heading.
type Heading struct {
	Text  string      `json:"text"`
	Level int         `json:"level"`
	BBox  BoundingBox `json:"bbox"`
}

// List is a detected list of items.
type List struct {
	Items []string    `json:"items"`
	BBox  BoundingBox `json:"bbox"`
}

// Table is a detected tabular region.
type Table struct {
	Rows         int         `json:"rows"`
	Cols         int         `json:"cols"`
	Cells        [][]string  `json:"cells"`
	HasHeaderRow bool        `json:"hasHeaderRow"`
	BBox         BoundingBox `json:"bbox"`
}

// KeyValuePair is a "key: value" style line.
type KeyValuePair struct {
	Key      string      `json:"key"`
	Value    string      `json:"value"`
	KeyBBox  BoundingBox `json:"keyBbox"`
	ValueBBox BoundingBox `json:"valueBbox"`
}

// SmartField is a typed value bound to a domain-specific name.
type SmartField struct {
	FieldType string `json:"fieldType"`
	Label     string `json:"label"`
	Value     string `json:"value"`
}

// Entity is a typed substring extracted from the full text. For sensitive
// kinds (credit_card, ssn) Value preserves the raw digits and DisplayValue is
// a mask; callers rendering results must prefer DisplayValue.
type Entity struct {
	Type         string `json:"type"`
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

// CurrencyAmount is a detected monetary amount.
type CurrencyAmount struct {
	Raw      string `json:"raw"`
	Currency string `json:"currency"`
	Negative bool   `json:"negative"`
}

// NotableData groups full-document extraction results.
type NotableData struct {
	Entities        []Entity         `json:"entities"`
	CurrencyAmounts []CurrencyAmount `json:"currencyAmounts"`
	Dates           []string         `json:"dates"`
	Identifiers     []Entity         `json:"identifiers"`
}

// PageLayout describes coarse page geometry.
type PageLayout struct {
	Columns     int     `json:"columns"`
	HasHeader   bool    `json:"hasHeader"`
	HasFooter   bool    `json:"hasFooter"`
	TextDensity float64 `json:"textDensity"`
}

// Structure is the semantic layer over the block tree.
type Structure struct {
	Title         string         `json:"title"`
	Headings      []Heading      `json:"headings"`
	Lists         []List         `json:"lists"`
	Tables        []Table        `json:"tables"`
	KeyValuePairs []KeyValuePair `json:"keyValuePairs"`
	SmartFields   []SmartField   `json:"smartFields"`
	NotableData   NotableData    `json:"notableData"`
	DocumentType  string         `json:"documentType"`
	PageLayout    PageLayout     `json:"pageLayout"`
}

// Metadata carries processing statistics.
type Metadata struct {
	Language         string  `json:"language"`
	ProcessingTimeMs int64   `json:"processingTimeMs"`
	PageCount        int     `json:"pageCount,omitempty"`
	WordCount        int     `json:"wordCount"`
	LineCount        int     `json:"lineCount"`
	AvgConfidence    float64 `json:"avgConfidence"`
}

// Result is the complete enriched document.
type Result struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Blocks     []Block   `json:"blocks"`
	Structure  Structure `json:"structure"`
	Metadata   Metadata  `json:"metadata"`
}

// Document type labels.
const (
	DocInvoice = "invoice"
	DocReceipt = "receipt"
	DocForm    = "form"
	DocReport  = "report"
	DocLetter  = "letter"
	DocUnknown = "unknown"
)
