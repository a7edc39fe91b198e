/**
 * Document structure analysis.
 *
 * Assembles the semantic layer over the enriched block tree: title, headings,
 * lists, tables, key-value pairs, smart fields, notable data, document type
 * and page layout. All derivations are pure functions of the tree and text.
 */

package enrich

import (
	"sort"
	"strings"
)

const columnGapPx = 50.0

// buildStructure derives the full Structure from the enriched blocks and the
// flattened document text.
func buildStructure(blocks []Block, text string) Structure {
	headings := collectHeadings(blocks)
	pairs := detectKeyValuePairs(blocks)
	fields := detectSmartFields(text, pairs)
	entities := detectEntities(text)
	tables := detectTables(blocks)

	return Structure{
		Title:         detectTitle(headings, blocks),
		Headings:      headings,
		Lists:         collectLists(blocks),
		Tables:        tables,
		KeyValuePairs: pairs,
		SmartFields:   fields,
		NotableData: NotableData{
			Entities:        entities,
			CurrencyAmounts: detectCurrencyAmounts(text),
			Dates:           detectDates(text),
			Identifiers:     filterIdentifiers(entities),
		},
		DocumentType: classifyDocument(text, blocks, fields, tables),
		PageLayout:   analyzePageLayout(blocks),
	}
}

// collectHeadings gathers every heading paragraph in reading order.
func collectHeadings(blocks []Block) []Heading {
	var headings []Heading
	for _, block := range blocks {
		for _, par := range block.Paragraphs {
			if par.TextType != TextHeading {
				continue
			}
			level := par.Level
			if level == 0 {
				level = 3
			}
			headings = append(headings, Heading{
				Text:  strings.TrimSpace(par.Text),
				Level: level,
				BBox:  par.BBox,
			})
		}
	}
	return headings
}

// detectTitle picks the first level-1 heading, falling back to the first
// heading of any level, then to the first line of the first block.
func detectTitle(headings []Heading, blocks []Block) string {
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	if len(headings) > 0 {
		return headings[0].Text
	}
	for _, block := range blocks {
		for _, par := range block.Paragraphs {
			for _, line := range par.Lines {
				if t := strings.TrimSpace(line.Text); t != "" {
					return t
				}
			}
		}
	}
	return ""
}

// collectLists groups consecutive list paragraphs into lists; each line of a
// list paragraph is one item with its marker stripped.
func collectLists(blocks []Block) []List {
	var lists []List
	for _, block := range blocks {
		var current *List
		for _, par := range block.Paragraphs {
			if par.TextType != TextList {
				current = nil
				continue
			}
			if current == nil {
				lists = append(lists, List{BBox: par.BBox})
				current = &lists[len(lists)-1]
			}
			for _, line := range par.Lines {
				item := strings.TrimSpace(listMarkerRe.ReplaceAllString(line.Text, ""))
				if item != "" {
					current.Items = append(current.Items, item)
				}
			}
			current.BBox = unionBoxes(current.BBox, par.BBox)
		}
	}
	return lists
}

func unionBoxes(a, b BoundingBox) BoundingBox {
	if b.X0 < a.X0 {
		a.X0 = b.X0
	}
	if b.Y0 < a.Y0 {
		a.Y0 = b.Y0
	}
	if b.X1 > a.X1 {
		a.X1 = b.X1
	}
	if b.Y1 > a.Y1 {
		a.Y1 = b.Y1
	}
	a.Width = a.X1 - a.X0
	a.Height = a.Y1 - a.Y0
	return a
}

// classifyDocument applies the type rules in a fixed order; first hit wins.
func classifyDocument(text string, blocks []Block, fields []SmartField, tables []Table) string {
	lower := strings.ToLower(text)
	hasTotal := hasSmartField(fields, "total")

	switch {
	case (strings.Contains(lower, "invoice") || hasSmartField(fields, "invoice_number")) && hasTotal:
		return DocInvoice
	case strings.Contains(lower, "receipt") && hasTotal:
		return DocReceipt
	case len(fields) > 5:
		return DocForm
	case hasHeadingBlock(blocks) && len(tables) >= 1:
		return DocReport
	case hasSmartField(fields, "address") && len(blocks) > 3:
		return DocLetter
	default:
		return DocUnknown
	}
}

func hasHeadingBlock(blocks []Block) bool {
	for _, b := range blocks {
		if b.BlockType == BlockHeading {
			return true
		}
	}
	return false
}

// analyzePageLayout computes coarse geometry: columns from large x-gaps
// between sorted block x-starts, header/footer presence from paragraph
// classifications, and text density from paragraph area coverage.
func analyzePageLayout(blocks []Block) PageLayout {
	layout := PageLayout{Columns: 1}
	if len(blocks) == 0 {
		return layout
	}

	xStarts := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		xStarts = append(xStarts, b.BBox.X0)
	}
	sort.Float64s(xStarts)
	for i := 1; i < len(xStarts); i++ {
		if xStarts[i]-xStarts[i-1] > columnGapPx {
			layout.Columns++
		}
	}

	var area, maxExtent float64
	for _, b := range blocks {
		if b.BlockType == BlockHeader {
			layout.HasHeader = true
		}
		if b.BlockType == BlockFooter {
			layout.HasFooter = true
		}
		for _, p := range b.Paragraphs {
			if p.TextType == TextFooter {
				layout.HasFooter = true
			}
			area += p.BBox.Width * p.BBox.Height
			if extent := p.BBox.X1 * p.BBox.Y1; extent > maxExtent {
				maxExtent = extent
			}
		}
	}
	if maxExtent > 0 {
		layout.TextDensity = round2(area / maxExtent)
	}
	return layout
}
