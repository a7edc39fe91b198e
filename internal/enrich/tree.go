/**
 * Block tree enrichment.
 *
 * Converts the raw OCR tree into the enriched tree: every word gets a font
 * size and content type, lines get alignment, paragraphs get a text type,
 * blocks get a block type and reading order. Classification thresholds are
 * relative to the page each block came from.
 */

package enrich

import (
	"math"
	"regexp"
	"strings"

	"github.com/fathomdocs/ocr-service/internal/ocr"
)

var listMarkerRe = regexp.MustCompile(`^[\d.)\-•*]\s`)

func toBBox(b ocr.BBox) BoundingBox {
	return BoundingBox{
		X0:     b.X0,
		Y0:     b.Y0,
		X1:     b.X1,
		Y1:     b.Y1,
		Width:  b.Width(),
		Height: b.Height(),
	}
}

// buildBlocks enriches every block across all pages. Reading order is
// 1-based and continues across page boundaries.
func buildBlocks(pages []ocr.Page) []Block {
	var blocks []Block
	order := 0
	for _, page := range pages {
		for _, rawBlock := range page.Blocks {
			order++
			blocks = append(blocks, enrichBlock(rawBlock, order, page.Width, page.Height))
		}
	}
	return blocks
}

func enrichBlock(raw ocr.Block, readingOrder int, pageWidth, pageHeight float64) Block {
	paragraphs := make([]Paragraph, 0, len(raw.Paragraphs))
	for _, rawPar := range raw.Paragraphs {
		paragraphs = append(paragraphs, enrichParagraph(rawPar, pageWidth, pageHeight))
	}

	texts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		texts = append(texts, p.Text)
	}

	return Block{
		Text:         strings.Join(texts, "\n"),
		Confidence:   meanParagraphConfidence(paragraphs),
		BBox:         toBBox(raw.Box),
		BlockType:    classifyBlock(paragraphs, pageHeight),
		ReadingOrder: readingOrder,
		Paragraphs:   paragraphs,
	}
}

func enrichParagraph(raw ocr.Paragraph, pageWidth, pageHeight float64) Paragraph {
	lines := make([]Line, 0, len(raw.Lines))
	for _, rawLine := range raw.Lines {
		lines = append(lines, enrichLine(rawLine, pageWidth))
	}

	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}

	par := Paragraph{
		Text:       strings.Join(texts, "\n"),
		Confidence: meanLineConfidence(lines),
		BBox:       toBBox(raw.Box),
		Lines:      lines,
	}
	par.TextType, par.Level = classifyParagraph(par, pageHeight)
	return par
}

func enrichLine(raw ocr.Line, pageWidth float64) Line {
	words := make([]Word, 0, len(raw.Words))
	texts := make([]string, 0, len(raw.Words))
	for _, rawWord := range raw.Words {
		words = append(words, Word{
			Text:        rawWord.Text,
			Confidence:  round2(rawWord.Confidence),
			BBox:        toBBox(rawWord.Box),
			FontSize:    fontSizeFromHeight(rawWord.Box.Height()),
			ContentType: classifyWordContent(rawWord.Text),
		})
		texts = append(texts, rawWord.Text)
	}

	return Line{
		Text:       strings.Join(texts, " "),
		Confidence: meanWordConfidence(words),
		BBox:       toBBox(raw.Box),
		Alignment:  classifyLineAlignment(raw.Box, pageWidth),
		Words:      words,
	}
}

// classifyLineAlignment derives alignment from the line box relative to the
// page. The checks run in a fixed order; the first hit wins.
func classifyLineAlignment(box ocr.BBox, pageWidth float64) string {
	if pageWidth <= 0 {
		return AlignLeft
	}

	centerX := (box.X0 + box.X1) / 2
	leftMargin := box.X0
	rightMargin := pageWidth - box.X1

	switch {
	case math.Abs(centerX-pageWidth/2) < 0.10*pageWidth:
		return AlignCenter
	case rightMargin < 0.10*pageWidth && leftMargin > 0.20*pageWidth:
		return AlignRight
	case math.Abs(leftMargin-rightMargin) < 0.05*pageWidth &&
		leftMargin < 0.10*pageWidth && rightMargin < 0.10*pageWidth:
		return AlignJustified
	default:
		return AlignLeft
	}
}

// classifyParagraph assigns textType (and heading level) from position, font
// size and textual shape, in that priority order.
func classifyParagraph(par Paragraph, pageHeight float64) (string, int) {
	fontSize := fontSizeFromHeight(par.BBox.Height)
	y0 := par.BBox.Y0

	if pageHeight > 0 && y0 < 0.10*pageHeight {
		if fontSize > 16 {
			return TextHeading, 1
		}
		return TextHeading, 2
	}
	if pageHeight > 0 && y0 > 0.90*pageHeight {
		return TextFooter, 0
	}
	switch {
	case fontSize > 24:
		return TextHeading, 1
	case fontSize > 20:
		return TextHeading, 2
	case fontSize > 16:
		return TextHeading, 3
	}
	if listMarkerRe.MatchString(par.Text) {
		return TextList, 0
	}
	if len(par.Text) < 100 && pageHeight > 0 &&
		(y0 < 0.15*pageHeight || y0 > 0.85*pageHeight) {
		return TextCaption, 0
	}
	return TextBody, 0
}

// classifyBlock aggregates paragraph attributes into a block type.
func classifyBlock(paragraphs []Paragraph, pageHeight float64) string {
	if len(paragraphs) == 0 {
		return BlockText
	}

	allTop, allBottom := true, true
	anyHeading, anyList := false, false
	for _, p := range paragraphs {
		if !(pageHeight > 0 && p.BBox.Y0 < 0.10*pageHeight) {
			allTop = false
		}
		if !(pageHeight > 0 && p.BBox.Y0 > 0.90*pageHeight) {
			allBottom = false
		}
		if p.TextType == TextHeading {
			anyHeading = true
		}
		if p.TextType == TextList {
			anyList = true
		}
	}

	switch {
	case allTop:
		return BlockHeader
	case allBottom:
		return BlockFooter
	case anyHeading:
		return BlockHeading
	case anyList:
		return BlockList
	default:
		return BlockText
	}
}

func meanWordConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range words {
		sum += w.Confidence
	}
	return round2(sum / float64(len(words)))
}

func meanLineConfidence(lines []Line) float64 {
	if len(lines) == 0 {
		return 0
	}
	sum := 0.0
	for _, l := range lines {
		sum += l.Confidence
	}
	return round2(sum / float64(len(lines)))
}

func meanParagraphConfidence(paragraphs []Paragraph) float64 {
	if len(paragraphs) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range paragraphs {
		sum += p.Confidence
	}
	return round2(sum / float64(len(paragraphs)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
