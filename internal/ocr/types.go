/**
 * OCR Types - Shared data structures for OCR output.
 *
 * The engine produces a raw block tree: block > paragraph > line > word,
 * each node with a bounding box in page pixels (origin top-left) and word
 * confidences on the 0-100 scale. The enricher consumes this tree.
 */

package ocr

import "context"

// BBox is a rectangle in page pixels, origin top-left.
type BBox struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Union returns the smallest box covering both operands.
func (b BBox) Union(o BBox) BBox {
	out := b
	if o.X0 < out.X0 {
		out.X0 = o.X0
	}
	if o.Y0 < out.Y0 {
		out.Y0 = o.Y0
	}
	if o.X1 > out.X1 {
		out.X1 = o.X1
	}
	if o.Y1 > out.Y1 {
		out.Y1 = o.Y1
	}
	return out
}

// Word is a recognized token with position and confidence (0-100).
type Word struct {
	Text       string
	Confidence float64
	Box        BBox
}

// Line groups words sharing a baseline.
type Line struct {
	Words []Word
	Box   BBox
}

// Paragraph groups lines.
type Paragraph struct {
	Lines []Line
	Box   BBox
}

// Block is the top-level layout unit.
type Block struct {
	Paragraphs []Paragraph
	Box        BBox
}

// Page is the OCR output for a single page.
type Page struct {
	Number int
	Width  float64
	Height float64
	Blocks []Block
}

// Engine is the opaque OCR capability: given image bytes and a language it
// returns a block tree with positions and confidences.
type Engine interface {
	Recognize(ctx context.Context, image []byte, lang string) (*Page, error)
}

// WordCount returns the number of words on the page.
func (p *Page) WordCount() int {
	n := 0
	for _, b := range p.Blocks {
		for _, par := range b.Paragraphs {
			for _, l := range par.Lines {
				n += len(l.Words)
			}
		}
	}
	return n
}
