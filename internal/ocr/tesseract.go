/**
 * Tesseract OCR engine.
 *
 * Wraps gosseract and converts its verbose bounding boxes (block, paragraph,
 * line, word numbering) into the shared block tree.
 */

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	"github.com/otiai10/gosseract/v2"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TesseractEngine runs OCR through a local Tesseract installation.
type TesseractEngine struct{}

// NewTesseractEngine creates a Tesseract-backed OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

// Recognize performs OCR on a single image and returns its block tree.
// A fresh gosseract client is created per call; the engine itself carries no
// mutable state.
func (t *TesseractEngine) Recognize(ctx context.Context, imageData []byte, lang string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to read image dimensions: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to set OCR language %q: %w", lang, err)
		}
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	page := buildPage(boxes)
	page.Width = float64(cfg.Width)
	page.Height = float64(cfg.Height)
	return page, nil
}

// buildPage folds the flat verbose box list into block > paragraph > line >
// word structure using Tesseract's own numbering. Boxes arrive in reading
// order, so new numbers always open new nodes.
func buildPage(boxes []gosseract.BoundingBox) *Page {
	page := &Page{Number: 1}

	curBlock, curPar, curLine := -1, -1, -1
	for _, b := range boxes {
		word := Word{
			Text:       b.Word,
			Confidence: clampConfidence(b.Confidence),
			Box: BBox{
				X0: float64(b.Box.Min.X),
				Y0: float64(b.Box.Min.Y),
				X1: float64(b.Box.Max.X),
				Y1: float64(b.Box.Max.Y),
			},
		}
		if word.Text == "" {
			continue
		}

		if b.BlockNum != curBlock {
			page.Blocks = append(page.Blocks, Block{})
			curBlock = b.BlockNum
			curPar, curLine = -1, -1
		}
		block := &page.Blocks[len(page.Blocks)-1]

		if b.ParNum != curPar {
			block.Paragraphs = append(block.Paragraphs, Paragraph{})
			curPar = b.ParNum
			curLine = -1
		}
		par := &block.Paragraphs[len(block.Paragraphs)-1]

		if b.LineNum != curLine {
			par.Lines = append(par.Lines, Line{})
			curLine = b.LineNum
		}
		line := &par.Lines[len(par.Lines)-1]

		line.Words = append(line.Words, word)
	}

	recomputeBoxes(page)
	return page
}

// recomputeBoxes derives line, paragraph and block boxes from their words.
func recomputeBoxes(page *Page) {
	for bi := range page.Blocks {
		block := &page.Blocks[bi]
		for pi := range block.Paragraphs {
			par := &block.Paragraphs[pi]
			for li := range par.Lines {
				line := &par.Lines[li]
				if len(line.Words) == 0 {
					continue
				}
				box := line.Words[0].Box
				for _, w := range line.Words[1:] {
					box = box.Union(w.Box)
				}
				line.Box = box
			}
			if len(par.Lines) > 0 {
				box := par.Lines[0].Box
				for _, l := range par.Lines[1:] {
					box = box.Union(l.Box)
				}
				par.Box = box
			}
		}
		if len(block.Paragraphs) > 0 {
			box := block.Paragraphs[0].Box
			for _, p := range block.Paragraphs[1:] {
				box = box.Union(p.Box)
			}
			block.Box = box
		}
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
