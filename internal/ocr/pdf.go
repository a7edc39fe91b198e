/**
 * PDF handling.
 *
 * Two paths:
 * 1. Text-PDF fast path: extract embedded text and synthesize a trivial block
 *    tree with approximate sequential offsets; confidence is 100 because no
 *    recognition occurred.
 * 2. Image-PDF path: rasterize each page at 300 DPI via pdftoppm, then run
 *    the image OCR path per page with a bounded pool. A page may fail
 *    individually; it is logged and skipped.
 *
 * Intermediate raster files are owned by exactly one job and removed on every
 * exit path.
 */

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// A4 page dimensions in pixels at 300 DPI, used for synthetic layouts.
const (
	synthPageWidth  = 2480.0
	synthPageHeight = 3508.0

	synthMargin     = 100.0
	synthLineHeight = 24.0
	synthCharWidth  = 12.0
	synthWordGap    = 12.0

	rasterDPI = 300
)

func (p *Pipeline) processPDF(ctx context.Context, jobID string, data []byte) ([]Page, error) {
	texts, err := extractPDFText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	if hasEmbeddedText(texts) {
		log.Printf("[Job %s] PDF has embedded text, taking fast path (%d pages)", jobID, len(texts))
		return synthesizePages(texts), nil
	}

	log.Printf("[Job %s] PDF has no embedded text, rasterizing at %d DPI", jobID, rasterDPI)
	return p.rasterizeAndRecognize(ctx, jobID, data)
}

// extractPDFText returns the embedded text of each page, in page order.
// Parser panics on odd page content are folded into the error.
func extractPDFText(data []byte) (texts []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			texts = nil
			err = fmt.Errorf("pdf text extraction panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	texts = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not disqualify the fast path
			// decision; it simply contributes no text.
			texts = append(texts, "")
			continue
		}
		texts = append(texts, content)
	}
	return texts, nil
}

func hasEmbeddedText(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

// synthesizePages builds a trivial block tree from extracted text. Bounding
// boxes are approximate sequential offsets; every word carries confidence 100.
func synthesizePages(texts []string) []Page {
	pages := make([]Page, 0, len(texts))
	for i, text := range texts {
		page := Page{
			Number: i + 1,
			Width:  synthPageWidth,
			Height: synthPageHeight,
		}

		block := Block{}
		par := Paragraph{}
		y := synthMargin
		for _, rawLine := range strings.Split(text, "\n") {
			rawLine = strings.TrimSpace(rawLine)
			if rawLine == "" {
				continue
			}
			line := Line{}
			x := synthMargin
			for _, token := range strings.Fields(rawLine) {
				w := synthCharWidth * float64(len([]rune(token)))
				line.Words = append(line.Words, Word{
					Text:       token,
					Confidence: 100,
					Box:        BBox{X0: x, Y0: y, X1: x + w, Y1: y + synthLineHeight},
				})
				x += w + synthWordGap
			}
			if len(line.Words) > 0 {
				par.Lines = append(par.Lines, line)
			}
			y += synthLineHeight + 4
		}
		if len(par.Lines) > 0 {
			block.Paragraphs = append(block.Paragraphs, par)
			page.Blocks = append(page.Blocks, block)
		}
		recomputeBoxes(&page)
		pages = append(pages, page)
	}
	return pages
}

// rasterizeAndRecognize renders every PDF page to PNG and OCRs each one with
// a bounded pool. Raster files live in a per-job temp dir removed on return.
func (p *Pipeline) rasterizeAndRecognize(ctx context.Context, jobID string, data []byte) ([]Page, error) {
	workDir, err := os.MkdirTemp(p.tempDir, "ocr-raster-")
	if err != nil {
		return nil, fmt.Errorf("failed to create raster dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pdfPath := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write PDF for rasterization: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.pdftoppmPath,
		"-r", fmt.Sprintf("%d", rasterDPI),
		"-png",
		pdfPath,
		filepath.Join(workDir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	rasters, err := filepath.Glob(filepath.Join(workDir, "page-*.png"))
	if err != nil || len(rasters) == 0 {
		return nil, fmt.Errorf("rasterization produced no pages")
	}
	sort.Strings(rasters)

	pages := make([]*Page, len(rasters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.pageConcurrency)
	for i, rasterPath := range rasters {
		g.Go(func() error {
			imageData, err := os.ReadFile(rasterPath)
			if err != nil {
				log.Printf("[Job %s] Skipping page %d: failed to read raster: %v", jobID, i+1, err)
				return nil
			}
			page, err := p.engine.Recognize(gctx, imageData, p.language)
			if err != nil {
				// Per-page failures are logged and skipped; the job-level
				// timeout still aborts the whole group via gctx.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("[Job %s] Skipping page %d: OCR failed: %v", jobID, i+1, err)
				return nil
			}
			page.Number = i + 1
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Page, 0, len(pages))
	for _, page := range pages {
		if page != nil {
			out = append(out, *page)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("OCR produced no readable pages")
	}
	return out, nil
}
