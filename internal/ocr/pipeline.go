/**
 * OCR pipeline.
 *
 * Routes a validated artifact to the right recognition path: images go
 * straight to the engine, PDFs take the embedded-text fast path when possible
 * and are rasterized page by page otherwise.
 */

package ocr

import (
	"context"
	"fmt"
	"log"
)

// PipelineConfig holds pipeline configuration.
type PipelineConfig struct {
	Engine          Engine
	Language        string
	PageConcurrency int
	PdftoppmPath    string
	TempDir         string
}

// Pipeline converts validated bytes into OCR pages.
type Pipeline struct {
	engine          Engine
	language        string
	pageConcurrency int
	pdftoppmPath    string
	tempDir         string
}

// NewPipeline creates a pipeline around an engine. Engine is required.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	concurrency := cfg.PageConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	pdftoppm := cfg.PdftoppmPath
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}

	return &Pipeline{
		engine:          cfg.Engine,
		language:        lang,
		pageConcurrency: concurrency,
		pdftoppmPath:    pdftoppm,
		tempDir:         cfg.TempDir,
	}
}

// Process runs OCR over the artifact and returns pages in page order.
func (p *Pipeline) Process(ctx context.Context, jobID string, data []byte, mimeType string) ([]Page, error) {
	if mimeType == "application/pdf" {
		return p.processPDF(ctx, jobID, data)
	}

	log.Printf("[Job %s] Running image OCR (mime: %s, %d bytes)", jobID, mimeType, len(data))
	page, err := p.engine.Recognize(ctx, data, p.language)
	if err != nil {
		return nil, fmt.Errorf("image OCR failed: %w", err)
	}
	page.Number = 1
	return []Page{*page}, nil
}
