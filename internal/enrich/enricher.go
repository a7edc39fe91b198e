/**
 * Enricher entry point.
 *
 * Takes the raw OCR page tree and produces the Result document persisted on
 * job completion. The enrichment is pure: the same pages, language and
 * duration always produce the identical Result.
 */

package enrich

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fathomdocs/ocr-service/internal/ocr"
)

// Enrich builds the complete Result from raw OCR pages.
func Enrich(pages []ocr.Page, language string, processingTime time.Duration) *Result {
	blocks := buildBlocks(pages)

	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.Text)
	}
	text := strings.Join(texts, "\n\n")

	wordCount, lineCount, confSum := 0, 0, 0.0
	for _, b := range blocks {
		for _, p := range b.Paragraphs {
			lineCount += len(p.Lines)
			for _, l := range p.Lines {
				for _, w := range l.Words {
					wordCount++
					confSum += w.Confidence
				}
			}
		}
	}

	avgConfidence := 0.0
	if wordCount > 0 {
		avgConfidence = round2(confSum / float64(wordCount))
	}

	return &Result{
		Text:       text,
		Confidence: avgConfidence,
		Blocks:     blocks,
		Structure:  buildStructure(blocks, text),
		Metadata: Metadata{
			Language:         language,
			ProcessingTimeMs: processingTime.Milliseconds(),
			PageCount:        len(pages),
			WordCount:        wordCount,
			LineCount:        lineCount,
			AvgConfidence:    avgConfidence,
		},
	}
}

// Marshal serializes the Result for storage in the job row.
func (r *Result) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
