/**
 * File validation gate.
 *
 * Applied at ingestion and re-applied by the worker before OCR (defense in
 * depth). Pure function of (bytes, claimed MIME): no network I/O, no shared
 * mutable state.
 */

package validate

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "github.com/fathomdocs/ocr-service/internal/errors"
)

const (
	// MaxFileBytes caps uploads at 50 MiB.
	MaxFileBytes = 50 << 20

	// MaxImagePixels bounds the decoded pixel count (decompression-bomb guard).
	MaxImagePixels = 178_956_970

	// MaxImageDimension bounds a single image axis.
	MaxImageDimension = 50_000

	// MaxPDFPages bounds accepted PDF length.
	MaxPDFPages = 500

	// pdfScanWindow is how much of the raw PDF is scanned for active-content tokens.
	pdfScanWindow = 1 << 20
)

// allowedTypes is the ingestion allow-list keyed by detected MIME.
var allowedTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/tiff":      true,
	"image/bmp":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Report is the outcome of a successful validation.
type Report struct {
	DetectedMime string
	Sanitized    []byte
}

// File validates an upload against the ordered contract: size gate, magic
// number typing, allow-list, claim/detect consistency, then type-specific
// structural checks. The first failure wins.
func File(data []byte, claimedMime string) (*Report, error) {
	if len(data) > MaxFileBytes {
		return nil, apperrors.NewValidationError(apperrors.ErrorFileTooLarge,
			"File too large: %d bytes exceeds the %d byte limit", len(data), MaxFileBytes)
	}

	detected := DetectMime(data)
	if detected == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrorUnknownType,
			"Could not detect file type from content")
	}

	if !allowedTypes[detected] {
		return nil, apperrors.NewValidationError(apperrors.ErrorUnsupportedType,
			"File type %s is not supported", detected)
	}

	if claimedMime != "" {
		if normalized := NormalizeMime(claimedMime); normalized != detected {
			return nil, apperrors.NewValidationError(apperrors.ErrorTypeMismatch,
				"File type mismatch: claimed %s but detected %s", normalized, detected)
		}
	}

	var err error
	if detected == "application/pdf" {
		err = validatePDF(data)
	} else {
		err = validateImage(data)
	}
	if err != nil {
		return nil, err
	}

	return &Report{DetectedMime: detected, Sanitized: data}, nil
}

// DetectMime returns the MIME type derived from the leading bytes, or ""
// when the content is not a recognizable binary format. Generic fallbacks
// (text/*, application/octet-stream) count as undetectable: the upload path
// only ever trusts magic-number detections.
func DetectMime(data []byte) string {
	detected := mimetype.Detect(data)
	base := detected.String()
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if base == "application/octet-stream" || strings.HasPrefix(base, "text/") {
		return ""
	}
	return base
}

// NormalizeMime lowercases, strips parameters and folds common aliases
// (image/jpg, image/tif) onto their canonical names.
func NormalizeMime(mime string) string {
	m := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	switch m {
	case "image/jpg":
		return "image/jpeg"
	case "image/tif":
		return "image/tiff"
	}
	return m
}

// validateImage checks dimension bounds from the header alone, then performs
// a trial decode + thumbnail to confirm the image survives a full transform.
// The pixel-count bound is enforced before any full decode happens.
func validateImage(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return apperrors.NewValidationError(apperrors.ErrorMalformedImage,
			"Malformed image: %v", err)
	}

	if cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension {
		return apperrors.NewValidationError(apperrors.ErrorImageTooLarge,
			"Image dimensions %dx%d exceed the %d px per-axis limit", cfg.Width, cfg.Height, MaxImageDimension)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return apperrors.NewValidationError(apperrors.ErrorImageTooLarge,
			"Image pixel count %d exceeds the %d limit", int64(cfg.Width)*int64(cfg.Height), MaxImagePixels)
	}

	if err := trialTransform(data); err != nil {
		return apperrors.NewValidationError(apperrors.ErrorMalformedImage,
			"Malformed image: %v", err)
	}
	return nil
}

// trialTransform decodes the image end-to-end and downscales it to a 100x100
// thumbnail. Decoder panics on corrupt input are converted to errors.
func trialTransform(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("image decode panic: %v", r)
		}
	}()

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	thumb := imaging.Thumbnail(img, 100, 100, imaging.Lanczos)
	if thumb == nil {
		return fmt.Errorf("thumbnail transform produced no image")
	}
	return nil
}

// validatePDF parses the document structure, rejecting encrypted files and
// enforcing the page-count bound. Embedded active-content tokens are logged
// but accepted; documents that fail to parse are still refused downstream.
func validatePDF(data []byte) error {
	scanPDFTokens(data)

	// The encryption check runs before parsing: the parser opens documents
	// encrypted with an empty user password without error, so a successful
	// parse proves nothing about encryption.
	if hasEncryptMarker(data) {
		return apperrors.NewValidationError(apperrors.ErrorEncryptedPDF,
			"Encrypted PDFs are not supported")
	}

	reader, err := openPDF(data)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "encrypt") {
			return apperrors.NewValidationError(apperrors.ErrorEncryptedPDF,
				"Encrypted PDFs are not supported")
		}
		return apperrors.NewValidationError(apperrors.ErrorMalformedPDF,
			"Malformed PDF: %v", err)
	}

	pages := reader.NumPage()
	if pages < 1 || pages > MaxPDFPages {
		return apperrors.NewValidationError(apperrors.ErrorPDFTooLong,
			"PDF page count %d outside the allowed range 1-%d", pages, MaxPDFPages)
	}
	return nil
}

// openPDF wraps pdf.NewReader; the parser panics on some invalid xref tables,
// so panics are folded into the returned error.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("pdf parse panic: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// hasEncryptMarker reports an /Encrypt entry within the scan window.
func hasEncryptMarker(data []byte) bool {
	window := data
	if len(window) > pdfScanWindow {
		window = window[:pdfScanWindow]
	}
	return bytes.Contains(window, []byte("/Encrypt"))
}

// scanPDFTokens inspects the first 1 MiB for active-content markers. Presence
// is a warning, not a rejection: the worker still refuses documents that fail
// to parse.
func scanPDFTokens(data []byte) {
	window := data
	if len(window) > pdfScanWindow {
		window = window[:pdfScanWindow]
	}
	for _, token := range []string{"/JavaScript", "/JS", "/OpenAction", "/AA"} {
		if bytes.Contains(window, []byte(token)) {
			log.Printf("WARNING: PDF contains active content token %s (accepted with warning)", token)
		}
	}
}
