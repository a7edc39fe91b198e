package validate

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fathomdocs/ocr-service/internal/errors"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// pngWithDimensions builds a syntactically valid PNG header claiming the
// given dimensions. Only the signature and IHDR chunk are present, which is
// enough for DecodeConfig.
func pngWithDimensions(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	// compression, filter, interlace all zero

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], 13)
	buf.Write(length[:])
	buf.WriteString("IHDR")
	buf.Write(ihdr)

	crc := crc32.NewIEEE()
	crc.Write([]byte("IHDR"))
	crc.Write(ihdr)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	buf.Write(sum[:])

	return buf.Bytes()
}

func validationCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	verr, ok := err.(*apperrors.ValidationError)
	require.True(t, ok, "expected *ValidationError, got %T: %v", err, err)
	return verr.Code
}

func TestFileSizeGate(t *testing.T) {
	data := make([]byte, MaxFileBytes+1)
	_, err := File(data, "")
	assert.Equal(t, apperrors.ErrorFileTooLarge, validationCode(t, err))
}

func TestFileUnknownType(t *testing.T) {
	_, err := File([]byte("plain text, no magic numbers here"), "")
	assert.Equal(t, apperrors.ErrorUnknownType, validationCode(t, err))
}

func TestFileUnsupportedType(t *testing.T) {
	// Minimal GIF header: detectable, but not on the allow-list.
	gif := append([]byte("GIF89a"), make([]byte, 32)...)
	_, err := File(gif, "")
	assert.Equal(t, apperrors.ErrorUnsupportedType, validationCode(t, err))
}

func TestFileTypeMismatch(t *testing.T) {
	_, err := File(encodePNG(t, 4, 4), "image/jpeg")
	assert.Equal(t, apperrors.ErrorTypeMismatch, validationCode(t, err))
}

func TestFileClaimNormalization(t *testing.T) {
	report, err := File(encodeJPEG(t, 4, 4), "image/jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", report.DetectedMime)
}

func TestFileAcceptsValidPNG(t *testing.T) {
	data := encodePNG(t, 8, 8)
	report, err := File(data, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", report.DetectedMime)
	assert.Equal(t, data, report.Sanitized)
}

func TestFileImageDimensionBound(t *testing.T) {
	_, err := File(pngWithDimensions(MaxImageDimension+1, 10), "")
	assert.Equal(t, apperrors.ErrorImageTooLarge, validationCode(t, err))
}

func TestFileImagePixelBound(t *testing.T) {
	// 14000 x 13000 = 182M pixels: both axes in range, product over the cap.
	_, err := File(pngWithDimensions(14_000, 13_000), "")
	assert.Equal(t, apperrors.ErrorImageTooLarge, validationCode(t, err))
}

func TestFileMalformedImage(t *testing.T) {
	// Valid header, no pixel data: DecodeConfig succeeds, the trial
	// transform does not.
	_, err := File(pngWithDimensions(8, 8), "")
	assert.Equal(t, apperrors.ErrorMalformedImage, validationCode(t, err))
}

func TestFileEncryptedPDF(t *testing.T) {
	data := []byte("%PDF-1.7\n1 0 obj\n<< /Encrypt 2 0 R >>\nendobj\n%%EOF")
	_, err := File(data, "")
	assert.Equal(t, apperrors.ErrorEncryptedPDF, validationCode(t, err))
}

func TestHasEncryptMarker(t *testing.T) {
	// The marker must be found independently of parsing: documents encrypted
	// with an empty user password open without a parse error.
	assert.True(t, hasEncryptMarker([]byte("%PDF-1.7\ntrailer << /Size 4 /Root 1 0 R /Encrypt 4 0 R >>")))
	assert.False(t, hasEncryptMarker([]byte("%PDF-1.7\ntrailer << /Size 4 /Root 1 0 R >>")))

	// Beyond the scan window the marker is not consulted.
	far := make([]byte, pdfScanWindow+64)
	copy(far, "%PDF-1.7")
	copy(far[pdfScanWindow:], "/Encrypt")
	assert.False(t, hasEncryptMarker(far))
}

func TestFileMalformedPDF(t *testing.T) {
	data := []byte("%PDF-1.7\nnot actually a pdf body\n%%EOF")
	_, err := File(data, "")
	assert.Equal(t, apperrors.ErrorMalformedPDF, validationCode(t, err))
}

func TestDetectMimeGenericFallbacks(t *testing.T) {
	assert.Equal(t, "", DetectMime([]byte("hello world")))
	assert.Equal(t, "", DetectMime([]byte{0x01, 0x02, 0x03, 0x04}))
}

func TestNormalizeMime(t *testing.T) {
	cases := map[string]string{
		"image/jpg":                "image/jpeg",
		"image/tif":                "image/tiff",
		"IMAGE/PNG":                "image/png",
		"application/pdf; q=0.9":   "application/pdf",
		" image/webp ":             "image/webp",
		"application/octet-stream": "application/octet-stream",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeMime(in), "input %q", in)
	}
}
