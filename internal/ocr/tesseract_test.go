package ocr

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vbox(word string, conf float64, block, par, line int, x0, y0, x1, y1 int) gosseract.BoundingBox {
	return gosseract.BoundingBox{
		Box:        image.Rect(x0, y0, x1, y1),
		Word:       word,
		Confidence: conf,
		BlockNum:   block,
		ParNum:     par,
		LineNum:    line,
	}
}

func TestBuildPageFoldsNumbering(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		vbox("Hello", 95, 1, 1, 1, 10, 10, 60, 30),
		vbox("world", 90, 1, 1, 1, 70, 10, 120, 30),
		vbox("second", 85, 1, 1, 2, 10, 40, 80, 60),
		vbox("next", 80, 1, 2, 1, 10, 80, 50, 100),
		vbox("block", 75, 2, 1, 1, 10, 200, 60, 220),
	}

	page := buildPage(boxes)

	require.Len(t, page.Blocks, 2)
	require.Len(t, page.Blocks[0].Paragraphs, 2)
	require.Len(t, page.Blocks[0].Paragraphs[0].Lines, 2)
	require.Len(t, page.Blocks[0].Paragraphs[0].Lines[0].Words, 2)
	require.Len(t, page.Blocks[1].Paragraphs, 1)

	first := page.Blocks[0].Paragraphs[0].Lines[0]
	assert.Equal(t, "Hello", first.Words[0].Text)
	assert.Equal(t, "world", first.Words[1].Text)

	// Line box is the union of its word boxes.
	assert.Equal(t, 10.0, first.Box.X0)
	assert.Equal(t, 120.0, first.Box.X1)

	// Paragraph box spans both lines.
	par := page.Blocks[0].Paragraphs[0]
	assert.Equal(t, 60.0, par.Box.Y1)
}

func TestBuildPageSkipsEmptyWords(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		vbox("", 0, 1, 1, 1, 0, 0, 10, 10),
		vbox("only", 90, 1, 1, 1, 10, 10, 60, 30),
	}

	page := buildPage(boxes)
	require.Len(t, page.Blocks, 1)
	assert.Equal(t, 1, page.WordCount())
}

// pngHeader builds a PNG signature plus IHDR chunk, enough for DecodeConfig.
func pngHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

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

func TestPackageRegistersRasterDecoders(t *testing.T) {
	// Recognize reads dimensions with image.DecodeConfig; the package must
	// carry its own decoder registrations rather than relying on whatever
	// else the binary happens to link.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(pngHeader(64, 32)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, clampConfidence(-5))
	assert.Equal(t, 100.0, clampConfidence(130))
	assert.Equal(t, 87.5, clampConfidence(87.5))
}
