package enrich

import (
	"regexp"
	"strings"
)

var (
	kvColonRe = regexp.MustCompile(`^([^:]+):\s*(.+)$`)
	kvDashRe  = regexp.MustCompile(`^([^-]+)\s*-\s*(.+)$`)
)

const (
	kvMaxKeyLen   = 50
	kvMaxValueLen = 200
)

// detectKeyValuePairs scans every line for "key: value" or "key - value"
// shapes within the length bounds. Key and value boxes are approximated as
// the first 40% and last 60% of the line's words.
func detectKeyValuePairs(blocks []Block) []KeyValuePair {
	var pairs []KeyValuePair
	for _, block := range blocks {
		for _, par := range block.Paragraphs {
			for _, line := range par.Lines {
				if pair, ok := lineAsKeyValue(line); ok {
					pairs = append(pairs, pair)
				}
			}
		}
	}
	return pairs
}

func lineAsKeyValue(line Line) (KeyValuePair, bool) {
	m := kvColonRe.FindStringSubmatch(line.Text)
	if m == nil {
		m = kvDashRe.FindStringSubmatch(line.Text)
	}
	if m == nil {
		return KeyValuePair{}, false
	}

	key := strings.TrimSpace(m[1])
	value := strings.TrimSpace(m[2])
	if len(key) == 0 || len(key) >= kvMaxKeyLen {
		return KeyValuePair{}, false
	}
	if len(value) == 0 || len(value) >= kvMaxValueLen {
		return KeyValuePair{}, false
	}

	keyBox, valueBox := splitLineBox(line)
	return KeyValuePair{
		Key:       key,
		Value:     value,
		KeyBBox:   keyBox,
		ValueBBox: valueBox,
	}, true
}

// splitLineBox approximates key/value extents from the line's words: the
// first 40% of words cover the key, the rest cover the value.
func splitLineBox(line Line) (BoundingBox, BoundingBox) {
	if len(line.Words) == 0 {
		return line.BBox, line.BBox
	}

	cut := (len(line.Words)*2 + 4) / 5 // ceil(40%)
	if cut < 1 {
		cut = 1
	}
	if cut >= len(line.Words) {
		cut = len(line.Words) - 1
	}
	if cut < 1 {
		return line.BBox, line.BBox
	}

	return unionWordBoxes(line.Words[:cut]), unionWordBoxes(line.Words[cut:])
}

func unionWordBoxes(words []Word) BoundingBox {
	box := words[0].BBox
	for _, w := range words[1:] {
		if w.BBox.X0 < box.X0 {
			box.X0 = w.BBox.X0
		}
		if w.BBox.Y0 < box.Y0 {
			box.Y0 = w.BBox.Y0
		}
		if w.BBox.X1 > box.X1 {
			box.X1 = w.BBox.X1
		}
		if w.BBox.Y1 > box.Y1 {
			box.Y1 = w.BBox.Y1
		}
	}
	box.Width = box.X1 - box.X0
	box.Height = box.Y1 - box.Y0
	return box
}
