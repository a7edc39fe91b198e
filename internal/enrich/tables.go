package enrich

import (
	"math"
	"sort"
	"strings"
)

// Table detection parameters: vertical spacing regularity and x-start
// clustering granularity.
const (
	tableSpacingDeviation = 0.30
	tableClusterGrid      = 10.0
	tableCellTolerance    = 20.0
	tableHeaderMaxLen     = 20
)

// detectTables scans paragraphs for tabular structure: evenly spaced lines
// whose words cluster into at least two columns.
func detectTables(blocks []Block) []Table {
	var tables []Table
	for _, block := range blocks {
		for _, par := range block.Paragraphs {
			if table, ok := paragraphAsTable(par); ok {
				tables = append(tables, table)
			}
		}
	}
	return tables
}

func paragraphAsTable(par Paragraph) (Table, bool) {
	if len(par.Lines) < 2 {
		return Table{}, false
	}

	if !hasRegularSpacing(par.Lines) {
		return Table{}, false
	}

	centroids := columnCentroids(par.Lines)
	if len(centroids) < 2 {
		return Table{}, false
	}

	cells := make([][]string, 0, len(par.Lines))
	for _, line := range par.Lines {
		row := make([]string, len(centroids))
		for _, word := range line.Words {
			col := nearestColumn(word.BBox.X0, centroids)
			if col < 0 {
				continue
			}
			if row[col] == "" {
				row[col] = word.Text
			} else {
				row[col] += " " + word.Text
			}
		}
		cells = append(cells, row)
	}

	return Table{
		Rows:         len(par.Lines),
		Cols:         len(centroids),
		Cells:        cells,
		HasHeaderRow: looksLikeHeaderRow(cells[0]),
		BBox:         par.BBox,
	}, true
}

// hasRegularSpacing checks that the mean absolute deviation of line-to-line
// vertical spacing is below 30% of the mean spacing.
func hasRegularSpacing(lines []Line) bool {
	spacings := make([]float64, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		spacings = append(spacings, lines[i].BBox.Y0-lines[i-1].BBox.Y0)
	}

	mean := 0.0
	for _, s := range spacings {
		mean += s
	}
	mean /= float64(len(spacings))
	if mean <= 0 {
		return false
	}

	mad := 0.0
	for _, s := range spacings {
		mad += math.Abs(s - mean)
	}
	mad /= float64(len(spacings))

	return mad < tableSpacingDeviation*mean
}

// columnCentroids clusters word x-starts by rounding to the nearest 10 px
// and returns the mean x-start of each cluster, ascending.
func columnCentroids(lines []Line) []float64 {
	clusters := map[float64][]float64{}
	for _, line := range lines {
		for _, word := range line.Words {
			key := math.Round(word.BBox.X0/tableClusterGrid) * tableClusterGrid
			clusters[key] = append(clusters[key], word.BBox.X0)
		}
	}

	centroids := make([]float64, 0, len(clusters))
	for _, xs := range clusters {
		sum := 0.0
		for _, x := range xs {
			sum += x
		}
		centroids = append(centroids, sum/float64(len(xs)))
	}
	sort.Float64s(centroids)
	return centroids
}

// nearestColumn returns the index of the centroid within tolerance of x0,
// or -1 when the word sits between columns.
func nearestColumn(x0 float64, centroids []float64) int {
	best, bestDist := -1, math.MaxFloat64
	for i, c := range centroids {
		d := math.Abs(x0 - c)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist > tableCellTolerance {
		return -1
	}
	return best
}

// looksLikeHeaderRow accepts a header row when every cell is either all-caps
// or short.
func looksLikeHeaderRow(row []string) bool {
	for _, cell := range row {
		if cell == "" {
			continue
		}
		if cell != strings.ToUpper(cell) && len(cell) >= tableHeaderMaxLen {
			return false
		}
	}
	return true
}
