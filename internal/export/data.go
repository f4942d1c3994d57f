package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/corrlab/internal/market"
)

// WriteJSON encodes v as indented JSON, the same shape the API serves.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteMatrixCSV writes the matrix as a square table with asset ids heading
// both the columns and the rows.
func WriteMatrixCSV(w io.Writer, m *market.CorrelationMatrix) error {
	cw := csv.NewWriter(w)
	header := append([]string{""}, m.Assets...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, id := range m.Assets {
		row := make([]string, 0, len(m.Assets)+1)
		row = append(row, id)
		for j := range m.Assets {
			cell, ok := m.Cell(i, j)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(cell.Correlation, 'f', 4, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparisonCSV writes one row per common date with both base-100
// values.
func WriteComparisonCSV(w io.Writer, cmp *market.Comparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", cmp.AssetA.ID, cmp.AssetB.ID}); err != nil {
		return err
	}
	n := min(len(cmp.AssetA.Timeseries), len(cmp.AssetB.Timeseries))
	for i := 0; i < n; i++ {
		a, b := cmp.AssetA.Timeseries[i], cmp.AssetB.Timeseries[i]
		row := []string{
			a.Date,
			strconv.FormatFloat(a.Value, 'f', 2, 64),
			strconv.FormatFloat(b.Value, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
