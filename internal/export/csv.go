// Package export writes TSS frames out as CSV or XLSX tables.
package export

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"lisflood-diag/internal/model"
)

// IndexHeader names the first output column for f: "time" when rows carry
// timestamps, "step" otherwise.
func IndexHeader(f model.Frame) string {
	if f.RowIndex().IsTime() {
		return "time"
	}
	return "step"
}

func WriteCSV(path string, f model.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	header := append([]string{IndexHeader(f)}, f.Names()...)
	if err := w.Write(header); err != nil {
		return err
	}

	ix := f.RowIndex()
	for i := 0; i < f.Len(); i++ {
		row := []string{ix.Label(i)}
		for _, v := range model.Row(f, i) {
			row = append(row, fmtFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return out.Close()
}

// NaN is written as an empty field.
func fmtFloat(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
