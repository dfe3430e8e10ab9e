package tss

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"lisflood-diag/internal/model"
)

// ErrUnencodable is returned when a title or column name would not read back
// as the same TSS header.
var ErrUnencodable = errors.New("cannot encode as tss")

// Write saves f as a TSS file at path. See Encode.
func Write(path, title string, f model.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, title, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Encode writes f in TSS layout. The step column is the raw step index, or
// 1..n when the frame carries timestamps. NaN is written as
// DefaultMissingValue.
func Encode(w io.Writer, title string, f model.Frame) error {
	names := f.Names()
	if err := checkHeader(title, names); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	bw.WriteString(title + "\n")
	bw.WriteString(strconv.Itoa(len(names)+1) + "\n")
	bw.WriteString("timestep\n")
	for _, name := range names {
		bw.WriteString(name + "\n")
	}

	ix := f.RowIndex()
	for i := 0; i < f.Len(); i++ {
		step := float64(i + 1)
		if !ix.IsTime() {
			step = ix.Steps[i]
		}
		bw.WriteString(pad(strconv.FormatFloat(step, 'f', -1, 64), 8))
		for _, v := range model.Row(f, i) {
			if math.IsNaN(v) {
				v = DefaultMissingValue
			}
			bw.WriteString(" ")
			bw.WriteString(pad(strconv.FormatFloat(v, 'g', -1, 64), 14))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// checkHeader rejects header text Decode would misread: line breaks, blank
// or duplicate names (the step column is named timestep), and names that
// parse as a data row.
func checkHeader(title string, names []string) error {
	if strings.ContainsAny(title, "\r\n") {
		return fmt.Errorf("%w: title %q spans several lines", ErrUnencodable, title)
	}
	seen := map[string]bool{"timestep": true}
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		switch {
		case strings.ContainsAny(name, "\r\n"):
			return fmt.Errorf("%w: column name %q spans several lines", ErrUnencodable, name)
		case trimmed == "":
			return fmt.Errorf("%w: empty column name", ErrUnencodable)
		case seen[trimmed]:
			return fmt.Errorf("%w: duplicate column name %q", ErrUnencodable, trimmed)
		case looksLikeRow(trimmed):
			return fmt.Errorf("%w: column name %q reads as a data row", ErrUnencodable, name)
		}
		seen[trimmed] = true
	}
	return nil
}

// pad right-aligns s in a field of width n, as PCRaster does.
func pad(s string, n int) string {
	for len(s) < n {
		s = " " + s
	}
	return s
}
