package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Row is one parsed CSV data row. Columns named in ParseOptions.NumericColumns
// land in Numbers; everything else is a trimmed string in Strings.
type Row struct {
	Strings map[string]string
	Numbers map[string]float64
}

// Number returns the coerced value of a numeric column, 0 if absent.
func (r Row) Number(column string) float64 {
	return r.Numbers[column]
}

// Int returns a numeric column truncated to int.
func (r Row) Int(column string) int {
	return int(r.Numbers[column])
}

// String returns the trimmed value of a non-numeric column, "" if absent.
func (r Row) String(column string) string {
	return r.Strings[column]
}

// ParseOptions declares which columns of a CSV table are numeric and,
// optionally, which pair of numeric columns holds the coordinates.
type ParseOptions struct {
	// NumericColumns must coerce to a number in every row; any failure
	// aborts the whole parse. Columns listed here but absent from the
	// header are ignored.
	NumericColumns []string

	// LatColumn/LngColumn enable bounding-box validation when both are
	// set. Violations are logged at warn level, never fatal.
	LatColumn string
	LngColumn string

	// LocationColumn names the column quoted in coordinate warnings.
	LocationColumn string
}

// ParseRecords parses raw CSV text (header row first) into Rows.
//
// Malformed-row policy: strict. A numeric column that does not coerce, or a
// row with the wrong field count, fails the entire parse with an error naming
// the data row, column, and offending value. There is no row-skipping here;
// silently dropping rows hides data-quality regressions in upstream exports.
func ParseRecords(raw string, opts ParseOptions, box BoundingBox, logger *slog.Logger) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, column := range header {
		header[i] = strings.TrimSpace(column)
	}

	numeric := make(map[string]bool, len(opts.NumericColumns))
	for _, column := range opts.NumericColumns {
		numeric[column] = true
	}

	validateCoords := opts.LatColumn != "" && opts.LngColumn != ""

	var rows []Row
	for rowNum := 1; ; rowNum++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		row := Row{
			Strings: make(map[string]string),
			Numbers: make(map[string]float64),
		}
		for i, column := range header {
			value := strings.TrimSpace(fields[i])
			if !numeric[column] {
				row.Strings[column] = value
				continue
			}
			n, err := parseNumeric(value)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: invalid numeric value %q", rowNum, column, value)
			}
			row.Numbers[column] = n
		}

		if validateCoords {
			lat, lng := row.Number(opts.LatColumn), row.Number(opts.LngColumn)
			if !box.Contains(lat, lng) {
				logger.Warn("coordinates outside region bounding box",
					"location", row.String(opts.LocationColumn),
					"lat", lat,
					"lng", lng,
				)
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// parseNumeric coerces a CSV cell to float64. Empty cells count as zero;
// upstream exports leave unknown counts blank rather than writing 0.
func parseNumeric(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}
