package report

import (
	"fmt"
	"math"
	"strings"
)

// MissingValue is the placeholder for unavailable measurements.
const MissingValue = "-"

// MetricRow is a single row in a comparison table. Values are
// pre-formatted strings so mixed precision can share one table.
type MetricRow struct {
	Label  string
	Values []string
	Unit   string
}

// MetricTable formats aligned columns for metric comparison. Labels are
// left-aligned, values right-aligned within their column, units appended
// after the last value column.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// NewMetricTable creates a table with Input/Output headers, the shape
// used for before/after loudness comparison.
func NewMetricTable() *MetricTable {
	return &MetricTable{Headers: []string{"Input", "Output"}}
}

// AddMetricRow adds a row with numeric values, formatting them
// automatically. Pass math.NaN() for missing values.
func (t *MetricTable) AddMetricRow(label string, decimals int, unit string, values ...float64) {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = formatMetric(v, decimals)
	}
	t.Rows = append(t.Rows, MetricRow{Label: label, Values: formatted, Unit: unit})
}

// String renders the table with aligned columns.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	labelWidth := 0
	for _, row := range t.Rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) && len(val) > valueWidths[i] {
				valueWidths[i] = len(val)
			}
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))
		for i := range t.Headers {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}
		if row.Unit != "" {
			sb.WriteString(row.Unit)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatMetric formats a numeric value with fixed precision, mapping
// NaN/Inf to the missing-value placeholder.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.*f", decimals, value)
}
