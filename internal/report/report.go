// Package report renders backtest metrics and comparisons as text, JSON or
// YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/quantsim/internal/backtest"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml (yml), case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "table":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q, want text, json or yaml", s)
}

// Run is one strategy's outcome as shown in a report
type Run struct {
	ID       string           `json:"id" yaml:"id"`
	Strategy string           `json:"strategy" yaml:"strategy"`
	Status   string           `json:"status" yaml:"status"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
	Bars     int              `json:"bars" yaml:"bars"`
	Metrics  backtest.Metrics `json:"-" yaml:"-"`
}

type metricRow struct {
	Metric string `json:"metric" yaml:"metric"`
	Value  any    `json:"value" yaml:"value"`
}

type runDoc struct {
	Run     `yaml:",inline"`
	Metrics []metricRow `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

type comparisonDoc struct {
	Strategies []string        `json:"strategies" yaml:"strategies"`
	Rows       []comparisonRow `json:"rows" yaml:"rows"`
}

type comparisonRow struct {
	Metric string `json:"metric" yaml:"metric"`
	Values []any  `json:"values" yaml:"values"`
}

// WriteMetrics renders the named metrics in order. Names missing from m
// are skipped.
func WriteMetrics(w io.Writer, f Format, m backtest.Metrics, names []string) error {
	rows := metricRows(m, names)

	switch f {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return yaml.NewEncoder(w).Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Metric, formatValue(m[r.Metric]))
	}
	return tw.Flush()
}

// WriteComparison renders a comparison table with one column per strategy
func WriteComparison(w io.Writer, f Format, c *backtest.Comparison) error {
	doc := comparisonDoc{Strategies: c.Labels}
	for i, name := range c.Metrics {
		row := comparisonRow{Metric: name, Values: make([]any, len(c.Labels))}
		for j := range c.Labels {
			row.Values[j] = encodable(c.Values[i][j])
		}
		doc.Rows = append(doc.Rows, row)
	}

	switch f {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return yaml.NewEncoder(w).Encode(doc)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "METRIC\t%s\n", strings.Join(c.Labels, "\t"))
	for i, name := range c.Metrics {
		cells := make([]string, len(c.Labels))
		for j := range c.Labels {
			cells[j] = formatValue(c.Values[i][j])
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteRuns renders a batch of runs with their metrics
func WriteRuns(w io.Writer, f Format, runs []Run, names []string) error {
	docs := make([]runDoc, len(runs))
	for i, r := range runs {
		docs[i] = runDoc{Run: r, Metrics: metricRows(r.Metrics, names)}
	}

	switch f {
	case FormatJSON:
		return writeJSON(w, docs)
	case FormatYAML:
		return yaml.NewEncoder(w).Encode(docs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTRATEGY\tSTATUS\tBARS\tDETAIL")
	for _, r := range runs {
		detail := r.Error
		if detail == "" {
			if v, ok := r.Metrics[backtest.MetricTotalReturn]; ok {
				detail = "total return " + formatValue(v) + "%"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", shortID(r.ID), r.Strategy, r.Status, r.Bars, detail)
	}
	return tw.Flush()
}

func metricRows(m backtest.Metrics, names []string) []metricRow {
	rows := make([]metricRow, 0, len(names))
	for _, name := range names {
		v, ok := m[name]
		if !ok {
			continue
		}
		rows = append(rows, metricRow{Metric: name, Value: encodable(v)})
	}
	return rows
}

// encodable keeps finite values numeric and spells out NaN and infinities,
// which JSON cannot represent
func encodable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formatValue(v)
	}
	return v
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
