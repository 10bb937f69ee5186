package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/skobkin/topgroup/internal/procgroup"
)

type groupMetricsCollector struct {
	report   Report
	metrics  []groupMetric
	records  *prometheus.Desc
	snapshot *prometheus.Desc
}

type groupMetric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	extract   func(row Row) float64
}

// NewCollector exposes a report as Prometheus gauges.
func NewCollector(rep Report) prometheus.Collector {
	collector := &groupMetricsCollector{report: rep}

	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName("topgroup", "group", name),
			help,
			[]string{"name"},
			nil,
		)
	}

	collector.metrics = []groupMetric{
		{
			desc:      desc("memory_bytes", "Private resident memory (resident minus shared) of the group in bytes."),
			valueType: prometheus.GaugeValue,
			extract: func(row Row) float64 {
				return float64(KilobytesToBytes(row.Usage.Memory))
			},
		},
		{
			desc:      desc("resident_bytes", "Resident memory of the group in bytes."),
			valueType: prometheus.GaugeValue,
			extract: func(row Row) float64 {
				return float64(KilobytesToBytes(row.Usage.Resident))
			},
		},
		{
			desc:      desc("shared_bytes", "Shared resident memory of the group in bytes."),
			valueType: prometheus.GaugeValue,
			extract: func(row Row) float64 {
				return float64(KilobytesToBytes(row.Usage.Shared))
			},
		},
		{
			desc:      desc("processes", "Number of processes in the group."),
			valueType: prometheus.GaugeValue,
			extract: func(row Row) float64 {
				return float64(row.Processes)
			},
		},
	}

	collector.records = prometheus.NewDesc(
		prometheus.BuildFQName("topgroup", "snapshot", "records"),
		"Process records read for the snapshot by outcome.",
		[]string{"result"},
		nil,
	)
	collector.snapshot = prometheus.NewDesc(
		prometheus.BuildFQName("topgroup", "snapshot", "timestamp_seconds"),
		"Unix timestamp of the snapshot.",
		nil,
		nil,
	)

	return collector
}

func (c *groupMetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, metric := range c.metrics {
		ch <- metric.desc
	}
	ch <- c.records
	ch <- c.snapshot
}

func (c *groupMetricsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, row := range c.report.Rows {
		label := labelValue(row.Name)
		for _, metric := range c.metrics {
			ch <- prometheus.MustNewConstMetric(metric.desc, metric.valueType, metric.extract(row), label)
		}
	}

	stats := c.report.Stats
	for result, value := range map[string]int{
		"aggregated":   stats.Aggregated,
		"incomplete":   stats.Incomplete,
		"inconsistent": stats.Inconsistent,
		"replaced":     stats.Replaced,
	} {
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(value), result)
	}

	if !c.report.Timestamp.IsZero() {
		ch <- prometheus.MustNewConstMetric(c.snapshot, prometheus.GaugeValue, float64(c.report.Timestamp.Unix()))
	}
}

// labelValue Go-escapes names that are not valid UTF-8 or contain a backslash.
// Escaped values always contain a backslash and plain ones never do, so
// distinct byte sequences stay distinct label values.
func labelValue(name procgroup.Name) string {
	s := string(name)
	if utf8.ValidString(s) && !strings.Contains(s, `\`) {
		return s
	}
	quoted := strconv.QuoteToASCII(s)
	return quoted[1 : len(quoted)-1]
}

// WritePrometheus writes the report in the Prometheus text exposition format.
func WritePrometheus(w io.Writer, rep Report) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector(rep)); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
