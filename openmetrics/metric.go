// Package openmetrics builds and serializes OpenMetrics text documents.
//
// A Database holds Metrics keyed by name; every metric carries a kind, an
// optional help/unit, a frozen label-name set and its samples. Serialization
// is fully deterministic: metrics in lexical name order, samples in lexical
// order of their label-value tuple.
//
// Name and label grammar violations are programming faults (a broken static
// schema, not a runtime condition) and panic.
package openmetrics

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
)

// MimeType is the Content-Type of a serialized metrics document
const MimeType = "application/openmetrics-text; version=1.0.0; charset=utf-8"

// Grammar from the OpenMetrics ABNF:
//
//	metricname = metricname-initial-char 0*metricname-char
//	label-name = label-name-initial-char *label-name-char
var (
	metricNameRegexp = regexp.MustCompile(`^[A-Za-z_:][A-Za-z0-9_:]*$`)
	metricUnitRegexp = regexp.MustCompile(`^[A-Za-z0-9_:]+$`)
	labelNameRegexp  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// MetricKind distinguishes monotonic counters from gauges
type MetricKind string

const (
	KindCounter MetricKind = "counter"
	KindGauge   MetricKind = "gauge"
)

// Suffix returns the kind-dependent sample name suffix
// (counters render as "name_total", gauges as "name")
func (k MetricKind) Suffix() string {
	if k == KindCounter {
		return "_total"
	}
	return ""
}

// Metric is one named metric with its frozen label set and samples.
// Not safe for concurrent use; a Database is built per scrape and discarded.
type Metric struct {
	name       string
	kind       MetricKind
	help       string
	unit       string
	labelNames []string // order of first registration, frozen at first sample
	samples    map[string]sample
}

type sample struct {
	labelValues []string // in labelNames order
	value       Number
}

// NewMetric creates a metric, panicking if name violates the grammar
func NewMetric(name string, kind MetricKind) *Metric {
	if !metricNameRegexp.MatchString(name) {
		panic(fmt.Sprintf("openmetrics: invalid metric name %q", name))
	}
	return &Metric{
		name:    name,
		kind:    kind,
		samples: make(map[string]sample),
	}
}

// Name returns the metric name
func (m *Metric) Name() string {
	return m.name
}

// Kind returns the metric kind
func (m *Metric) Kind() MetricKind {
	return m.kind
}

// SetHelp attaches help text; an empty string clears it.
// Help may contain anything, it is escaped during serialization.
func (m *Metric) SetHelp(help string) {
	m.help = help
}

// SetUnit attaches a unit, panicking on a grammar violation.
// An empty string clears the unit.
func (m *Metric) SetUnit(unit string) {
	if unit != "" && !metricUnitRegexp.MatchString(unit) {
		panic(fmt.Sprintf("openmetrics: invalid unit %q for metric %q", unit, m.name))
	}
	m.unit = unit
}

// HasLabel reports whether the label name is already registered
func (m *Metric) HasLabel(name string) bool {
	return slices.Contains(m.labelNames, name)
}

// AddLabel registers a label name. The label set becomes immutable the
// moment the first sample is recorded; registering afterwards panics, as
// does a label name violating the grammar.
func (m *Metric) AddLabel(name string) {
	if len(m.samples) > 0 {
		panic(fmt.Sprintf("openmetrics: label %q added to metric %q after first sample", name, m.name))
	}
	if !labelNameRegexp.MatchString(name) {
		panic(fmt.Sprintf("openmetrics: invalid label name %q for metric %q", name, m.name))
	}
	if !m.HasLabel(name) {
		m.labelNames = append(m.labelNames, name)
	}
}

// LabelNames returns the registered label names in registration order
func (m *Metric) LabelNames() []string {
	return slices.Clone(m.labelNames)
}

// AddSample records one observation. labels must supply exactly the
// registered label set: a missing or unknown label is a caller bug and
// panics. A sample with the same label values overwrites the previous one.
func (m *Metric) AddSample(labels map[string]string, value Number) {
	labelValues := make([]string, 0, len(m.labelNames))
	for _, name := range m.labelNames {
		v, ok := labels[name]
		if !ok {
			panic(fmt.Sprintf("openmetrics: missing value for label %q of metric %q", name, m.name))
		}
		labelValues = append(labelValues, v)
	}
	for name := range labels {
		if !m.HasLabel(name) {
			panic(fmt.Sprintf("openmetrics: unknown label %q for metric %q", name, m.name))
		}
	}
	m.samples[sampleKey(labelValues)] = sample{labelValues: labelValues, value: value}
}

// sampleKey folds a label-value tuple into a map key.
// U+0000 cannot appear in admin-protocol values, so it is a safe separator.
func sampleKey(labelValues []string) string {
	return strings.Join(labelValues, "\x00")
}

// WriteTo serializes the metric: TYPE line, optional UNIT and HELP lines,
// then one line per sample in lexical label-value-tuple order.
func (m *Metric) WriteTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# TYPE %s %s\n", m.name, m.kind); err != nil {
		return err
	}
	if m.unit != "" {
		if _, err := fmt.Fprintf(w, "# UNIT %s %s\n", m.name, m.unit); err != nil {
			return err
		}
	}
	if m.help != "" {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n", m.name, escape(m.help)); err != nil {
			return err
		}
	}

	ordered := make([]sample, 0, len(m.samples))
	for _, s := range m.samples {
		ordered = append(ordered, s)
	}
	slices.SortFunc(ordered, func(a, b sample) int {
		return slices.Compare(a.labelValues, b.labelValues)
	})

	for _, s := range ordered {
		var sb strings.Builder
		sb.WriteString(m.name)
		sb.WriteString(m.kind.Suffix())
		if len(m.labelNames) > 0 {
			sb.WriteByte('{')
			for i, name := range m.labelNames {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteString(name)
				sb.WriteString(`="`)
				sb.WriteString(escape(s.labelValues[i]))
				sb.WriteByte('"')
			}
			sb.WriteByte('}')
		}
		sb.WriteByte(' ')
		sb.WriteString(s.value.String())
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// escape applies the OpenMetrics escaping rules for help text and label
// values: backslash and double quote are backslash-escaped, newline
// becomes \n.
func escape(s string) string {
	var sb strings.Builder
	for _, c := range s {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
