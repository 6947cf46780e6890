package openmetrics

import (
	"io"
	"slices"
)

// Database is the per-scrape metric registry. It is built fresh for every
// scrape, serialized once and discarded; nothing is cached across scrapes.
type Database struct {
	nameToMetric map[string]*Metric
}

// NewDatabase creates an empty registry
func NewDatabase() *Database {
	return &Database{
		nameToMetric: make(map[string]*Metric),
	}
}

// GetOrInsert returns the metric registered under name, creating it with
// the given kind on first use. The kind of an existing metric is not
// changed.
func (d *Database) GetOrInsert(name string, kind MetricKind) *Metric {
	if m, ok := d.nameToMetric[name]; ok {
		return m
	}
	m := NewMetric(name, kind)
	d.nameToMetric[name] = m
	return m
}

// Get returns the metric registered under name, if any
func (d *Database) Get(name string) (*Metric, bool) {
	m, ok := d.nameToMetric[name]
	return m, ok
}

// Len returns the number of registered metrics
func (d *Database) Len() int {
	return len(d.nameToMetric)
}

// WriteTo serializes all metrics in lexical name order. The caller appends
// the "# EOF" document terminator.
func (d *Database) WriteTo(w io.Writer) error {
	names := make([]string, 0, len(d.nameToMetric))
	for name := range d.nameToMetric {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if err := d.nameToMetric[name].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
