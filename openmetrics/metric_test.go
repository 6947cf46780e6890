package openmetrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Name and unit grammar
// ============================================================

func TestNewMetric_ValidNames(t *testing.T) {
	valid := []string{
		"a",
		"_private",
		":colon",
		"radiator_access_requests",
		"x1_2:3",
		"A9",
	}
	for _, name := range valid {
		assert.NotPanics(t, func() {
			NewMetric(name, KindGauge)
		}, "name %q should be accepted", name)
	}
}

func TestNewMetric_InvalidNames(t *testing.T) {
	invalid := []string{
		"",
		"9starts_with_digit",
		"has space",
		"has-dash",
		"unicode_ü",
		"trailing ",
	}
	for _, name := range invalid {
		assert.Panics(t, func() {
			NewMetric(name, KindGauge)
		}, "name %q should be rejected", name)
	}
}

func TestSetUnit(t *testing.T) {
	m := NewMetric("requests", KindCounter)

	assert.NotPanics(t, func() { m.SetUnit("seconds") })
	assert.NotPanics(t, func() { m.SetUnit("") }) // clearing is fine
	assert.Panics(t, func() { m.SetUnit("micro seconds") })
	assert.Panics(t, func() { m.SetUnit("µs") })
}

func TestAddLabel_Grammar(t *testing.T) {
	m := NewMetric("requests", KindCounter)

	assert.NotPanics(t, func() { m.AddLabel("proto") })
	assert.NotPanics(t, func() { m.AddLabel("_x9") })
	assert.Panics(t, func() { m.AddLabel("with:colon") })
	assert.Panics(t, func() { m.AddLabel("1digit") })
}

// ============================================================
// Label-set freezing
// ============================================================

func TestLabelSet_FrozenAtFirstSample(t *testing.T) {
	m := NewMetric("requests", KindCounter)
	m.AddLabel("proto")

	// Before the first sample the set may still grow
	assert.NotPanics(t, func() { m.AddLabel("port") })

	m.AddSample(map[string]string{"proto": "radius", "port": "1812"}, Int(1))

	assert.Panics(t, func() { m.AddLabel("late") })
}

func TestAddSample_LabelSetMismatch(t *testing.T) {
	m := NewMetric("requests", KindCounter)
	m.AddLabel("proto")

	assert.Panics(t, func() {
		m.AddSample(map[string]string{}, Int(1))
	}, "missing label value must panic")

	assert.Panics(t, func() {
		m.AddSample(map[string]string{"proto": "radius", "extra": "x"}, Int(1))
	}, "unknown label must panic")
}

func TestAddSample_SameLabelsOverwrite(t *testing.T) {
	m := NewMetric("requests", KindCounter)
	m.AddLabel("proto")
	m.AddSample(map[string]string{"proto": "radius"}, Int(1))
	m.AddSample(map[string]string{"proto": "radius"}, Int(7))

	var sb strings.Builder
	require.NoError(t, m.WriteTo(&sb))
	assert.Equal(t, "# TYPE requests counter\nrequests_total{proto=\"radius\"} 7\n", sb.String())
}

// ============================================================
// Serialization
// ============================================================

func TestWriteTo_FullMetric(t *testing.T) {
	m := NewMetric("radiator_requests", KindCounter)
	m.SetUnit("requests")
	m.SetHelp("Requests processed.\nWith a \"quoted\\\" part.")
	m.AddLabel("kind")
	m.AddSample(map[string]string{"kind": "access"}, Int(17))
	m.AddSample(map[string]string{"kind": "accounting"}, Float(3.5))

	var sb strings.Builder
	require.NoError(t, m.WriteTo(&sb))

	expected := "# TYPE radiator_requests counter\n" +
		"# UNIT radiator_requests requests\n" +
		"# HELP radiator_requests Requests processed.\\nWith a \\\"quoted\\\\\\\" part.\n" +
		"radiator_requests_total{kind=\"access\"} 17\n" +
		"radiator_requests_total{kind=\"accounting\"} 3.5\n"
	assert.Equal(t, expected, sb.String())
}

func TestWriteTo_GaugeWithoutLabels(t *testing.T) {
	m := NewMetric("uptime", KindGauge)
	m.AddSample(map[string]string{}, Int(1234))

	var sb strings.Builder
	require.NoError(t, m.WriteTo(&sb))
	assert.Equal(t, "# TYPE uptime gauge\nuptime 1234\n", sb.String())
}

func TestNumber_Rendering(t *testing.T) {
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "-7", Int(-7).String())
	assert.Equal(t, "3.5", Float(3.5).String())
	assert.Equal(t, "3", Float(3).String())
	assert.Equal(t, "0.1", Float(0.1).String())
}

func TestDatabase_DeterministicEncoding(t *testing.T) {
	build := func() *Database {
		db := NewDatabase()

		b := db.GetOrInsert("b_metric", KindGauge)
		b.AddLabel("x")
		b.AddSample(map[string]string{"x": "2"}, Int(2))
		b.AddSample(map[string]string{"x": "1"}, Int(1))

		a := db.GetOrInsert("a_metric", KindCounter)
		a.AddSample(map[string]string{}, Float(0.25))

		return db
	}

	var first, second strings.Builder
	require.NoError(t, build().WriteTo(&first))
	require.NoError(t, build().WriteTo(&second))

	// Encoding the same registry twice yields byte-identical output
	assert.Equal(t, first.String(), second.String())

	expected := "# TYPE a_metric counter\n" +
		"a_metric_total 0.25\n" +
		"# TYPE b_metric gauge\n" +
		"b_metric{x=\"1\"} 1\n" +
		"b_metric{x=\"2\"} 2\n"
	assert.Equal(t, expected, first.String())
}

func TestDatabase_GetOrInsertKeepsFirstKind(t *testing.T) {
	db := NewDatabase()
	first := db.GetOrInsert("m", KindCounter)
	second := db.GetOrInsert("m", KindGauge)

	assert.Same(t, first, second)
	assert.Equal(t, KindCounter, second.Kind())
}
