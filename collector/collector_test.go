package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/radiator-exporter/config"
)

// scriptedQuerier answers commands from a fixed table; unknown commands
// get the bare NOSUCHOBJECT frame the real server ends enumerations with.
type scriptedQuerier struct {
	responses map[string]string
	fail      map[string]error
	raw       map[string][]byte
}

func (s *scriptedQuerier) Query(_ context.Context, command []byte) ([]byte, error) {
	cmd := string(command)
	if err, ok := s.fail[cmd]; ok {
		return nil, err
	}
	if frame, ok := s.raw[cmd]; ok {
		return frame, nil
	}
	payload, ok := s.responses[cmd]
	if !ok {
		return []byte("NOSUCHOBJECT"), nil
	}
	return []byte(cmd + "\n" + payload), nil
}

func scrapeConfig() *config.Config {
	return &config.Config{
		Metrics: []config.MetricConfig{
			{
				Metric: "radius_requests",
				Kind:   "counter",
				Help:   "Requests seen by the server",
				Unit:   "requests",
				Samples: []config.SampleConfig{
					{Labels: map[string]string{"type": "access"}, Statistic: "AccessRequests"},
					{Labels: map[string]string{"type": "accounting"}, Statistic: "AccountingRequests"},
				},
			},
			{
				Metric: "radius_load",
				Kind:   "gauge",
				Samples: []config.SampleConfig{
					{Labels: map[string]string{}, Statistic: "Load"},
				},
			},
		},
		PerObjectMetrics: []config.PerObjectMetricConfig{
			{
				Kind:            "AuthBy",
				IdentifierLabel: "authby",
				Metrics: []config.MetricConfig{
					{
						Metric: "radius_auth_failures",
						Kind:   "counter",
						Samples: []config.SampleConfig{
							{Labels: map[string]string{}, Statistic: "Failures"},
						},
					},
				},
			},
		},
	}
}

func TestCollect_FullDocument(t *testing.T) {
	q := &scriptedQuerier{responses: map[string]string{
		"STATS .":           "AccessRequests:17\x01AccountingRequests:3\x01Load:0.42",
		"DESCRIBE AuthBy.0": "Identifier:string:ldap",
		"STATS AuthBy.0":    "Failures:2",
		"DESCRIBE AuthBy.1": "Identifier:string:sql",
		"STATS AuthBy.1":    "Failures:0",
	}}

	doc, err := New(q, scrapeConfig()).Collect(context.Background())
	require.NoError(t, err)

	want := "# TYPE radius_auth_failures counter\n" +
		"radius_auth_failures_total{authby=\"ldap\"} 2\n" +
		"radius_auth_failures_total{authby=\"sql\"} 0\n" +
		"# TYPE radius_load gauge\n" +
		"radius_load 0.42\n" +
		"# TYPE radius_requests counter\n" +
		"# UNIT radius_requests requests\n" +
		"# HELP radius_requests Requests seen by the server\n" +
		"radius_requests_total{type=\"access\"} 17\n" +
		"radius_requests_total{type=\"accounting\"} 3\n" +
		"# EOF\n"
	assert.Equal(t, want, string(doc))
}

func TestCollect_AbsentStatisticSkipsSample(t *testing.T) {
	q := &scriptedQuerier{responses: map[string]string{
		"STATS .": "AccessRequests:17\x01Load:0.5",
		// AccountingRequests missing, AuthBy enumeration empty
	}}

	doc, err := New(q, scrapeConfig()).Collect(context.Background())
	require.NoError(t, err)

	assert.Contains(t, string(doc), "radius_requests_total{type=\"access\"} 17\n")
	assert.NotContains(t, string(doc), "accounting")
	// The metric families are still announced even without samples.
	assert.Contains(t, string(doc), "# TYPE radius_auth_failures counter\n")
}

func TestCollect_EmptyConfig(t *testing.T) {
	q := &scriptedQuerier{responses: map[string]string{"STATS .": ""}}

	doc, err := New(q, &config.Config{}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "# EOF\n", string(doc))
}

func TestCollect_QueryFailureFailsScrape(t *testing.T) {
	boom := errors.New("connection refused")
	q := &scriptedQuerier{fail: map[string]error{"STATS .": boom}}

	_, err := New(q, scrapeConfig()).Collect(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCollect_UndecodableResponseFailsScrape(t *testing.T) {
	q := &scriptedQuerier{raw: map[string][]byte{
		"STATS .": []byte("no newline separator"),
	}}

	_, err := New(q, scrapeConfig()).Collect(context.Background())
	assert.Error(t, err)
}

func TestCollect_EnumerationFailureFailsScrape(t *testing.T) {
	boom := errors.New("boom")
	q := &scriptedQuerier{
		responses: map[string]string{"STATS .": ""},
		fail:      map[string]error{"DESCRIBE AuthBy.0": boom},
	}

	_, err := New(q, scrapeConfig()).Collect(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCollect_IdentifierIsEscaped(t *testing.T) {
	q := &scriptedQuerier{responses: map[string]string{
		"STATS .":           "",
		"DESCRIBE AuthBy.0": "Identifier:string:weird\"name",
		"STATS AuthBy.0":    "Failures:1",
	}}

	doc, err := New(q, scrapeConfig()).Collect(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(doc), `radius_auth_failures_total{authby="weird\"name"} 1`)
}
