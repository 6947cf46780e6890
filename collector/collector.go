// Package collector turns one scrape into one OpenMetrics document: it
// pulls the configured statistics off the management connection and
// assembles them into the metric registry.
package collector

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/KOMKZ/radiator-exporter/config"
	"github.com/KOMKZ/radiator-exporter/logger"
	"github.com/KOMKZ/radiator-exporter/openmetrics"
	"github.com/KOMKZ/radiator-exporter/radiator"
)

// Collector assembles scrape documents from a management connection.
type Collector struct {
	querier radiator.Querier
	cfg     *config.Config
	log     *logger.ModuleLogger
}

func New(querier radiator.Querier, cfg *config.Config) *Collector {
	return &Collector{
		querier: querier,
		cfg:     cfg,
		log:     logger.GetLogger("collector"),
	}
}

// Collect performs one full scrape and returns the serialized OpenMetrics
// document, terminated with the EOF marker. A transport or decode failure
// fails the whole scrape; a statistic that is merely absent from the
// server's answer only drops the affected sample.
func (c *Collector) Collect(ctx context.Context) ([]byte, error) {
	db := openmetrics.NewDatabase()

	globalStats, err := c.queryStats(ctx, "STATS .")
	if err != nil {
		return nil, err
	}

	for i := range c.cfg.Metrics {
		mc := &c.cfg.Metrics[i]
		metric := c.registerMetric(db, mc, "")
		c.addSamples(metric, mc, globalStats, nil)
	}

	for i := range c.cfg.PerObjectMetrics {
		pc := &c.cfg.PerObjectMetrics[i]

		objects, err := radiator.EnumerateObjects(ctx, c.querier, pc.Kind)
		if err != nil {
			return nil, fmt.Errorf("enumerate %s objects: %w", pc.Kind, err)
		}

		for j := range pc.Metrics {
			mc := &pc.Metrics[j]
			metric := c.registerMetric(db, mc, pc.IdentifierLabel)
			for _, obj := range objects {
				extra := map[string]string{pc.IdentifierLabel: obj.Identifier}
				c.addSamples(metric, mc, obj.Stats, extra)
			}
		}
	}

	var buf bytes.Buffer
	if err := db.WriteTo(&buf); err != nil {
		return nil, err
	}
	buf.WriteString("# EOF\n")
	return buf.Bytes(), nil
}

// queryStats runs one STATS command and decodes its payload.
func (c *Collector) queryStats(ctx context.Context, command string) (map[string]openmetrics.Number, error) {
	frame, err := c.querier.Query(ctx, []byte(command))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}
	_, payload, err := radiator.SplitResponse(frame)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}
	return radiator.DecodeStats(payload), nil
}

// registerMetric materializes one metric config in the database and
// registers its full label set. All labels are registered before any
// sample lands, since the label set freezes at the first sample.
func (c *Collector) registerMetric(db *openmetrics.Database, mc *config.MetricConfig, identifierLabel string) *openmetrics.Metric {
	metric := db.GetOrInsert(mc.Metric, mc.MetricKind())
	if mc.Help != "" {
		metric.SetHelp(mc.Help)
	}
	if mc.Unit != "" {
		metric.SetUnit(mc.Unit)
	}

	if identifierLabel != "" {
		metric.AddLabel(identifierLabel)
	}
	for _, sc := range mc.Samples {
		for _, name := range sortedKeys(sc.Labels) {
			metric.AddLabel(name)
		}
	}
	return metric
}

// addSamples records one sample per configured statistic found in stats.
// extra (the object identifier label, if any) is merged into each
// sample's labels.
func (c *Collector) addSamples(metric *openmetrics.Metric, mc *config.MetricConfig, stats map[string]openmetrics.Number, extra map[string]string) {
	for _, sc := range mc.Samples {
		value, ok := stats[sc.Statistic]
		if !ok {
			c.log.Debug("statistic absent from server answer",
				zap.String("metric", mc.Metric),
				zap.String("statistic", sc.Statistic))
			continue
		}

		labels := make(map[string]string, len(sc.Labels)+len(extra))
		for k, v := range sc.Labels {
			labels[k] = v
		}
		for k, v := range extra {
			labels[k] = v
		}
		metric.AddSample(labels, value)
	}
}

// sortedKeys makes label registration order deterministic; TOML tables
// carry no order of their own.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
