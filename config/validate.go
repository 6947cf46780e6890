package config

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Grammar shared with the openmetrics registry; violations here are caught
// at startup instead of panicking at scrape time.
var (
	metricNameRegexp = regexp.MustCompile(`^[A-Za-z_:][A-Za-z0-9_:]*$`)
	metricUnitRegexp = regexp.MustCompile(`^[A-Za-z0-9_:]+$`)
	labelNameRegexp  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// noProtocolDelimiters rejects credential values that would corrupt the
// login frame (space separates user/pass, NUL terminates the frame)
var noProtocolDelimiters = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, " \x00") {
		return fmt.Errorf("must not contain spaces or NUL characters")
	}
	return nil
})

// Validate checks the whole configuration, including the cross-metric
// invariants (name uniqueness spans global and per-object metrics)
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.WWW),
		validation.Field(&c.Radiator),
		validation.Field(&c.Metrics),
		validation.Field(&c.PerObjectMetrics),
	)
	if err != nil {
		return err
	}

	// Metric names live in one namespace, no matter where they are declared
	knownMetrics := make(map[string]struct{})
	checkUnique := func(where string, metrics []MetricConfig) error {
		for i, m := range metrics {
			if _, exists := knownMetrics[m.Metric]; exists {
				return fmt.Errorf("%s[%d].metric: %q is not unique", where, i, m.Metric)
			}
			knownMetrics[m.Metric] = struct{}{}
		}
		return nil
	}
	if err := checkUnique("metrics", c.Metrics); err != nil {
		return err
	}
	knownKinds := make(map[string]struct{})
	for i, pom := range c.PerObjectMetrics {
		if _, exists := knownKinds[pom.Kind]; exists {
			return fmt.Errorf("per_object_metrics[%d].kind: %q is not unique", i, pom.Kind)
		}
		knownKinds[pom.Kind] = struct{}{}
		if err := checkUnique(fmt.Sprintf("per_object_metrics[%d].metrics", i), pom.Metrics); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the HTTP endpoint configuration
func (c WWWConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BindAddress, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// Validate checks the management connection configuration
func (c RadiatorConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Target, validation.Required),
		validation.Field(&c.MgmtPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Username, validation.Required, noProtocolDelimiters),
		validation.Field(&c.Password, validation.Required, noProtocolDelimiters),
	)
}

// Validate checks one metric declaration
func (c MetricConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Metric,
			validation.Required,
			validation.Match(metricNameRegexp).Error("must start with an ASCII letter, underscore or colon and consist of ASCII letters, digits, underscores and colons")),
		validation.Field(&c.Kind,
			validation.Required,
			validation.In("counter", "gauge")),
		validation.Field(&c.Unit,
			validation.Match(metricUnitRegexp).Error("must consist of ASCII letters, digits, underscores and colons")),
		validation.Field(&c.Samples, validation.Required),
	)
}

// Validate checks one sample mapping
func (c SampleConfig) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Statistic,
			validation.Required,
			validation.By(func(value interface{}) error {
				s, _ := value.(string)
				if strings.Contains(s, ":") {
					return fmt.Errorf("must not contain a colon")
				}
				return nil
			})),
	); err != nil {
		return err
	}

	for key := range c.Labels {
		if !labelNameRegexp.MatchString(key) {
			return fmt.Errorf("labels: key %q must start with an ASCII letter or underscore and consist of ASCII letters, digits and underscores", key)
		}
		// label values may contain anything
	}
	return nil
}

// Validate checks one per-object metric block
func (c PerObjectMetricConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Kind, validation.Required),
		validation.Field(&c.IdentifierLabel,
			validation.Required,
			validation.Match(labelNameRegexp).Error("must be a valid label name")),
		validation.Field(&c.Metrics, validation.Required),
	)
}
