package tui

import "github.com/goliatone/go-formbuilder/pkg/variants"

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(value string) (OutputFormat, bool) {
	switch OutputFormat(value) {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return OutputFormat(value), true
	case "":
		return OutputFormatJSON, true
	}
	return "", false
}

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling prompt logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

type config struct {
	driver       PromptDriver
	outputFormat OutputFormat
	table        *variants.Table
	theme        Theme
	pageSize     int
}

func newConfig(options []Option) config {
	cfg := config{
		outputFormat: OutputFormatJSON,
		table:        variants.Default(),
		pageSize:     12,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.driver == nil {
		cfg.driver = NewSurveyDriver()
	}
	return cfg
}

// Option configures the wizard and the filler.
type Option func(*config)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(c *config) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithOutputFormat selects the serialization of filled values.
func WithOutputFormat(format OutputFormat) Option {
	return func(c *config) {
		if format != "" {
			c.outputFormat = format
		}
	}
}

// WithTable overrides the variant table used for the palette and rules.
func WithTable(table *variants.Table) Option {
	return func(c *config) {
		if table != nil {
			c.table = table
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(c *config) {
		c.theme = theme
	}
}

// WithPageSize sets how many options select prompts show at once.
func WithPageSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.pageSize = n
		}
	}
}
