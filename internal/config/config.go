// Package config provides the configuration shared by the formbuilder
// binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/preference"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMBUILDER_"

// Config holds the configuration of the CLI and the server.
type Config struct {
	// Server configures the HTTP and websocket surface.
	Server ServerConfig `json:"server" yaml:"server"`

	// Preferences selects where the chosen form library is remembered.
	Preferences preference.Config `json:"preferences" yaml:"preferences"`

	// Codegen configures code generation.
	Codegen CodegenConfig `json:"codegen" yaml:"codegen"`

	// Preview configures the HTML preview.
	Preview PreviewConfig `json:"preview" yaml:"preview"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// AllowedOrigins are the websocket origin patterns accepted besides the
	// request host.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// MaxBodyBytes bounds request bodies and websocket messages.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`
}

// CodegenConfig holds code generation defaults.
type CodegenConfig struct {
	// Target is the library used when none is chosen or remembered.
	Target string `json:"target" yaml:"target"`

	// Component names the generated component.
	Component string `json:"component" yaml:"component"`

	// Format runs the source formatter over generated code.
	Format *bool `json:"format,omitempty" yaml:"format,omitempty"`
}

// PreviewConfig holds preview styling.
type PreviewConfig struct {
	Theme   string            `json:"theme" yaml:"theme"`
	Variant string            `json:"variant" yaml:"variant"`
	Tokens  map[string]string `json:"tokens,omitempty" yaml:"tokens,omitempty"`

	// CatalogURL is the base URL of special component links.
	CatalogURL string `json:"catalog_url" yaml:"catalog_url"`
}

// Options converts the preview settings into render options. Tokens become
// CSS variables on the preview form.
func (p PreviewConfig) Options() render.PreviewOptions {
	if p.Theme == "" && p.Variant == "" && len(p.Tokens) == 0 {
		return render.PreviewOptions{}
	}
	return render.PreviewOptions{
		Theme: render.RendererConfig(&theme.Selection{
			Theme:   p.Theme,
			Variant: p.Variant,
			Manifest: &theme.Manifest{
				Name:   p.Theme,
				Tokens: p.Tokens,
			},
		}),
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Preferences: preference.Config{
			Backend: preference.BackendMemory,
		},
		Codegen: CodegenConfig{
			Target:    codegen.DefaultTarget,
			Component: codegen.DefaultComponentName,
		},
		Preview: PreviewConfig{
			Theme:   "default",
			Variant: "light",
		},
	}
}

// FormatEnabled reports whether generated code is formatted.
func (c CodegenConfig) FormatEnabled() bool {
	return c.Format == nil || *c.Format
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}

	switch strings.ToLower(c.Preferences.Backend) {
	case "", preference.BackendMemory:
	case preference.BackendFile, preference.BackendSQLite:
		if strings.TrimSpace(c.Preferences.Path) == "" {
			errs = append(errs, fmt.Errorf("preferences.path is required for the %s backend", c.Preferences.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid preferences.backend: %q (must be memory, file, or sqlite)", c.Preferences.Backend))
	}

	if _, err := codegen.DefaultRegistry().Parse(c.Codegen.Target); err != nil {
		errs = append(errs, fmt.Errorf("codegen.target: %w", err))
	}
	if c.Codegen.Component != "" && !validComponentName(c.Codegen.Component) {
		errs = append(errs, fmt.Errorf("codegen.component %q is not a valid component name", c.Codegen.Component))
	}
	return errors.Join(errs...)
}

// validComponentName accepts PascalCase JavaScript identifiers.
func validComponentName(name string) bool {
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
		case i > 0 && (r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_'):
		default:
			return false
		}
	}
	return name != ""
}

// Load reads a YAML or JSON file over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse YAML %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse JSON %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file format %q", ext)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from FORMBUILDER_* variables read through lookup,
// usually os.LookupEnv. Malformed values are reported, not ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	var errs []error
	duration := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	if v, ok := get("ADDR"); ok {
		cfg.Server.Addr = v
	}
	duration("READ_TIMEOUT", &cfg.Server.ReadTimeout)
	duration("WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	duration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := get("MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_BODY_BYTES: %w", EnvPrefix, err))
		} else {
			cfg.Server.MaxBodyBytes = n
		}
	}
	if v, ok := get("PREFERENCES_BACKEND"); ok {
		cfg.Preferences.Backend = v
	}
	if v, ok := get("PREFERENCES_PATH"); ok {
		cfg.Preferences.Path = v
	}
	if v, ok := get("TARGET"); ok {
		cfg.Codegen.Target = v
	}
	if v, ok := get("COMPONENT"); ok {
		cfg.Codegen.Component = v
	}
	if v, ok := get("THEME"); ok {
		cfg.Preview.Theme = v
	}
	if v, ok := get("THEME_VARIANT"); ok {
		cfg.Preview.Variant = v
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
