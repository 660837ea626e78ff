package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/richtext/internal/errors"
	"github.com/vango-dev/richtext/pkg/richtext"
)

const (
	// JSONFileName and TOMLFileName are the configuration file names Load
	// looks for. TOML wins when both exist.
	JSONFileName = "richtext.json"
	TOMLFileName = "richtext.toml"

	// DefaultAddr is the default HTTP listen address.
	DefaultAddr = ":8080"

	// DefaultEditorPath serves the visual editor shell.
	DefaultEditorPath = "/editor"

	DefaultMetricsPath  = "/metrics"
	DefaultServiceName  = "richtext"
	DefaultReadTimeout  = "10s"
	DefaultWriteTimeout = "30s"
	DefaultShutdown     = "10s"

	// DefaultMaxBodyBytes limits request bodies (1MB).
	DefaultMaxBodyBytes = 1 << 20
)

// Config is the complete richtext configuration file.
type Config struct {
	Server ServerConfig `json:"server,omitempty" toml:"server"`

	// Bridge configures the live preview websocket.
	Bridge BridgeConfig `json:"bridge,omitempty" toml:"bridge"`

	// Richtext is the renderer configuration: resolver names, classes and
	// flags.
	Richtext richtext.Options `json:"richtext,omitempty" toml:"richtext"`

	Metrics MetricsConfig `json:"metrics,omitempty" toml:"metrics"`
	Tracing TracingConfig `json:"tracing,omitempty" toml:"tracing"`

	// Sink is where the CLI stores rendered output.
	Sink SinkConfig `json:"sink,omitempty" toml:"sink"`

	configPath string
}

// ServerConfig contains HTTP server settings. Durations use Go syntax
// ("10s").
type ServerConfig struct {
	Addr string `json:"addr,omitempty" toml:"addr"`

	// EditorPath is where the editor shell is served.
	EditorPath string `json:"editorPath,omitempty" toml:"editor_path"`

	// PreviewURL overrides the preview URL the editor shell loads. When
	// empty it is derived from the request host.
	PreviewURL string `json:"previewUrl,omitempty" toml:"preview_url"`

	ReadTimeout     string `json:"readTimeout,omitempty" toml:"read_timeout"`
	WriteTimeout    string `json:"writeTimeout,omitempty" toml:"write_timeout"`
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" toml:"shutdown_timeout"`

	// MaxBodyBytes limits render request bodies.
	MaxBodyBytes int64 `json:"maxBodyBytes,omitempty" toml:"max_body_bytes"`
}

// BridgeConfig contains live preview settings.
type BridgeConfig struct {
	Enabled bool `json:"enabled,omitempty" toml:"enabled"`

	// AllowedOrigins lists origins allowed to open the preview websocket.
	// Empty allows same-origin requests only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" toml:"allowed_origins"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" toml:"enabled"`
	Path      string `json:"path,omitempty" toml:"path"`
	Namespace string `json:"namespace,omitempty" toml:"namespace"`
}

// TracingConfig contains OpenTelemetry settings. Spans go to the global
// tracer provider; exporters are configured by the embedding program.
type TracingConfig struct {
	Enabled     bool   `json:"enabled,omitempty" toml:"enabled"`
	ServiceName string `json:"serviceName,omitempty" toml:"service_name"`
}

// SinkConfig contains output storage settings.
type SinkConfig struct {
	// Dir is the base directory for disk output.
	Dir string `json:"dir,omitempty" toml:"dir"`

	S3 S3Config `json:"s3,omitempty" toml:"s3"`
}

// S3Config contains S3 output settings. Credentials come from the standard
// AWS environment variables.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty" toml:"bucket"`
	Prefix    string `json:"prefix,omitempty" toml:"prefix"`
	Region    string `json:"region,omitempty" toml:"region"`
	Endpoint  string `json:"endpoint,omitempty" toml:"endpoint"`
	PathStyle bool   `json:"pathStyle,omitempty" toml:"path_style"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			EditorPath:      DefaultEditorPath,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdown,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      DefaultMetricsPath,
			Namespace: "richtext",
		},
		Tracing: TracingConfig{
			ServiceName: DefaultServiceName,
		},
		Sink: SinkConfig{
			Dir: "out",
		},
	}
}

// Load reads configuration from dir, preferring richtext.toml over
// richtext.json.
func Load(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, TOMLFileName)
	if _, err := os.Stat(tomlPath); err == nil {
		return LoadFile(tomlPath)
	}
	return LoadFile(filepath.Join(dir, JSONFileName))
}

// LoadFile reads configuration from path. Files ending in .toml are decoded
// as TOML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No richtext configuration found at " + path).
				WithSuggestion("Run 'richtext init' to write a default configuration")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			rerr := errors.New("E121").Wrap(err)
			var perr toml.ParseError
			if stderrors.As(err, &perr) {
				rerr.WithLocation(path, data, perr.Position.Line, 0)
			}
			return nil, rerr
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			rerr := errors.New("E121").Wrap(err)
			var syntax *json.SyntaxError
			var typ *json.UnmarshalTypeError
			switch {
			case stderrors.As(err, &syntax):
				rerr.WithOffset(path, data, syntax.Offset)
			case stderrors.As(err, &typ):
				rerr.WithOffset(path, data, typ.Offset)
			}
			return nil, rerr.WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON with known keys")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path, as TOML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.New("E120").Wrap(err)
		}
	} else {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New("E120").Wrap(err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.EditorPath == "" {
		c.Server.EditorPath = d.Server.EditorPath
	}
	if !strings.HasPrefix(c.Server.EditorPath, "/") {
		c.Server.EditorPath = "/" + c.Server.EditorPath
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = d.Tracing.ServiceName
	}
	if c.Sink.Dir == "" {
		c.Sink.Dir = d.Sink.Dir
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return errors.New("E120").
				WithDetail(fmt.Sprintf("%s must be a non-negative duration, got %q", name, v)).
				WithSuggestion(`Use Go duration syntax such as "10s" or "1m30s"`)
		}
	}

	if c.Server.MaxBodyBytes < 0 {
		return errors.New("E120").WithDetail("server.maxBodyBytes must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E120").WithDetail("metrics.path must start with /")
	}
	if c.Sink.S3.Endpoint != "" && c.Sink.S3.Bucket == "" {
		return errors.New("E120").
			WithDetail("sink.s3.endpoint is set but sink.s3.bucket is empty")
	}

	for typ, name := range c.Richtext.Resolvers {
		if name == "" {
			return errors.New("E120").
				WithDetail(fmt.Sprintf("richtext.resolvers.%s has an empty name", typ))
		}
	}
	return nil
}

// ReadTimeout returns server.readTimeout as a duration.
func (c *Config) ReadTimeout() time.Duration { return duration(c.Server.ReadTimeout) }

// WriteTimeout returns server.writeTimeout as a duration.
func (c *Config) WriteTimeout() time.Duration { return duration(c.Server.WriteTimeout) }

// ShutdownTimeout returns server.shutdownTimeout as a duration.
func (c *Config) ShutdownTimeout() time.Duration { return duration(c.Server.ShutdownTimeout) }

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
