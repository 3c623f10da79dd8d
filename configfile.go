package logtree

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FILE CONFIG

// FileConfig is logger configuration read from YAML.
// Unset fields keep the logger's defaults.
//
//	meta: true
//	time: false
//	store_last: 200
//	output:
//	  target: stderr
//	  format: plain
type FileConfig struct {
	Meta      *bool         `yaml:"meta"`
	Time      *bool         `yaml:"time"`
	Silent    *bool         `yaml:"silent"`
	StoreLast *int          `yaml:"store_last"`
	Output    OutputSection `yaml:"output"`
}

// OutputSection configures the renderer built by [FileConfig.Options].
type OutputSection struct {
	// stdout (default), stderr, or none
	Target string `yaml:"target"`

	// auto (default), plain, or ansi
	Format string `yaml:"format"`

	Colors *bool `yaml:"colors"`

	// MetaFormat is full (default), short, or pkg
	MetaFormat string `yaml:"meta_format"`
}

// ParseConfig decodes YAML configuration.
func ParseConfig(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("logtree: parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads YAML configuration from path, then applies LOGTREE_* environment overrides.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("logtree: load config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.loadEnv()
	return cfg, cfg.validate()
}

func (cfg *FileConfig) validate() error {
	switch strings.ToLower(cfg.Output.Target) {
	case "", "stdout", "stderr", "none":
	default:
		return fmt.Errorf("logtree: unknown output target %q", cfg.Output.Target)
	}

	switch strings.ToLower(cfg.Output.Format) {
	case "", "auto", "plain", "ansi":
	default:
		return fmt.Errorf("logtree: unknown output format %q", cfg.Output.Format)
	}

	switch strings.ToLower(cfg.Output.MetaFormat) {
	case "", "full", "short", "pkg":
	default:
		return fmt.Errorf("logtree: unknown meta format %q", cfg.Output.MetaFormat)
	}

	if cfg.StoreLast != nil && *cfg.StoreLast < 0 {
		return fmt.Errorf("logtree: store_last must not be negative, got %d", *cfg.StoreLast)
	}

	return nil
}

// loadEnv overrides fields from the environment.
// Unparseable values are reported through the fallback logger and ignored.
func (cfg *FileConfig) loadEnv() {
	envBool := func(key string, dst **bool) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			Fallback().Warn("ignoring environment override", "key", key, "err", err)
			return
		}
		*dst = &b
	}

	envBool("LOGTREE_META", &cfg.Meta)
	envBool("LOGTREE_TIME", &cfg.Time)
	envBool("LOGTREE_SILENT", &cfg.Silent)
	envBool("LOGTREE_COLORS", &cfg.Output.Colors)

	if v := os.Getenv("LOGTREE_STORE_LAST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			Fallback().Warn("ignoring environment override", "key", "LOGTREE_STORE_LAST", "err", err)
		} else {
			cfg.StoreLast = &n
		}
	}

	if v := os.Getenv("LOGTREE_OUTPUT"); v != "" {
		cfg.Output.Target = v
	}
}

// Options converts the configuration into logger options.
// Options for unset fields are omitted, so they can be passed to [Logger.Setup] as a patch.
func (cfg *FileConfig) Options() []Option {
	var opts []Option

	if cfg.Meta != nil {
		opts = append(opts, Using.Meta(*cfg.Meta))
	}
	if cfg.Time != nil {
		opts = append(opts, Using.Time(*cfg.Time))
	}
	if cfg.Silent != nil {
		opts = append(opts, Using.Silent(*cfg.Silent))
	}
	if cfg.StoreLast != nil {
		opts = append(opts, Using.StoreLast(*cfg.StoreLast))
	}

	switch strings.ToLower(cfg.Output.Target) {
	case "":
		if cfg.Output.Format == "" && cfg.Output.Colors == nil && cfg.Output.MetaFormat == "" {
			return opts
		}
		opts = append(opts, Using.Output(cfg.Output.renderer(os.Stdout)))
	case "stdout":
		opts = append(opts, Using.Output(cfg.Output.renderer(os.Stdout)))
	case "stderr":
		opts = append(opts, Using.Output(cfg.Output.renderer(os.Stderr)))
	case "none":
		opts = append(opts, Using.Output())
	}

	return opts
}

func (o OutputSection) renderer(w io.Writer) *Renderer {
	cfg := NewOutput().Writer(w)

	if o.Colors != nil {
		cfg.Colors(*o.Colors)
	}

	switch strings.ToLower(o.MetaFormat) {
	case "short":
		cfg.Meta("dim", MetaShort)
	case "pkg":
		cfg.Meta("dim", MetaPkg)
	}

	switch strings.ToLower(o.Format) {
	case "plain":
		cfg.Colors(false).ForceTTY()
	case "ansi":
		cfg.Colors(true).ForceTTY()
	}

	return cfg.Renderer()
}
