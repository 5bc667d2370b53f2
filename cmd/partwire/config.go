package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hengadev/errsx"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/partwire"
	"github.com/rawbytedev/partwire/pkg/frame"
)

// Environment overrides, applied after the config file.
const (
	EnvStorePath   = "PARTWIRE_STORE_PATH"
	EnvStoreBucket = "PARTWIRE_STORE_BUCKET"
	EnvCompression = "PARTWIRE_COMPRESSION"
	EnvMaxDepth    = "PARTWIRE_MAX_DEPTH"
)

type Config struct {
	Options OptionsConfig `yaml:"options"`
	Frame   FrameConfig   `yaml:"frame"`
	Store   StoreConfig   `yaml:"store"`
}

type OptionsConfig struct {
	SortMapKeys      bool `yaml:"sort_map_keys"`
	UnsafePrimitives bool `yaml:"unsafe_primitives"`
	MaxDepth         int  `yaml:"max_depth"`
}

type FrameConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Compression string `yaml:"compression"`
	SchemaID    uint64 `yaml:"schema_id"`
}

type StoreConfig struct {
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`
}

func DefaultConfig() *Config {
	return &Config{
		// YAML mappings decode into Go maps; sorting keeps output stable
		Options: OptionsConfig{SortMapKeys: true},
		Frame:   FrameConfig{Compression: frame.CodecNone.String()},
		Store:   StoreConfig{Path: "partwire.db", Bucket: "frames"},
	}
}

// LoadConfig reads the YAML file at path over the defaults and applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvStoreBucket); v != "" {
		c.Store.Bucket = v
	}
	if v := os.Getenv(EnvCompression); v != "" {
		c.Frame.Compression = v
	}
	if v := os.Getenv(EnvMaxDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDepth, err)
		}
		c.Options.MaxDepth = n
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	errs := errsx.Map{}
	if _, err := frame.ParseCodec(c.Frame.Compression); err != nil {
		errs.Set("frame.compression", err)
	}
	if c.Options.MaxDepth < 0 {
		errs.Set("options.max_depth", fmt.Errorf("must not be negative, got %d", c.Options.MaxDepth))
	}
	if c.Store.Path == "" {
		errs.Set("store.path", fmt.Errorf("cannot be empty"))
	}
	if c.Store.Bucket == "" {
		errs.Set("store.bucket", fmt.Errorf("cannot be empty"))
	}
	return errs.AsError()
}

func (c *Config) EncoderOptions() partwire.Options {
	return partwire.Options{
		SortMapKeys:      c.Options.SortMapKeys,
		UnsafePrimitives: c.Options.UnsafePrimitives,
		MaxDepth:         c.Options.MaxDepth,
	}
}
