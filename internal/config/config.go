// Package config is used to load the configuration file
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/blacktop/imgsniff/pkg/bitmap"
	"github.com/blacktop/imgsniff/pkg/bytepool"
	"github.com/blacktop/imgsniff/pkg/imgtype"
)

const (
	DefaultProber = "header"
	DefaultFilter = "box"
)

type decode struct {
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	Concurrency int    `mapstructure:"concurrency"`
	Prober      string `mapstructure:"prober"`
	AutoOrient  bool   `mapstructure:"auto-orient"`
	Filter      string `mapstructure:"filter"`
	MaxFrames   int    `mapstructure:"max-frames"`
	Preview     bool   `mapstructure:"preview"`
}

type pool struct {
	BufferSize int `mapstructure:"buffer-size"`
	MaxSize    int `mapstructure:"max-size"`
}

// Config is the configuration struct
type Config struct {
	Decode decode `mapstructure:"decode"`
	Pool   pool   `mapstructure:"pool"`
}

func (c *Config) verify() error {
	if c.Decode.Concurrency < 0 {
		return fmt.Errorf("config: decode.concurrency cannot be negative (%d)", c.Decode.Concurrency)
	}
	if c.Decode.MaxFrames < 0 {
		return fmt.Errorf("config: decode.max-frames cannot be negative (%d)", c.Decode.MaxFrames)
	}
	if c.Pool.BufferSize < 0 || c.Pool.MaxSize < 0 {
		return fmt.Errorf("config: pool sizes cannot be negative")
	}

	c.Decode.Prober = strings.ToLower(c.Decode.Prober)
	if c.Decode.Prober == "" {
		c.Decode.Prober = DefaultProber
	}
	if _, err := imgtype.ParserFor(c.Decode.Prober); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Decode.Filter = strings.ToLower(c.Decode.Filter)
	if c.Decode.Filter == "" {
		c.Decode.Filter = DefaultFilter
	}
	if _, err := bitmap.NewDecoder(&bitmap.Config{Filter: c.Decode.Filter}); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.Pool.BufferSize == 0 {
		c.Pool.BufferSize = bytepool.TempBytesSize
	}
	if c.Pool.MaxSize == 0 {
		c.Pool.MaxSize = bytepool.MaxSize
	}
	if c.Pool.MaxSize < c.Pool.BufferSize {
		return fmt.Errorf("config: pool.max-size (%d) is smaller than pool.buffer-size (%d)", c.Pool.MaxSize, c.Pool.BufferSize)
	}

	return nil
}

// Load loads the configuration from viper
func Load() (*Config, error) {
	var c Config

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %w", err)
	}

	return &c, nil
}
