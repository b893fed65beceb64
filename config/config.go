// Package config handles intcode.toml run configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file looked up by Find.
const FileName = "intcode.toml"

// Config represents an intcode.toml file.
type Config struct {
	Machine Machine `toml:"machine"`
	Amp     Amp     `toml:"amp"`
	Arcade  Arcade  `toml:"arcade"`
	View    View    `toml:"view"`
	Debug   Debug   `toml:"debug"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-"`
}

// Machine configures every Intcode machine that is run.
type Machine struct {
	// MemoryLimit is the number of addressable cells.
	// Zero means intcode.DefaultLimit.
	MemoryLimit int `toml:"memory-limit"`
}

// Amp configures the amplifier phase searches. Each range is a two
// element inclusive [lo, hi] pair.
type Amp struct {
	Phases         []int64 `toml:"phases"`
	FeedbackPhases []int64 `toml:"feedback-phases"`
}

// Arcade configures the arcade cabinet.
type Arcade struct {
	FreePlay bool `toml:"free-play"`
}

// View configures image output.
type View struct {
	Scale int `toml:"scale"`
}

// Debug configures the debugger.
type Debug struct {
	Watch []int `toml:"watch"`
}

// maxPhases bounds the size of a phase range, as the search tries every
// ordering of it.
const maxPhases = 10

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Amp: Amp{
			Phases:         []int64{0, 4},
			FeedbackPhases: []int64{5, 9},
		},
		View: View{Scale: 8},
	}
}

// Load parses the configuration file at path. Settings missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if un := md.Undecoded(); len(un) > 0 {
		keys := make([]string, len(un))
		for i, k := range un {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	c.Path = path
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Find loads FileName from dir, or returns the default configuration if
// there is no such file.
func Find(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	if c.Machine.MemoryLimit < 0 {
		return fmt.Errorf("machine.memory-limit: must not be negative, got %d", c.Machine.MemoryLimit)
	}
	if err := checkRange("amp.phases", c.Amp.Phases); err != nil {
		return err
	}
	if err := checkRange("amp.feedback-phases", c.Amp.FeedbackPhases); err != nil {
		return err
	}
	if c.View.Scale < 1 {
		return fmt.Errorf("view.scale: must be at least 1, got %d", c.View.Scale)
	}
	for _, a := range c.Debug.Watch {
		if a < 0 {
			return fmt.Errorf("debug.watch: negative address %d", a)
		}
	}
	return nil
}

func checkRange(key string, r []int64) error {
	if len(r) != 2 {
		return fmt.Errorf("%s: want [lo, hi], got %d values", key, len(r))
	}
	if r[0] > r[1] {
		return fmt.Errorf("%s: lo %d is greater than hi %d", key, r[0], r[1])
	}
	if r[1]-r[0] >= maxPhases {
		return fmt.Errorf("%s: more than %d phase settings", key, maxPhases)
	}
	return nil
}
