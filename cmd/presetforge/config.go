package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"presetforge/cmd/presetforge/cubelut"
)

// Config is the resolved process configuration.
type Config struct {
	ProjectName string
	Environment string
	Debug       bool
	Addr        string
	DataDir     string
	LUTSize     int
	LUTTitle    string
}

func defaultConfig() Config {
	return Config{
		ProjectName: "PresetForge",
		Environment: "development",
		Addr:        ":8000",
		DataDir:     ".",
		LUTSize:     33,
		LUTTitle:    cubelut.DefaultTitle,
	}
}

// loadConfig layers defaults, the env file, the environment and any flags
// set explicitly on the command line.
func loadConfig(envFile string, flags *pflag.FlagSet) (Config, error) {
	cfg := defaultConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.applyFlags(flags); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PROJECT_NAME"); ok && v != "" {
		c.ProjectName = v
	}
	if v, ok := lookup("ENVIRONMENT"); ok && v != "" {
		c.Environment = v
	}
	if v, ok := lookup("DEBUG"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("can't parse DEBUG: %s", v)
		}
		c.Debug = b
	}
	if v, ok := lookup("PRESETFORGE_ADDR"); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup("PRESETFORGE_DATA_DIR"); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := lookup("PRESETFORGE_LUT_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse PRESETFORGE_LUT_SIZE: %s", v)
		}
		c.LUTSize = n
	}
	if v, ok := lookup("PRESETFORGE_LUT_TITLE"); ok && v != "" {
		c.LUTTitle = v
	}
	return nil
}

func (c *Config) applyFlags(flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	var err error
	if flags.Changed("debug") {
		if c.Debug, err = flags.GetBool("debug"); err != nil {
			return err
		}
	}
	if flags.Changed("data-dir") {
		if c.DataDir, err = flags.GetString("data-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("lut-size") {
		if c.LUTSize, err = flags.GetInt("lut-size"); err != nil {
			return err
		}
	}
	if flags.Changed("title") {
		if c.LUTTitle, err = flags.GetString("title"); err != nil {
			return err
		}
	}
	if flags.Changed("addr") {
		if c.Addr, err = flags.GetString("addr"); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) validate() error {
	if c.LUTSize < 2 {
		return fmt.Errorf("%w: %d (must be at least 2)", cubelut.ErrInvalidGridSize, c.LUTSize)
	}
	return cubelut.ValidateTitle(c.LUTTitle)
}
