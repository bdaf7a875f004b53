package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// cliConfig holds the CLI-wide defaults read from ntfsgo.yaml, with a
// hardcoded fallback for every field so the tool runs unconfigured.
type cliConfig struct {
	ImagePath      string `mapstructure:"image_path"`
	FormatSize     int64  `mapstructure:"format_size"`
	Signature      string `mapstructure:"signature"`
	Description    string `mapstructure:"description"`
	CheckerWorkers int    `mapstructure:"checker_workers"`
}

func defaultCliConfig() cliConfig {
	return cliConfig{
		ImagePath:      "ntfsgo.img",
		FormatSize:     1 << 20,
		Signature:      "NTFSGO",
		Description:    "ntfsgo image",
		CheckerWorkers: 4,
	}
}

// loadConfig reads configPath (or the default search path) via viper,
// falling back to defaultCliConfig for anything it doesn't set. A missing
// config file is not an error.
func loadConfig(configPath string) (cliConfig, error) {
	cfg := defaultCliConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("ntfsgo")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetDefault("image_path", cfg.ImagePath)
	v.SetDefault("format_size", cfg.FormatSize)
	v.SetDefault("signature", cfg.Signature)
	v.SetDefault("description", cfg.Description)
	v.SetDefault("checker_workers", cfg.CheckerWorkers)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

