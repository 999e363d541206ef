package app

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/sizediff/internal/config"
)

// LoadConfig reads the configuration from an optional yaml file with
// environment variable overlay and validates it before any work starts.
func LoadConfig(path string) (config.Config, error) {
	var cfg config.Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return config.Config{}, erro.Wrap(err, "read config file")
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return config.Config{}, erro.Wrap(err, "read config from env")
		}
	}

	if err := cfg.PrepareAndValidate(); err != nil {
		return config.Config{}, erro.Wrap(err, "validate config")
	}

	return cfg, nil
}
