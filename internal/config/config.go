package config

import (
	"os"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/sizediff/internal/differ"
	"github.com/maxbolgarin/sizediff/internal/event"
	"github.com/maxbolgarin/sizediff/internal/provider"
)

// Config represents the main application configuration
type Config struct {
	Provider provider.Config `yaml:"provider"`
	Diff     differ.Config   `yaml:"diff"`
	Event    event.Config    `yaml:"event"`
}

// PrepareAndValidate validates the configuration. The credential check runs
// first so a missing token fails before any other work is attempted.
func (c *Config) PrepareAndValidate() error {
	// CI runners commonly expose the token via GITHUB_TOKEN
	c.Provider.Token = lang.Check(c.Provider.Token, os.Getenv("GITHUB_TOKEN"))

	if c.Provider.Token == "" {
		return ErrMissingProviderToken
	}

	if err := c.Provider.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "provider")
	}
	if err := c.Diff.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "diff")
	}
	if err := c.Event.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "event")
	}

	return nil
}
