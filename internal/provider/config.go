package provider

import (
	"slices"

	"github.com/maxbolgarin/errm"
)

type ProviderType string

// SupportedProviderTypes defines the supported VCS provider types
const (
	GitLab    ProviderType = "gitlab"
	GitHub    ProviderType = "github"
	Bitbucket ProviderType = "bitbucket"
)

var supportedProviderTypes = []ProviderType{GitLab, GitHub, Bitbucket}

// Config represents VCS provider configuration
type Config struct {
	Type    ProviderType `yaml:"type" env:"PROVIDER_TYPE"`
	BaseURL string       `yaml:"base_url" env:"PROVIDER_BASE_URL"`
	Token   string       `yaml:"token" env:"PROVIDER_TOKEN"`
}

func (c *Config) PrepareAndValidate() error {
	if c.Token == "" {
		return errm.New("token is required")
	}

	if c.Type == "" {
		c.Type = GitHub
	}
	if !slices.Contains(supportedProviderTypes, c.Type) {
		return errm.New("invalid provider type: %s", c.Type)
	}

	return nil
}

// GitAuthUsername returns the basic-auth username the hosting provider
// expects for token-authenticated git-over-HTTP fetches.
func (c *Config) GitAuthUsername() string {
	switch c.Type {
	case GitLab:
		return "oauth2"
	case Bitbucket:
		return "x-token-auth"
	default:
		return "x-access-token"
	}
}
