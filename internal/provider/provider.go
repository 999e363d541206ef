package provider

import (
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/sizediff/internal/model"
	"github.com/maxbolgarin/sizediff/internal/model/interfaces"
	"github.com/maxbolgarin/sizediff/internal/provider/bitbucket"
	"github.com/maxbolgarin/sizediff/internal/provider/github"
	"github.com/maxbolgarin/sizediff/internal/provider/gitlab"
)

// New creates a new VCS provider based on the configuration
func New(cfg Config) (interfaces.CommentProvider, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	cfgForProvider := model.ProviderConfig{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
	}

	var provider interfaces.CommentProvider
	var err error

	switch cfg.Type {
	case GitLab:
		provider, err = gitlab.New(cfgForProvider)
	case GitHub:
		provider, err = github.New(cfgForProvider)
	case Bitbucket:
		provider, err = bitbucket.New(cfgForProvider)
	default:
		return nil, erro.New("unsupported provider type: %s", cfg.Type)
	}
	if err != nil {
		return nil, erro.Wrap(err, "failed to create provider")
	}

	return provider, nil
}
