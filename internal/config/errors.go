package config

import "errors"

var (
	ErrMissingProviderToken = errors.New("provider token is required")
)
