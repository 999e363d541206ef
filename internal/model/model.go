package model

import (
	"time"
)

// ProviderConfig represents provider-specific configuration
type ProviderConfig struct {
	BaseURL string
	Token   string
}

// User represents a user across different providers
type User struct {
	ID       string
	Username string
	Name     string
}

// PullRequest identifies the pull/merge request a run reports to.
type PullRequest struct {
	ProjectID    string // "owner/repo" for GitHub/Bitbucket, numeric ID for GitLab
	Number       int
	SourceBranch string
}

// Comment represents a pull request comment across different providers
type Comment struct {
	ID        string
	Body      string
	Author    User
	CreatedAt time.Time
	UpdatedAt time.Time
}
