// Package event resolves the pull request context a run reports to.
// In CI the hosting platform writes the triggering event as a JSON payload
// file; outside CI the context can be supplied directly via configuration.
package event

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/sizediff/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config represents pull request context configuration
type Config struct {
	Path         string `yaml:"path" env:"EVENT_PATH"`
	ProjectID    string `yaml:"project_id" env:"EVENT_PROJECT_ID"`
	PRNumber     int    `yaml:"pr_number" env:"EVENT_PR_NUMBER"`
	SourceBranch string `yaml:"source_branch" env:"EVENT_SOURCE_BRANCH"`
}

func (c *Config) PrepareAndValidate() error {
	if c.Path == "" {
		// GitHub Actions exposes the payload location in the runner environment
		c.Path = os.Getenv("GITHUB_EVENT_PATH")
	}
	if c.Path == "" && (c.ProjectID == "" || c.PRNumber == 0) {
		return errm.New("either event path or project_id with pr_number is required")
	}
	return nil
}

// payload is the subset of the pull request event payload the engine needs.
type payload struct {
	PullRequest struct {
		Number int `json:"number"`
		Head   struct {
			Ref string `json:"ref"`
		} `json:"head"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// Resolve builds the pull request identity from the payload file, with
// explicit configuration values taking precedence over payload fields.
func Resolve(cfg Config) (model.PullRequest, error) {
	log := logze.With("component", "event")

	pr := model.PullRequest{
		ProjectID:    cfg.ProjectID,
		Number:       cfg.PRNumber,
		SourceBranch: cfg.SourceBranch,
	}

	if cfg.Path != "" {
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			return model.PullRequest{}, errm.Wrap(err, "failed to read event payload")
		}

		var p payload
		if err := json.Unmarshal(data, &p); err != nil {
			return model.PullRequest{}, errm.Wrap(err, "failed to parse event payload")
		}

		pr.ProjectID = lang.Check(pr.ProjectID, p.Repository.FullName)
		pr.SourceBranch = lang.Check(pr.SourceBranch, p.PullRequest.Head.Ref)
		if pr.Number == 0 {
			pr.Number = p.PullRequest.Number
		}
	}

	if pr.ProjectID == "" || pr.Number == 0 {
		return model.PullRequest{}, errm.New("cannot resolve pull request from event payload")
	}

	log.Debug("resolved pull request", "project_id", pr.ProjectID, "pr_number", pr.Number, "source_branch", pr.SourceBranch)

	return pr, nil
}
