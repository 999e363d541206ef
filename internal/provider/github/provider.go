package github

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/sizediff/internal/model"
	"github.com/maxbolgarin/sizediff/internal/model/interfaces"
	"golang.org/x/oauth2"
)

var _ interfaces.CommentProvider = (*Provider)(nil)

const (
	defaultBaseURL = "https://github.com"
)

// Provider implements the CommentProvider interface for GitHub
type Provider struct {
	client *github.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitHub provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitHub token is required")
	}
	log := logze.With("provider", "github", "component", "provider")

	// Create OAuth2 token source
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: config.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	// Create GitHub client
	client := github.NewClient(tc)

	// Set base URL if provided (for GitHub Enterprise)
	if config.BaseURL != "" && config.BaseURL != defaultBaseURL {
		var err error
		client, err = github.NewClient(tc).WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
	}

	return &Provider{
		client: client,
		config: config,
		logger: log,
	}, nil
}

// CreateComment creates a comment on a pull request
func (p *Provider) CreateComment(ctx context.Context, projectID string, prNumber int, comment *model.Comment) error {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return err
	}

	// Create issue comment (GitHub treats PR comments as issue comments)
	githubComment := &github.IssueComment{
		Body: &comment.Body,
	}

	createdComment, _, err := p.client.Issues.CreateComment(ctx, owner, repo, prNumber, githubComment)
	if err != nil {
		return errm.Wrap(err, "failed to create pull request comment")
	}

	// Update comment with the created ID
	comment.ID = strconv.FormatInt(createdComment.GetID(), 10)

	return nil
}

// GetComments retrieves all comments for a pull request
func (p *Provider) GetComments(ctx context.Context, projectID string, prNumber int) ([]*model.Comment, error) {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	// Get issue comments (GitHub treats PR comments as issue comments)
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allComments []*github.IssueComment
	for {
		comments, resp, err := p.client.Issues.ListComments(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, errm.Wrap(err, "failed to list pull request comments")
		}

		allComments = append(allComments, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	// Convert to our models
	var result []*model.Comment
	for _, comment := range allComments {
		result = append(result, &model.Comment{
			ID:   strconv.FormatInt(comment.GetID(), 10),
			Body: comment.GetBody(),
			Author: model.User{
				ID:       strconv.FormatInt(comment.GetUser().GetID(), 10),
				Username: comment.GetUser().GetLogin(),
				Name:     comment.GetUser().GetName(),
			},
			CreatedAt: comment.GetCreatedAt().Time,
			UpdatedAt: comment.GetUpdatedAt().Time,
		})
	}

	return result, nil
}

// DeleteComment deletes a comment from a pull request
func (p *Provider) DeleteComment(ctx context.Context, projectID string, prNumber int, commentID string) error {
	owner, repo, err := splitProjectID(projectID)
	if err != nil {
		return err
	}

	commentIDInt, err := strconv.ParseInt(commentID, 10, 64)
	if err != nil {
		return errm.Wrap(err, "invalid comment ID")
	}

	if _, err := p.client.Issues.DeleteComment(ctx, owner, repo, commentIDInt); err != nil {
		return errm.Wrap(err, "failed to delete pull request comment")
	}

	p.logger.Debug("deleted comment", "comment_id", commentID, "project_id", projectID)

	return nil
}

// GetCurrentUser retrieves information about the current authenticated user
func (p *Provider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	user, _, err := p.client.Users.Get(ctx, "")
	if err != nil {
		return nil, errm.Wrap(err, "failed to get current user")
	}

	return &model.User{
		ID:       strconv.FormatInt(user.GetID(), 10),
		Username: user.GetLogin(),
		Name:     user.GetName(),
	}, nil
}

func splitProjectID(projectID string) (owner, repo string, err error) {
	parts := strings.Split(projectID, "/")
	if len(parts) != 2 {
		return "", "", errm.New("invalid GitHub project ID format, expected 'owner/repo'")
	}
	return parts[0], parts[1], nil
}
