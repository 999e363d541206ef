package bitbucket

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/sizediff/internal/model"
	"github.com/maxbolgarin/sizediff/internal/model/interfaces"
)

var _ interfaces.CommentProvider = (*Provider)(nil)

const (
	defaultBaseURL = "https://api.bitbucket.org/2.0"
)

// Provider implements the CommentProvider interface for Bitbucket
type Provider struct {
	config model.ProviderConfig
	logger logze.Logger
	client *cliex.HTTP
}

// New creates a new Bitbucket provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("Bitbucket token is required")
	}
	log := logze.With("provider", "bitbucket", "component", "provider")

	// Set base URL
	baseURL := defaultBaseURL
	if config.BaseURL != "" {
		baseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	cli, err := cliex.New(cliex.WithBaseURL(baseURL), cliex.WithLogger(log))
	if err != nil {
		return nil, errm.Wrap(err, "failed to create Bitbucket client")
	}
	cli.C().SetBasicAuth("x-auth-token", config.Token)

	return &Provider{
		client: cli,
		config: config,
		logger: log,
	}, nil
}

// CreateComment creates a comment on a pull request
func (p *Provider) CreateComment(ctx context.Context, projectID string, prNumber int, comment *model.Comment) error {
	workspace, repoSlug, err := splitProjectID(projectID)
	if err != nil {
		return err
	}

	apiURL := fmt.Sprintf("repositories/%s/%s/pullrequests/%d/comments", workspace, repoSlug, prNumber)

	commentData := map[string]any{
		"content": map[string]any{
			"raw": comment.Body,
		},
	}

	var created bitbucketComment
	if _, err := p.client.Post(ctx, apiURL, commentData, &created); err != nil {
		return errm.Wrap(err, "failed to create comment")
	}

	comment.ID = strconv.Itoa(created.ID)

	return nil
}

// GetComments retrieves all comments for a pull request
func (p *Provider) GetComments(ctx context.Context, projectID string, prNumber int) ([]*model.Comment, error) {
	workspace, repoSlug, err := splitProjectID(projectID)
	if err != nil {
		return nil, err
	}

	var result []*model.Comment
	for page := 1; ; page++ {
		apiURL := fmt.Sprintf("repositories/%s/%s/pullrequests/%d/comments?pagelen=100&page=%d",
			workspace, repoSlug, prNumber, page)

		var response bitbucketCommentList
		if _, err := p.client.Get(ctx, apiURL, &response); err != nil {
			return nil, errm.Wrap(err, "failed to list comments")
		}

		for _, comment := range response.Values {
			if comment.Deleted {
				continue
			}

			createdAt, _ := time.Parse(time.RFC3339, comment.CreatedOn)
			updatedAt, _ := time.Parse(time.RFC3339, comment.UpdatedOn)

			result = append(result, &model.Comment{
				ID:   strconv.Itoa(comment.ID),
				Body: comment.Content.Raw,
				Author: model.User{
					ID:       comment.User.UUID,
					Username: comment.User.Username,
					Name:     comment.User.DisplayName,
				},
				CreatedAt: createdAt,
				UpdatedAt: updatedAt,
			})
		}

		if response.Next == "" {
			break
		}
	}

	return result, nil
}

// DeleteComment deletes a comment from a pull request
func (p *Provider) DeleteComment(ctx context.Context, projectID string, prNumber int, commentID string) error {
	workspace, repoSlug, err := splitProjectID(projectID)
	if err != nil {
		return err
	}

	apiURL := fmt.Sprintf("repositories/%s/%s/pullrequests/%d/comments/%s",
		workspace, repoSlug, prNumber, commentID)

	if _, err := p.client.Delete(ctx, apiURL); err != nil {
		return errm.Wrap(err, "failed to delete comment")
	}

	p.logger.Debug("deleted comment", "comment_id", commentID, "project_id", projectID)

	return nil
}

// GetCurrentUser retrieves information about the current authenticated user
func (p *Provider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	var user bitbucketUser
	if _, err := p.client.Get(ctx, "user", &user); err != nil {
		return nil, errm.Wrap(err, "failed to get current user")
	}

	return &model.User{
		ID:       user.UUID,
		Username: user.Username,
		Name:     user.DisplayName,
	}, nil
}

func splitProjectID(projectID string) (workspace, repoSlug string, err error) {
	parts := strings.Split(projectID, "/")
	if len(parts) != 2 {
		return "", "", errm.New("invalid Bitbucket project ID format, expected 'workspace/repo_slug'")
	}
	return parts[0], parts[1], nil
}
