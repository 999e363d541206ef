package interfaces

import (
	"context"

	"github.com/maxbolgarin/sizediff/internal/model"
)

// CommentProvider defines the comment surface of a VCS provider (GitLab, GitHub, etc.).
// The run engine lists, deletes and creates pull request comments and resolves
// the authenticated user to validate credentials up front.
type CommentProvider interface {
	CreateComment(ctx context.Context, projectID string, prNumber int, comment *model.Comment) error
	GetComments(ctx context.Context, projectID string, prNumber int) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, projectID string, prNumber int, commentID string) error
	GetCurrentUser(ctx context.Context) (*model.User, error)
}
