package gitlab

import (
	"context"
	"strconv"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/sizediff/internal/model"
	"github.com/maxbolgarin/sizediff/internal/model/interfaces"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	defaultBaseURL = "https://gitlab.com"
)

var _ interfaces.CommentProvider = (*Provider)(nil)

// Provider implements the CommentProvider interface for GitLab
type Provider struct {
	client *gitlab.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitLab provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitLab token is required")
	}
	logger := logze.With("provider", "gitlab", "component", "provider")

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client, err := gitlab.NewClient(config.Token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, errm.Wrap(err, "failed to create GitLab client")
	}

	return &Provider{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// CreateComment creates a note on a merge request
func (p *Provider) CreateComment(ctx context.Context, projectID string, prNumber int, comment *model.Comment) error {
	note, _, err := p.client.Notes.CreateMergeRequestNote(projectPID(projectID), prNumber, &gitlab.CreateMergeRequestNoteOptions{
		Body: &comment.Body,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return errm.Wrap(err, "failed to create merge request note")
	}

	comment.ID = strconv.Itoa(note.ID)
	return nil
}

// GetComments retrieves all notes for a merge request
func (p *Provider) GetComments(ctx context.Context, projectID string, prNumber int) ([]*model.Comment, error) {
	opts := &gitlab.ListMergeRequestNotesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}

	var result []*model.Comment
	for {
		notes, resp, err := p.client.Notes.ListMergeRequestNotes(projectPID(projectID), prNumber, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, errm.Wrap(err, "failed to list merge request notes")
		}

		for _, note := range notes {
			result = append(result, &model.Comment{
				ID:   strconv.Itoa(note.ID),
				Body: note.Body,
				Author: model.User{
					ID:       strconv.Itoa(note.Author.ID),
					Username: note.Author.Username,
					Name:     note.Author.Name,
				},
				CreatedAt: lang.Deref(note.CreatedAt),
				UpdatedAt: lang.Deref(note.UpdatedAt),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// DeleteComment deletes a note from a merge request
func (p *Provider) DeleteComment(ctx context.Context, projectID string, prNumber int, commentID string) error {
	noteID, err := strconv.Atoi(commentID)
	if err != nil {
		return errm.Wrap(err, "invalid note ID")
	}

	if _, err := p.client.Notes.DeleteMergeRequestNote(projectPID(projectID), prNumber, noteID, gitlab.WithContext(ctx)); err != nil {
		return errm.Wrap(err, "failed to delete merge request note")
	}

	p.logger.Debug("deleted note", "note_id", noteID, "project_id", projectID)

	return nil
}

// GetCurrentUser retrieves information about the current authenticated user
func (p *Provider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	user, _, err := p.client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		return nil, errm.Wrap(err, "failed to get current user")
	}

	return &model.User{
		ID:       strconv.Itoa(user.ID),
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

// projectPID accepts both numeric project IDs and "group/project" paths.
func projectPID(projectID string) any {
	if id, err := strconv.Atoi(projectID); err == nil {
		return id
	}
	return projectID
}
