package app

import (
	"context"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/sizediff/internal/config"
	"github.com/maxbolgarin/sizediff/internal/differ"
	"github.com/maxbolgarin/sizediff/internal/event"
	"github.com/maxbolgarin/sizediff/internal/model"
	"github.com/maxbolgarin/sizediff/internal/model/interfaces"
	"github.com/maxbolgarin/sizediff/internal/provider"
	"github.com/maxbolgarin/sizediff/internal/workspace"
)

// SizeDiff is the main service that orchestrates all components
type SizeDiff struct {
	provider interfaces.CommentProvider
	differ   *differ.Differ
	pr       model.PullRequest

	cfg config.Config
	log logze.Logger
}

// New creates a new size diff service
func New(cfg config.Config) (*SizeDiff, error) {
	service := &SizeDiff{
		cfg: cfg,
		log: logze.With("component", "app"),
	}

	if err := service.init(cfg); err != nil {
		return nil, errm.Wrap(err, "failed to initialize service")
	}

	return service, nil
}

func (s *SizeDiff) init(cfg config.Config) (err error) {
	// Create VCS provider
	s.provider, err = provider.New(cfg.Provider)
	if err != nil {
		return errm.Wrap(err, "failed to create VCS provider")
	}

	// Resolve the pull request this run reports to
	s.pr, err = event.Resolve(cfg.Event)
	if err != nil {
		return errm.Wrap(err, "failed to resolve pull request")
	}

	// Create the diff engine
	s.differ, err = differ.New(cfg.Diff, cfg.Provider.GitAuthUsername(), cfg.Provider.Token)
	if err != nil {
		return errm.Wrap(err, "failed to create differ")
	}

	return nil
}

// Run computes both branch snapshots, renders the report and publishes it.
// When the uncompressed totals are byte-identical the run ends without output.
func (s *SizeDiff) Run(ctx context.Context) error {
	defer s.differ.Close()

	// An invalid token must fail the run before any workspace work starts.
	if err := s.verifyCredentials(ctx); err != nil {
		return err
	}

	subjectBranch := s.pr.SourceBranch
	if subjectBranch == "" {
		var err error
		subjectBranch, err = workspace.CurrentBranch(s.cfg.Diff.Source)
		if err != nil {
			return errm.Wrap(err, "failed to detect subject branch")
		}
	}

	target, subject, err := s.differ.CompareBranches(ctx, s.cfg.Diff.TargetBranch, subjectBranch)
	if err != nil {
		return errm.Wrap(err, "failed to compare branches")
	}

	return s.report(ctx, target, subject)
}

// verifyCredentials checks the provider token by resolving the authenticated
// user before the expensive branch materialization begins.
func (s *SizeDiff) verifyCredentials(ctx context.Context) error {
	user, err := s.provider.GetCurrentUser(ctx)
	if err != nil {
		return errm.Wrap(err, "failed to verify provider credentials")
	}

	s.log.Debug("authenticated to provider", "username", user.Username)

	return nil
}

// report decides whether the run produces output at all: byte-identical
// uncompressed totals end the run silently, anything else gets published.
func (s *SizeDiff) report(ctx context.Context, target, subject *model.BranchStats) error {
	if target.TotalSize == subject.TotalSize {
		s.log.Info("total size unchanged, skipping report",
			"target_branch", target.Branch,
			"subject_branch", subject.Branch,
			"total_size", target.TotalSize,
		)
		return nil
	}

	body := differ.BuildReport(target, subject, s.cfg.Diff.FileDetailsOpen)

	return s.publish(ctx, body)
}

// publish posts the report, replacing prior marker-tagged comments when
// configured. List-delete-create is not transactional: a concurrent run
// against the same pull request can race, which is an accepted limitation.
func (s *SizeDiff) publish(ctx context.Context, body string) error {
	if s.cfg.Diff.Replace() {
		if err := s.deleteOldReports(ctx); err != nil {
			return errm.Wrap(err, "failed to delete old reports")
		}
	}

	comment := &model.Comment{Body: body}
	if err := s.provider.CreateComment(ctx, s.pr.ProjectID, s.pr.Number, comment); err != nil {
		return errm.Wrap(err, "failed to create comment")
	}

	s.log.Info("published size report",
		"comment_id", comment.ID,
		"project_id", s.pr.ProjectID,
		"pr_number", s.pr.Number,
	)

	return nil
}

// deleteOldReports removes every prior comment opening with the report
// marker. Any comment starting with that literal text is treated as ours.
func (s *SizeDiff) deleteOldReports(ctx context.Context) error {
	comments, err := s.provider.GetComments(ctx, s.pr.ProjectID, s.pr.Number)
	if err != nil {
		return errm.Wrap(err, "failed to list comments")
	}

	for _, comment := range comments {
		if !strings.HasPrefix(comment.Body, differ.CommentMarker) {
			continue
		}
		if err := s.provider.DeleteComment(ctx, s.pr.ProjectID, s.pr.Number, comment.ID); err != nil {
			return errm.Wrap(err, "failed to delete comment")
		}
		s.log.Debug("deleted previous report", "comment_id", comment.ID)
	}

	return nil
}
