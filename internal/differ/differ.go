// Package differ computes per-branch size snapshots and reconciles them into
// a rendered report. Each branch is materialized into its own workspace,
// optionally built, then measured, so the two branches never share state.
package differ

import (
	"context"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/sizediff/internal/collector"
	"github.com/maxbolgarin/sizediff/internal/model"
	"github.com/maxbolgarin/sizediff/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// Differ computes branch size snapshots.
type Differ struct {
	materializer *workspace.Materializer
	collector    *collector.Collector

	cfg Config
	log logze.Logger
}

// New creates a new differ. authUser and token authenticate git fetches
// against the hosting provider; both may be empty for local-only sources.
func New(cfg Config, authUser, token string) (*Differ, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "failed to prepare and validate config")
	}

	coll, err := collector.New()
	if err != nil {
		return nil, erro.Wrap(err, "failed to create collector")
	}

	return &Differ{
		materializer: workspace.NewMaterializer(cfg.Source, cfg.Workdir, authUser, token),
		collector:    coll,
		cfg:          cfg,
		log:          logze.With("component", "differ"),
	}, nil
}

// Close releases the collector worker pool.
func (d *Differ) Close() {
	d.collector.Close()
}

// ComputeBranchStats materializes the branch workspace, runs the pre-diff
// script if configured and collects metrics for the globbed file set.
func (d *Differ) ComputeBranchStats(ctx context.Context, branch string) (*model.BranchStats, error) {
	log := d.log.WithFields("branch", branch)

	dir, err := d.materializer.Materialize(ctx, branch)
	if err != nil {
		return nil, errm.Wrap(err, "failed to materialize workspace")
	}

	if err := workspace.RunScript(ctx, dir, d.cfg.PreDiffScript); err != nil {
		return nil, errm.Wrap(err, "failed to run pre-diff script")
	}

	stats, err := d.collector.Collect(ctx, branch, dir, d.cfg.globs)
	if err != nil {
		return nil, errm.Wrap(err, "failed to collect file stats")
	}

	log.Info("computed branch stats",
		"files", len(stats.Files),
		"total_size", stats.TotalSize,
		"total_gzip", stats.TotalGzip,
		"total_brotli", stats.TotalBrotli,
	)

	return stats, nil
}

// CompareBranches computes both branch snapshots concurrently. The two
// aggregations are side-effect isolated because each owns its workspace.
func (d *Differ) CompareBranches(ctx context.Context, targetBranch, subjectBranch string) (target, subject *model.BranchStats, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := d.ComputeBranchStats(ctx, targetBranch)
		if err != nil {
			return errm.Wrap(err, "target branch")
		}
		target = stats
		return nil
	})

	g.Go(func() error {
		stats, err := d.ComputeBranchStats(ctx, subjectBranch)
		if err != nil {
			return errm.Wrap(err, "subject branch")
		}
		subject = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return target, subject, nil
}
