// Package collector expands glob patterns into a file set and measures raw,
// gzip and brotli byte sizes for every file. Per-file work is independent, so
// collection runs in parallel and results are folded into totals afterwards.
package collector

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/sizediff/internal/model"
	"github.com/panjf2000/ants/v2"
)

const defaultPoolSize = 32

// Collector measures glob-selected file sets.
type Collector struct {
	pool *ants.Pool
	log  logze.Logger
}

// New creates a new collector with a worker pool for parallel stat tasks.
func New() (*Collector, error) {
	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create ants pool")
	}

	return &Collector{
		pool: pool,
		log:  logze.With("component", "collector"),
	}, nil
}

// Close releases the worker pool.
func (c *Collector) Close() {
	c.pool.Release()
}

// Collect expands patterns relative to root, measures every matched file and
// folds the metrics into a BranchStats keyed by root-relative paths. Any
// unreadable file or invalid pattern fails the whole collection: a silently
// dropped file would corrupt the totals.
func (c *Collector) Collect(ctx context.Context, branch, root string, patterns []string) (*model.BranchStats, error) {
	timer := abstract.StartTimer()

	files, err := expandGlobs(root, patterns)
	if err != nil {
		return nil, err
	}

	type result struct {
		path   string
		metric model.FileMetric
		err    error
	}

	// Each task writes only its own slot, so no locking is needed; totals
	// are folded sequentially after all workers finish.
	results := make([]result, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			path, metric, err := measureFile(root, file)
			results[i] = result{path: path, metric: metric, err: err}
		})
		if err != nil {
			wg.Done()
			return nil, errm.Wrap(err, "failed to submit stat task")
		}
	}
	wg.Wait()

	stats := model.NewBranchStats(branch)
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		stats.Add(r.path, r.metric)
	}

	c.log.Debug("collected file stats",
		"branch", branch,
		"files", len(stats.Files),
		"total_size", stats.TotalSize,
		"elapsed", timer.ElapsedTime().String(),
	)

	return stats, nil
}

// expandGlobs resolves all patterns to a sorted, deduplicated list of files.
func expandGlobs(root string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			return nil, errm.Wrap(err, "invalid glob pattern "+pattern)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, errm.Wrap(err, "failed to stat matched file")
			}
			if info.IsDir() {
				continue
			}
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			files = append(files, match)
		}
	}

	sort.Strings(files)

	return files, nil
}

// measureFile computes the metric triad for one file and its root-relative,
// slash-separated path key.
func measureFile(root, path string) (string, model.FileMetric, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", model.FileMetric{}, errm.Wrap(err, "failed to stat file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", model.FileMetric{}, errm.Wrap(err, "failed to read file")
	}

	gzipSize, err := compressGzip(data)
	if err != nil {
		return "", model.FileMetric{}, errm.Wrap(err, "failed to gzip file")
	}

	brotliSize, err := compressBrotli(data)
	if err != nil {
		return "", model.FileMetric{}, errm.Wrap(err, "failed to brotli file")
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", model.FileMetric{}, errm.Wrap(err, "failed to compute relative path")
	}

	metric := model.FileMetric{
		Size:       uint64(info.Size()),
		GzipSize:   gzipSize,
		BrotliSize: brotliSize,
	}

	return filepath.ToSlash(rel), metric, nil
}

func compressGzip(data []byte) (uint64, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return uint64(buf.Len()), nil
}

func compressBrotli(data []byte) (uint64, error) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return uint64(buf.Len()), nil
}
