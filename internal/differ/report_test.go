package differ

import (
	"strings"
	"testing"

	"github.com/maxbolgarin/sizediff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branchStats(branch string, files map[string]model.FileMetric) *model.BranchStats {
	stats := model.NewBranchStats(branch)
	for path, metric := range files {
		stats.Add(path, metric)
	}
	return stats
}

func TestReconcileClassification(t *testing.T) {
	target := branchStats("main", map[string]model.FileMetric{
		"a.js": {Size: 100, GzipSize: 50, BrotliSize: 40},
		"b.js": {Size: 200, GzipSize: 90, BrotliSize: 80},
		"c.js": {Size: 300, GzipSize: 120, BrotliSize: 100},
	})
	subject := branchStats("feature", map[string]model.FileMetric{
		"a.js": {Size: 100, GzipSize: 50, BrotliSize: 40},  // unchanged
		"b.js": {Size: 250, GzipSize: 110, BrotliSize: 95}, // modified
		"d.js": {Size: 70, GzipSize: 30, BrotliSize: 25},   // added
	})

	changes := Reconcile(target, subject)

	byPath := make(map[string]model.FileChange)
	for _, change := range changes {
		_, seen := byPath[change.Path]
		require.False(t, seen, "path classified twice: %s", change.Path)
		byPath[change.Path] = change
	}

	// unchanged files never appear
	_, ok := byPath["a.js"]
	assert.False(t, ok)

	require.Len(t, changes, 3)
	assert.Equal(t, model.ChangeTypeModified, byPath["b.js"].Type)
	assert.Equal(t, model.ChangeTypeAdded, byPath["d.js"].Type)
	assert.Equal(t, model.ChangeTypeRemoved, byPath["c.js"].Type)

	assert.Equal(t, int64(50), byPath["b.js"].Delta.Size)
	assert.Equal(t, int64(70), byPath["d.js"].Delta.Size)
	assert.Equal(t, int64(-300), byPath["c.js"].Delta.Size)
	assert.Equal(t, uint64(0), byPath["c.js"].Current.Size)
}

func TestBranchStatsTotalsMatchFiles(t *testing.T) {
	stats := branchStats("feature", map[string]model.FileMetric{
		"a.js":     {Size: 100, GzipSize: 50, BrotliSize: 40},
		"b.js":     {Size: 250, GzipSize: 110, BrotliSize: 95},
		"sub/c.js": {Size: 70, GzipSize: 30, BrotliSize: 25},
	})

	var size, gz, br uint64
	for _, metric := range stats.Files {
		size += metric.Size
		gz += metric.GzipSize
		br += metric.BrotliSize
	}

	assert.Equal(t, size, stats.TotalSize)
	assert.Equal(t, gz, stats.TotalGzip)
	assert.Equal(t, br, stats.TotalBrotli)
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		expected string
	}{
		{
			name:     "segment boundary truncation",
			paths:    []string{"a/b/c.js", "a/b/d.js", "a/e.js"},
			expected: "a/",
		},
		{
			name:     "full shared directory",
			paths:    []string{"dist/assets/a.js", "dist/assets/b.js"},
			expected: "dist/assets/",
		},
		{
			name:     "no shared directory",
			paths:    []string{"a.js", "b.js"},
			expected: "",
		},
		{
			name:     "single path truncates to its directory",
			paths:    []string{"dist/a.js"},
			expected: "dist/",
		},
		{
			name:     "empty set",
			paths:    nil,
			expected: "",
		},
		{
			name:     "shared filename prefix is not a directory prefix",
			paths:    []string{"dist/app.js", "dist/app.min.js"},
			expected: "dist/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, commonPrefix(tt.paths))
		})
	}
}

func TestBuildReportModifiedAndAdded(t *testing.T) {
	target := branchStats("main", map[string]model.FileMetric{
		"x.js": {Size: 100, GzipSize: 60, BrotliSize: 50},
	})
	subject := branchStats("feature", map[string]model.FileMetric{
		"x.js": {Size: 150, GzipSize: 85, BrotliSize: 70},
		"y.js": {Size: 50, GzipSize: 25, BrotliSize: 20},
	})

	report := BuildReport(target, subject, false)

	assert.True(t, strings.HasPrefix(report, CommentMarker))
	assert.Contains(t, report, "This PR **adds 100 B** of uncompressed size.")
	assert.Contains(t, report, "<summary>1 file changed, 1 file added</summary>")
	assert.Contains(t, report, "| `x.js` | 150 B <sub>`+50 B`</sub>")
	assert.Contains(t, report, "| `y.js` | 50 B <sub>`+50 B`</sub>")
	assert.Contains(t, report, "200 B (+100 B)")
	assert.Contains(t, report, "<details>\n")
	assert.NotContains(t, report, "<details open>")
	assert.NotContains(t, report, "Paths are relative to")
}

func TestBuildReportRemoved(t *testing.T) {
	target := branchStats("main", map[string]model.FileMetric{
		"z.js": {Size: 200, GzipSize: 100, BrotliSize: 90},
	})
	subject := branchStats("feature", nil)

	report := BuildReport(target, subject, false)

	assert.Contains(t, report, "This PR **removes 200 B** of uncompressed size.")
	assert.Contains(t, report, "<summary>1 file removed</summary>")
	assert.Contains(t, report, "| `z.js` | 0 B <sub>`-200 B`</sub>")
}

func TestBuildReportDetailsOpen(t *testing.T) {
	target := branchStats("main", map[string]model.FileMetric{
		"a.js": {Size: 10},
	})
	subject := branchStats("feature", map[string]model.FileMetric{
		"a.js": {Size: 20},
	})

	report := BuildReport(target, subject, true)

	assert.Contains(t, report, "<details open>")
}

func TestBuildReportCommonPrefixNote(t *testing.T) {
	target := branchStats("main", map[string]model.FileMetric{
		"dist/assets/a.js": {Size: 10},
	})
	subject := branchStats("feature", map[string]model.FileMetric{
		"dist/assets/a.js": {Size: 20},
		"dist/assets/b.js": {Size: 30},
	})

	report := BuildReport(target, subject, false)

	assert.Contains(t, report, "Paths are relative to `dist/assets/`")
	assert.Contains(t, report, "| `a.js` |")
	assert.Contains(t, report, "| `b.js` |")
	assert.NotContains(t, report, "`dist/assets/a.js`")
}

func TestBuildReportEmptyUnion(t *testing.T) {
	target := branchStats("main", nil)
	subject := branchStats("feature", nil)

	report := BuildReport(target, subject, false)

	assert.Contains(t, report, "0 B (+0 B)")
	assert.Contains(t, report, "<summary>no file changes</summary>")
}

func TestChangesLabelPluralization(t *testing.T) {
	changes := []model.FileChange{
		{Path: "a.js", Type: model.ChangeTypeModified},
		{Path: "b.js", Type: model.ChangeTypeRemoved},
		{Path: "c.js", Type: model.ChangeTypeRemoved},
	}

	assert.Equal(t, "1 file changed, 2 files removed", changesLabel(changes))
	assert.Equal(t, "no file changes", changesLabel(nil))
}
