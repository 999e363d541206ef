package differ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/maxbolgarin/sizediff/internal/model"
)

// CommentMarker opens every report comment and identifies prior reports for
// replacement. External tooling may match on this exact text, so it must not
// change.
const CommentMarker = "## 📦 Build size report"

// Reconcile classifies every path in the union of both snapshots and returns
// the non-unchanged changes sorted by path. Classification is total and
// exclusive: each union path gets exactly one type, and files present in both
// branches with identical size are excluded.
func Reconcile(target, subject *model.BranchStats) []model.FileChange {
	var changes []model.FileChange

	for _, path := range unionPaths(target, subject) {
		base, inTarget := target.Files[path]
		current, inSubject := subject.Files[path]

		switch {
		case inTarget && inSubject:
			if current.Size == base.Size {
				continue
			}
			changes = append(changes, model.FileChange{
				Path:    path,
				Type:    model.ChangeTypeModified,
				Current: current,
				Delta:   metricDelta(base, current),
			})
		case inSubject:
			changes = append(changes, model.FileChange{
				Path:    path,
				Type:    model.ChangeTypeAdded,
				Current: current,
				Delta:   metricDelta(model.FileMetric{}, current),
			})
		default:
			changes = append(changes, model.FileChange{
				Path:    path,
				Type:    model.ChangeTypeRemoved,
				Current: model.FileMetric{},
				Delta:   metricDelta(base, model.FileMetric{}),
			})
		}
	}

	return changes
}

// BuildReport renders the full comment body for two branch snapshots.
func BuildReport(target, subject *model.BranchStats, detailsOpen bool) string {
	union := unionPaths(target, subject)
	changes := Reconcile(target, subject)
	prefix := commonPrefix(union)

	var b strings.Builder

	b.WriteString(CommentMarker)
	b.WriteString("\n\n")

	sizeDelta := int64(subject.TotalSize) - int64(target.TotalSize)
	gzipDelta := int64(subject.TotalGzip) - int64(target.TotalGzip)
	brotliDelta := int64(subject.TotalBrotli) - int64(target.TotalBrotli)

	if sizeDelta >= 0 {
		fmt.Fprintf(&b, "This PR **adds %s** of uncompressed size.\n\n", humanize.Bytes(uint64(sizeDelta)))
	} else {
		fmt.Fprintf(&b, "This PR **removes %s** of uncompressed size.\n\n", humanize.Bytes(uint64(-sizeDelta)))
	}

	b.WriteString("| Size | Gzip | Brotli |\n")
	b.WriteString("|:---:|:---:|:---:|\n")
	fmt.Fprintf(&b, "| %s (%s) | %s (%s) | %s (%s) |\n\n",
		humanize.Bytes(subject.TotalSize), formatDelta(sizeDelta),
		humanize.Bytes(subject.TotalGzip), formatDelta(gzipDelta),
		humanize.Bytes(subject.TotalBrotli), formatDelta(brotliDelta),
	)

	if detailsOpen {
		b.WriteString("<details open>\n")
	} else {
		b.WriteString("<details>\n")
	}
	fmt.Fprintf(&b, "<summary>%s</summary>\n\n", changesLabel(changes))

	if prefix != "" {
		fmt.Fprintf(&b, "Paths are relative to `%s`\n\n", prefix)
	}

	b.WriteString("| File | Size | Gzip | Brotli |\n")
	b.WriteString("|:---|---:|---:|---:|\n")
	for _, change := range changes {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
			strings.TrimPrefix(change.Path, prefix),
			metricCell(change.Current.Size, change.Delta.Size),
			metricCell(change.Current.GzipSize, change.Delta.Gzip),
			metricCell(change.Current.BrotliSize, change.Delta.Brotli),
		)
	}
	b.WriteString("\n</details>\n")

	return b.String()
}

// unionPaths returns the sorted union of file paths across both snapshots.
func unionPaths(target, subject *model.BranchStats) []string {
	seen := make(map[string]struct{}, len(target.Files)+len(subject.Files))
	var paths []string

	for path := range target.Files {
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	for path := range subject.Files {
		if _, ok := seen[path]; !ok {
			paths = append(paths, path)
		}
	}

	sort.Strings(paths)

	return paths
}

// commonPrefix returns the longest directory-aligned prefix shared by all
// paths. The sorted set's lexicographic extremes bound any common prefix, so
// comparing only the first and last sorted path suffices; the result is then
// trimmed back to the last separator so it is always a whole directory subpath.
func commonPrefix(sortedPaths []string) string {
	if len(sortedPaths) == 0 {
		return ""
	}

	first := sortedPaths[0]
	last := sortedPaths[len(sortedPaths)-1]

	i := 0
	for i < len(first) && i < len(last) && first[i] == last[i] {
		i++
	}
	common := first[:i]

	idx := strings.LastIndex(common, "/")
	if idx < 0 {
		return ""
	}

	return common[:idx+1]
}

// changesLabel builds the collapsible's visible text: pluralized counts of
// changed, added and removed files, zero-count categories omitted.
func changesLabel(changes []model.FileChange) string {
	var changed, added, removed int
	for _, change := range changes {
		switch change.Type {
		case model.ChangeTypeModified:
			changed++
		case model.ChangeTypeAdded:
			added++
		case model.ChangeTypeRemoved:
			removed++
		}
	}

	var parts []string
	if changed > 0 {
		parts = append(parts, pluralizeFiles(changed)+" changed")
	}
	if added > 0 {
		parts = append(parts, pluralizeFiles(added)+" added")
	}
	if removed > 0 {
		parts = append(parts, pluralizeFiles(removed)+" removed")
	}

	if len(parts) == 0 {
		return "no file changes"
	}

	return strings.Join(parts, ", ")
}

func pluralizeFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

func metricCell(current uint64, delta int64) string {
	return fmt.Sprintf("%s <sub>`%s`</sub>", humanize.Bytes(current), formatDelta(delta))
}

func formatDelta(delta int64) string {
	if delta < 0 {
		return "-" + humanize.Bytes(uint64(-delta))
	}
	return "+" + humanize.Bytes(uint64(delta))
}

func metricDelta(base, current model.FileMetric) model.SizeDelta {
	return model.SizeDelta{
		Size:   int64(current.Size) - int64(base.Size),
		Gzip:   int64(current.GzipSize) - int64(base.GzipSize),
		Brotli: int64(current.BrotliSize) - int64(base.BrotliSize),
	}
}
