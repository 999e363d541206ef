package model

// FileMetric holds the measured byte sizes of a single file: raw size plus
// gzip- and brotli-compressed sizes of the same contents. Immutable once computed.
type FileMetric struct {
	Size       uint64
	GzipSize   uint64
	BrotliSize uint64
}

// BranchStats is the size snapshot of one branch: per-file metrics keyed by
// the path relative to the branch workspace root, plus running totals.
// It is built once during collection and treated as immutable afterwards.
type BranchStats struct {
	Branch      string
	TotalSize   uint64
	TotalGzip   uint64
	TotalBrotli uint64
	Files       map[string]FileMetric
}

// NewBranchStats creates an empty snapshot for the given branch.
func NewBranchStats(branch string) *BranchStats {
	return &BranchStats{
		Branch: branch,
		Files:  make(map[string]FileMetric),
	}
}

// Add folds one file metric into the snapshot. Totals stay the sum of all
// constituent metrics, so folding is safe in any order.
func (s *BranchStats) Add(path string, m FileMetric) {
	s.Files[path] = m
	s.TotalSize += m.Size
	s.TotalGzip += m.GzipSize
	s.TotalBrotli += m.BrotliSize
}

// ChangeType classifies a file path in the union of two branch snapshots.
type ChangeType string

const (
	ChangeTypeAdded     ChangeType = "added"
	ChangeTypeRemoved   ChangeType = "removed"
	ChangeTypeModified  ChangeType = "modified"
	ChangeTypeUnchanged ChangeType = "unchanged"
)

// SizeDelta is a signed per-metric difference between two snapshots.
type SizeDelta struct {
	Size   int64
	Gzip   int64
	Brotli int64
}

// FileChange is one classified row of the diff. Current holds the subject
// branch metrics; for removed files Current is zero and Delta carries the
// full negative metrics of the removed file.
type FileChange struct {
	Path    string
	Type    ChangeType
	Current FileMetric
	Delta   SizeDelta
}
