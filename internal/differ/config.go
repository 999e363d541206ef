package differ

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

// Config represents size diff behavior configuration
type Config struct {
	TargetBranch    string `yaml:"target_branch" env:"DIFF_TARGET_BRANCH"`
	DirGlob         string `yaml:"dir_glob" env:"DIFF_DIR_GLOB"`
	PreDiffScript   string `yaml:"pre_diff_script" env:"DIFF_PRE_DIFF_SCRIPT"`
	FileDetailsOpen bool   `yaml:"file_details_open" env:"DIFF_FILE_DETAILS_OPEN"`
	ReplaceComment  *bool  `yaml:"replace_comment" env:"DIFF_REPLACE_COMMENT"`
	Source          string `yaml:"source" env:"DIFF_SOURCE"`
	Workdir         string `yaml:"workdir" env:"DIFF_WORKDIR"`

	globs []string
}

func (c *Config) PrepareAndValidate() error {
	if c.TargetBranch == "" {
		return errm.New("target_branch is required")
	}
	if c.DirGlob == "" {
		return errm.New("dir_glob is required")
	}

	c.globs = nil
	for _, pattern := range strings.Split(c.DirGlob, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern != "" {
			c.globs = append(c.globs, pattern)
		}
	}
	if len(c.globs) == 0 {
		return errm.New("dir_glob contains no patterns")
	}

	c.Source = lang.Check(c.Source, ".")
	c.Workdir = lang.Check(c.Workdir, filepath.Join(os.TempDir(), "sizediff"))

	if c.ReplaceComment == nil {
		replace := true
		c.ReplaceComment = &replace
	}

	return nil
}

// Globs returns the parsed glob patterns.
func (c *Config) Globs() []string {
	return c.globs
}

// Replace reports whether prior report comments should be replaced.
func (c *Config) Replace() bool {
	return lang.Deref(c.ReplaceComment)
}
