package event

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePayload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveFromPayload(t *testing.T) {
	path := writePayload(t, `{
		"pull_request": {"number": 42, "head": {"ref": "feature/size"}},
		"repository": {"full_name": "maxbolgarin/sizediff"}
	}`)

	pr, err := Resolve(Config{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "maxbolgarin/sizediff", pr.ProjectID)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "feature/size", pr.SourceBranch)
}

func TestResolveConfigOverridesPayload(t *testing.T) {
	path := writePayload(t, `{
		"pull_request": {"number": 42, "head": {"ref": "feature/size"}},
		"repository": {"full_name": "maxbolgarin/sizediff"}
	}`)

	pr, err := Resolve(Config{Path: path, ProjectID: "other/repo", PRNumber: 7})
	require.NoError(t, err)

	assert.Equal(t, "other/repo", pr.ProjectID)
	assert.Equal(t, 7, pr.Number)
	assert.Equal(t, "feature/size", pr.SourceBranch)
}

func TestResolveWithoutPayloadFile(t *testing.T) {
	pr, err := Resolve(Config{ProjectID: "owner/repo", PRNumber: 3, SourceBranch: "feature"})
	require.NoError(t, err)

	assert.Equal(t, "owner/repo", pr.ProjectID)
	assert.Equal(t, 3, pr.Number)
}

func TestResolveErrors(t *testing.T) {
	t.Run("unresolvable context", func(t *testing.T) {
		path := writePayload(t, `{}`)
		_, err := Resolve(Config{Path: path})
		require.Error(t, err)
	})

	t.Run("missing payload file", func(t *testing.T) {
		_, err := Resolve(Config{Path: filepath.Join(t.TempDir(), "missing.json")})
		require.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writePayload(t, `{not json`)
		_, err := Resolve(Config{Path: path})
		require.Error(t, err)
	})
}
