package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBytes_Valid(t *testing.T) {
	content := `
name: ok
description: "conforms to the schema"
base_url: http://localhost:5000/api
steps:
  - name: health-check
    method: GET
    path: /health
    expect:
      marker: '"status": "healthy"'
      status: 200
`
	assert.NoError(t, ValidateBytes([]byte(content)))
}

func TestValidateBytes_BadMethod(t *testing.T) {
	content := `
name: bad
description: "HEAD is not allowed"
steps:
  - name: probe
    method: HEAD
    path: /health
`
	err := ValidateBytes([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not conform to schema")
}

func TestValidateBytes_BadStatus(t *testing.T) {
	content := `
name: bad
description: "status out of range"
steps:
  - name: probe
    method: GET
    path: /health
    expect:
      status: 9000
`
	require.Error(t, ValidateBytes([]byte(content)))
}

func TestValidateBytes_MissingSteps(t *testing.T) {
	content := `
name: bad
description: "steps are required"
`
	require.Error(t, ValidateBytes([]byte(content)))
}

func TestValidateBytes_RelativePath(t *testing.T) {
	content := `
name: bad
description: "paths must be rooted"
steps:
  - name: probe
    method: GET
    path: health
`
	require.Error(t, ValidateBytes([]byte(content)))
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	content := `
name: disk
description: "schema check straight from disk"
steps:
  - name: health-check
    method: GET
    path: /health
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	assert.NoError(t, ValidateFile(path))

	_, err := os.Stat(filepath.Join(dir, "other.yaml"))
	require.True(t, os.IsNotExist(err))
	require.Error(t, ValidateFile(filepath.Join(dir, "other.yaml")))
}
