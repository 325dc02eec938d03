package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/somix-extract/internal/project"
)

func TestName_Pyproject(t *testing.T) {
	dir := t.TempDir()
	content := "[project]\nname = \"widgetizer\"\nversion = \"0.1.0\"\n"
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0644))

	assert.Equal(t, "widgetizer", project.Name(dir))
}

func TestName_SetupPy(t *testing.T) {
	dir := t.TempDir()
	content := "from setuptools import setup\nsetup(name='gizmolib', version='1.0')\n"
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "setup.py"), []byte(content), 0644))

	assert.Equal(t, "gizmolib", project.Name(dir))
}

func TestName_FallsBackToDirectoryName(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Base(dir), project.Name(dir))
}

func TestName_SearchesUpward(t *testing.T) {
	dir := t.TempDir()
	content := "[project]\nname = \"rootpkg\"\n"
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0644))

	nested := filepath.Join(dir, "src", "pkg")
	assert.NoError(t, os.MkdirAll(nested, 0755))

	assert.Equal(t, "rootpkg", project.Name(nested))
}
