package bot

import (
	"os"
	"path/filepath"
	"testing"

	"telefetch/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalFilename(t *testing.T) {
	// Empty input keeps the original name
	assert.Equal(t, "report.pdf", finalFilename("report.pdf", ""))
	assert.Equal(t, "report.pdf", finalFilename("report.pdf", "   "))

	// A name with an extension is used as-is
	assert.Equal(t, "renamed.txt", finalFilename("report.pdf", "renamed.txt"))

	// A bare name inherits the original extension
	assert.Equal(t, "renamed.pdf", finalFilename("report.pdf", "renamed"))

	// No original extension to inherit
	assert.Equal(t, "renamed", finalFilename("blob", "renamed"))
}

func TestCreateFolderUnderRoot(t *testing.T) {
	root := t.TempDir()
	paths := services.NewPathManager(root)

	newPath, err := createFolderUnderRoot(paths, root, "Music")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Music"), newPath)

	info, err := os.Stat(newPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateFolderUnderRootSanitizesName(t *testing.T) {
	root := t.TempDir()
	paths := services.NewPathManager(root)

	newPath, err := createFolderUnderRoot(paths, root, "a/b\\c")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a_b_c"), newPath)
}

func TestCreateFolderUnderRootClampsParent(t *testing.T) {
	root := t.TempDir()
	paths := services.NewPathManager(root)

	// Parents outside the download root fall back to it
	newPath, err := createFolderUnderRoot(paths, "/etc", "Music")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Music"), newPath)

	newPath, err = createFolderUnderRoot(paths, "", "Video")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Video"), newPath)
}
