package traverse_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/strut/internal/rules"
	"github.com/temirov/strut/internal/traverse"
	"github.com/temirov/strut/internal/types"
)

// renderTreeLines runs an uncolored walk and returns the output lines below
// the header.
func renderTreeLines(t *testing.T, configuration *types.WalkConfig, rootDirectory string) []string {
	t.Helper()
	var output bytes.Buffer
	traverse.NewWalker(configuration, &output, false).Run(rootDirectory)
	outputLines := strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
	require.Equal(t, rootDirectory, outputLines[0], "the header line is the root path")
	return outputLines[1:]
}

func unboundedConfiguration() *types.WalkConfig {
	return &types.WalkConfig{MaxDepth: types.UnlimitedDepth}
}

func writeFile(t *testing.T, filePath string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
}

func TestWalkerRendersDirectoriesFirstCaseInsensitively(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "Zulu", "inner.txt"), "x")
	writeFile(t, filepath.Join(rootDirectory, "apple.txt"), "x")
	writeFile(t, filepath.Join(rootDirectory, "Banana.txt"), "x")

	outputLines := renderTreeLines(t, unboundedConfiguration(), rootDirectory)

	assert.Equal(t, []string{
		"├── Zulu/",
		"│   └── inner.txt",
		"├── apple.txt",
		"└── Banana.txt",
	}, outputLines)
}

func TestWalkerPrunesDefaultIgnoredDirectoryWithFileCount(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "node_modules", "left.js"), "x")
	writeFile(t, filepath.Join(rootDirectory, "node_modules", "nested", "middle.js"), "x")
	writeFile(t, filepath.Join(rootDirectory, "node_modules", "nested", "right.js"), "x")
	writeFile(t, filepath.Join(rootDirectory, "main.go"), "package main")

	outputLines := renderTreeLines(t, unboundedConfiguration(), rootDirectory)

	assert.Equal(t, []string{
		"├── node_modules/ (3 files ignored)",
		"└── main.go",
	}, outputLines)
}

func TestWalkerExpandsDefaultsWhenDisabled(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "node_modules", "vendored.js"), "x")

	configuration := unboundedConfiguration()
	configuration.IgnoreDefaultsDisabled = true
	outputLines := renderTreeLines(t, configuration, rootDirectory)

	assert.Equal(t, []string{
		"└── node_modules/",
		"    └── vendored.js",
	}, outputLines)
}

func TestWalkerReEnablesOneDefaultByName(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "node_modules", "vendored.js"), "x")
	writeFile(t, filepath.Join(rootDirectory, "dist", "bundle.js"), "x")

	configuration := unboundedConfiguration()
	configuration.IgnoreOnlyPattern = "node_modules"
	outputLines := renderTreeLines(t, configuration, rootDirectory)

	assert.Equal(t, []string{
		"├── dist/ (1 files ignored)",
		"└── node_modules/",
		"    └── vendored.js",
	}, outputLines)
}

func TestWalkerAppliesCustomPatterns(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "tempdata", "scratch.txt"), "x")
	writeFile(t, filepath.Join(rootDirectory, "src", "main.go"), "x")
	writeFile(t, filepath.Join(rootDirectory, "debug.log"), "x")
	writeFile(t, filepath.Join(rootDirectory, "notes.md"), "x")

	configuration := unboundedConfiguration()
	configuration.CustomIgnorePatterns = rules.CompileIgnorePatterns([]string{"*.log", "temp*"})
	outputLines := renderTreeLines(t, configuration, rootDirectory)

	// A pattern-matched directory is pruned with a count; a pattern-matched
	// file disappears without a line.
	assert.Equal(t, []string{
		"├── src/",
		"│   └── main.go",
		"├── tempdata/ (1 files ignored)",
		"└── notes.md",
	}, outputLines)
}

func TestWalkerSizeGateIsStrictlyGreater(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "exact", "ten.bin"), "0123456789")
	writeFile(t, filepath.Join(rootDirectory, "over", "eleven.bin"), "0123456789!")

	configuration := unboundedConfiguration()
	configuration.MaxSubtreeBytes = 10
	outputLines := renderTreeLines(t, configuration, rootDirectory)

	assert.Equal(t, []string{
		"├── exact/",
		"│   └── ten.bin",
		"└── over/ (0MB, skipped)",
	}, outputLines)
}

func TestWalkerGitModeFiltersByPathSet(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "a.go"), "x")
	writeFile(t, filepath.Join(rootDirectory, "b.go"), "x")
	writeFile(t, filepath.Join(rootDirectory, "sub", "c.go"), "x")
	writeFile(t, filepath.Join(rootDirectory, "other", "d.go"), "x")

	configuration := unboundedConfiguration()
	configuration.GitRelationship = types.GitRelationshipTracked
	configuration.GitPathSet = map[string]struct{}{
		filepath.Join(rootDirectory, "a.go"):        {},
		filepath.Join(rootDirectory, "sub", "c.go"): {},
	}
	outputLines := renderTreeLines(t, configuration, rootDirectory)

	assert.Equal(t, []string{
		"├── sub/",
		"│   └── c.go",
		"└── a.go",
	}, outputLines)
}

func TestWalkerRendersSymlinkWithoutTraversal(t *testing.T) {
	targetDirectory := t.TempDir()
	writeFile(t, filepath.Join(targetDirectory, "inside.txt"), "x")

	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "real", "f.txt"), "x")
	require.NoError(t, os.Symlink(targetDirectory, filepath.Join(rootDirectory, "link")))

	outputLines := renderTreeLines(t, unboundedConfiguration(), rootDirectory)

	assert.Equal(t, []string{
		"├── real/",
		"│   └── f.txt",
		"└── link -> " + targetDirectory,
	}, outputLines)
}

func TestWalkerHonorsDepthLimit(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "outer", "inner", "leaf.txt"), "x")
	writeFile(t, filepath.Join(rootDirectory, "top.txt"), "x")

	configuration := unboundedConfiguration()
	configuration.MaxDepth = 1
	outputLines := renderTreeLines(t, configuration, rootDirectory)

	assert.Equal(t, []string{
		"├── outer/",
		"└── top.txt",
	}, outputLines)
}

func TestWalkerShowsSizesOnFileLinesOnly(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "docs", "guide.md"), "12345")
	writeFile(t, filepath.Join(rootDirectory, "node_modules", "vendored.js"), "123")
	writeFile(t, filepath.Join(rootDirectory, "readme.md"), "1234")

	configuration := unboundedConfiguration()
	configuration.ShowSizes = true
	outputLines := renderTreeLines(t, configuration, rootDirectory)

	assert.Equal(t, []string{
		"├── docs/",
		"│   └── guide.md (5B)",
		"├── node_modules/ (3B, 1 files ignored)",
		"└── readme.md (4B)",
	}, outputLines)
}

func TestWalkerOutputIsIdempotent(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "src", "main.go"), "x")
	writeFile(t, filepath.Join(rootDirectory, "readme.md"), "x")

	firstLines := renderTreeLines(t, unboundedConfiguration(), rootDirectory)
	secondLines := renderTreeLines(t, unboundedConfiguration(), rootDirectory)

	assert.Equal(t, firstLines, secondLines)
}
