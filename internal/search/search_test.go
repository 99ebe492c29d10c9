package search_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/strut/internal/rules"
	"github.com/temirov/strut/internal/search"
	"github.com/temirov/strut/internal/types"
)

func writeFile(t *testing.T, filePath string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
}

func runSearch(t *testing.T, options search.Options) []string {
	t.Helper()
	var output bytes.Buffer
	require.NoError(t, search.Run(options, &output, false))
	return strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
}

func TestSearchFlatOutputIsSortedByPath(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "deploy", "prod.env"), "ab")
	writeFile(t, filepath.Join(rootDirectory, "base.env"), "a")
	writeFile(t, filepath.Join(rootDirectory, "unrelated.txt"), "x")

	outputLines := runSearch(t, search.Options{
		Pattern:  "*.env",
		Root:     rootDirectory,
		MaxDepth: types.UnlimitedDepth,
		Flat:     true,
	})

	assert.Equal(t, []string{
		"found 2 item(s) matching *.env",
		"",
		filepath.Join(rootDirectory, "base.env") + " (1B)",
		filepath.Join(rootDirectory, "deploy", "prod.env") + " (2B)",
	}, outputLines)
}

func TestSearchTreeOutputKeepsMatchesAndAncestors(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "cmd", "app", "main.go"), "123")
	writeFile(t, filepath.Join(rootDirectory, "cmd", "app", "notes.txt"), "x")
	writeFile(t, filepath.Join(rootDirectory, "top.go"), "12")
	writeFile(t, filepath.Join(rootDirectory, "readme.md"), "x")

	outputLines := runSearch(t, search.Options{
		Pattern:  "*.go",
		Root:     rootDirectory,
		MaxDepth: types.UnlimitedDepth,
	})

	assert.Equal(t, []string{
		"found 2 item(s) matching *.go",
		"",
		"├── cmd/",
		"│   └── app/",
		"│       └── main.go (3B)",
		"└── top.go (2B)",
	}, outputLines)
}

func TestSearchMatchesIgnoredDirectoryNameWithoutDescending(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "node_modules", "node_helper.js"), "x")

	outputLines := runSearch(t, search.Options{
		Pattern:  "node_*",
		Root:     rootDirectory,
		MaxDepth: types.UnlimitedDepth,
		Flat:     true,
	})

	// The directory's own name matches once; nothing beneath it is visited.
	assert.Equal(t, []string{
		"found 1 item(s) matching node_*",
		"",
		filepath.Join(rootDirectory, "node_modules") + " (0B)",
	}, outputLines)
}

func TestSearchHonorsCustomIgnorePatternsForDescent(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "skipme", "hidden.go"), "x")
	writeFile(t, filepath.Join(rootDirectory, "keep", "shown.go"), "x")

	outputLines := runSearch(t, search.Options{
		Pattern:        "*.go",
		Root:           rootDirectory,
		MaxDepth:       types.UnlimitedDepth,
		Flat:           true,
		IgnorePatterns: rules.CompileIgnorePatterns([]string{"skipme"}),
	})

	assert.Equal(t, []string{
		"found 1 item(s) matching *.go",
		"",
		filepath.Join(rootDirectory, "keep", "shown.go") + " (1B)",
	}, outputLines)
}

func TestSearchDepthLimitBoundsDescent(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "level1.go"), "x")
	writeFile(t, filepath.Join(rootDirectory, "nested", "level2.go"), "x")

	outputLines := runSearch(t, search.Options{
		Pattern:  "*.go",
		Root:     rootDirectory,
		MaxDepth: 1,
		Flat:     true,
	})

	assert.Equal(t, []string{
		"found 1 item(s) matching *.go",
		"",
		filepath.Join(rootDirectory, "level1.go") + " (1B)",
	}, outputLines)
}

func TestSearchZeroMatchesIsInformationalNotAnError(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "only.txt"), "x")

	outputLines := runSearch(t, search.Options{
		Pattern:  "*.xyz",
		Root:     rootDirectory,
		MaxDepth: types.UnlimitedDepth,
	})

	assert.Equal(t, []string{"no files or directories matching '*.xyz' found"}, outputLines)
}

func TestSearchInvalidPatternFailsBeforeWalking(t *testing.T) {
	var output bytes.Buffer
	runError := search.Run(search.Options{
		Pattern:  "[",
		Root:     t.TempDir(),
		MaxDepth: types.UnlimitedDepth,
	}, &output, false)

	require.Error(t, runError)
	assert.Contains(t, runError.Error(), "invalid pattern")
	assert.Empty(t, output.String())
}
