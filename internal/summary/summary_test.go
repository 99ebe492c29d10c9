package summary_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/strut/internal/rules"
	"github.com/temirov/strut/internal/summary"
)

func writeFile(t *testing.T, filePath string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
}

func canonical(t *testing.T, path string) string {
	t.Helper()
	resolvedPath, resolveError := filepath.EvalSymlinks(path)
	require.NoError(t, resolveError)
	return resolvedPath
}

func labeledLine(label string, value string) string {
	return fmt.Sprintf("  %-9s %s", label, value)
}

func runSummary(t *testing.T, options summary.Options) []string {
	t.Helper()
	var output bytes.Buffer
	require.NoError(t, summary.Run(options, &output, false))
	return strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
}

func TestSummaryRendersBlocksAndFoldsIgnoredChildren(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "src", "a.go"), "ab")
	writeFile(t, filepath.Join(rootDirectory, "src", "b.go"), "abc")
	writeFile(t, filepath.Join(rootDirectory, "readme.md"), "abcd")
	writeFile(t, filepath.Join(rootDirectory, "node_modules", "vendored.js"), "abcde")

	outputLines := runSummary(t, summary.Options{Root: rootDirectory})

	assert.Equal(t, []string{
		canonical(t, rootDirectory),
		"",
		"src/",
		"  " + canonical(t, filepath.Join(rootDirectory, "src")),
		labeledLine("total:", "2 files · 5B"),
		labeledLine("types:", "go(2)"),
		"",
		"readme.md",
		"  " + canonical(t, filepath.Join(rootDirectory, "readme.md")),
		"  4B",
		"",
		"── ignored (top level) ──",
		"  node_modules(1 files) · 1 files · 5B",
	}, outputLines)
}

func TestSummaryShowsVisibleTotalsWhenSubtreesAreIgnored(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "project", "main.go"), "12")
	writeFile(t, filepath.Join(rootDirectory, "project", "dist", "bundle.js"), "1234")

	outputLines := runSummary(t, summary.Options{Root: rootDirectory})

	assert.Equal(t, []string{
		canonical(t, rootDirectory),
		"",
		"project/",
		"  " + canonical(t, filepath.Join(rootDirectory, "project")),
		labeledLine("total:", "1 dirs · 2 files · 6B"),
		labeledLine("visible:", "1 files · 2B"),
		labeledLine("types:", "go(1)"),
		labeledLine("ignored:", "dist(1 files)"),
	}, outputLines)
}

func TestSummaryAppliesCustomPatternsUnconditionally(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFile(t, filepath.Join(rootDirectory, "scratch", "junk.txt"), "123")
	writeFile(t, filepath.Join(rootDirectory, "keep.txt"), "1")

	outputLines := runSummary(t, summary.Options{
		Root:           rootDirectory,
		IgnorePatterns: rules.CompileIgnorePatterns([]string{"scratch"}),
	})

	assert.Equal(t, []string{
		canonical(t, rootDirectory),
		"",
		"keep.txt",
		"  " + canonical(t, filepath.Join(rootDirectory, "keep.txt")),
		"  1B",
		"",
		"── ignored (top level) ──",
		"  scratch(1 files) · 1 files · 3B",
	}, outputLines)
}

func TestSummaryHeaderCarriesBranchName(t *testing.T) {
	rootDirectory := t.TempDir()

	outputLines := runSummary(t, summary.Options{Root: rootDirectory, Branch: "main"})

	assert.Equal(t, canonical(t, rootDirectory)+" (main)", outputLines[0])
}
