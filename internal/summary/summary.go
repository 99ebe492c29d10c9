// Package summary renders the depth-0 aggregate view: one block per
// top-level child with recursive totals, visible totals that exclude ignored
// subtrees, and a file-extension histogram.
package summary

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/strut/internal/fsize"
	"github.com/temirov/strut/internal/rules"
	"github.com/temirov/strut/internal/traverse"
	"github.com/temirov/strut/internal/types"
)

const (
	branchSuffixFormat       = " (%s)"
	directorySuffix          = "/"
	indentedLineFormat       = "  %s"
	labeledLineFormat        = "  %s %s"
	labelWidth               = 9
	totalLabel               = "total:"
	visibleLabel             = "visible:"
	typesLabel               = "types:"
	ignoredLabel             = "ignored:"
	ignoredSectionHeader     = "── ignored (top level) ──"
	ignoredSectionLineFormat = "  %s · %s · %s"
	ignoredDirectoryFormat   = "%s(%d files)"
	filesCountFormat         = "%d files"
	directoriesCountFormat   = "%d dirs"
	extensionEntryFormat     = "%s(%d)"
	topExtensionCount        = 10
)

// Options configures one summary invocation.
type Options struct {
	// Root is the absolute directory being summarized.
	Root string
	// IgnorePatterns are the user patterns, applied unconditionally here.
	IgnorePatterns []*regexp.Regexp
	// Branch is the repository branch for the header; empty outside a repository.
	Branch string
}

// subtreeTally aggregates one recursive pass over a directory.
type subtreeTally struct {
	directoryCount int
	fileCount      int
	totalBytes     int64
	extensions     map[string]int
}

// Run writes the summary for the root's immediate children. Children matched
// by the ignore rules are not expanded; they are folded into one closing
// ignored block with their combined file count and size.
func Run(options Options, writer io.Writer, colorized bool) error {
	header := styleOrPlain(colorized, color.FgCyan, color.Bold)
	annotation := styleOrPlain(colorized, color.FgHiBlack)
	directoryStyle := styleOrPlain(colorized, color.FgBlue, color.Bold)
	executableStyle := styleOrPlain(colorized, color.FgGreen, color.Bold)
	totalStyle := styleOrPlain(colorized, color.FgYellow)
	visibleStyle := styleOrPlain(colorized, color.FgGreen)
	typesStyle := styleOrPlain(colorized, color.FgCyan)

	canonicalRoot := canonicalPath(options.Root)
	headerLine := canonicalRoot
	if options.Branch != "" {
		headerLine += annotation(fmt.Sprintf(branchSuffixFormat, options.Branch))
	}
	fmt.Fprintln(writer, header(headerLine))
	fmt.Fprintln(writer)

	var ignoredFileCount int
	var ignoredBytes int64
	var ignoredNames []string

	for _, entry := range traverse.ListDirectory(options.Root) {
		if isIgnoredChild(entry, options.IgnorePatterns) {
			if entry.IsDirectory {
				hiddenFiles := fsize.CountFiles(entry.AbsolutePath)
				ignoredFileCount += hiddenFiles
				ignoredBytes += fsize.SubtreeBytes(entry.AbsolutePath)
				ignoredNames = append(ignoredNames, fmt.Sprintf(ignoredDirectoryFormat, entry.Name, hiddenFiles))
			} else {
				ignoredFileCount++
				ignoredBytes += entry.SizeBytes
				ignoredNames = append(ignoredNames, entry.Name)
			}
			continue
		}

		if entry.IsDirectory {
			writeDirectoryBlock(writer, entry, options.IgnorePatterns, directoryStyle, annotation, totalStyle, visibleStyle, typesStyle)
		} else {
			writeFileBlock(writer, entry, executableStyle, annotation)
		}
	}

	if ignoredFileCount > 0 {
		fmt.Fprintln(writer, annotation(ignoredSectionHeader))
		fmt.Fprintln(writer, annotation(fmt.Sprintf(ignoredSectionLineFormat,
			strings.Join(ignoredNames, ", "),
			fmt.Sprintf(filesCountFormat, ignoredFileCount),
			fsize.FormatSize(ignoredBytes))))
	}
	return nil
}

// isIgnoredChild applies the default-or-custom ignore test to one immediate child.
func isIgnoredChild(entry types.DirEntry, ignorePatterns []*regexp.Regexp) bool {
	if entry.IsDirectory {
		return rules.IsDefaultIgnoredDirectory(entry.Name) || rules.MatchesAnyPattern(entry.Name, ignorePatterns)
	}
	return rules.IsDefaultIgnoredFile(entry.Name) || rules.MatchesAnyPattern(entry.Name, ignorePatterns)
}

// writeDirectoryBlock prints one directory child: the unfiltered totals, the
// visible totals when they differ, the extension histogram, and the names of
// ignored immediate subdirectories.
func writeDirectoryBlock(
	writer io.Writer,
	entry types.DirEntry,
	ignorePatterns []*regexp.Regexp,
	directoryStyle, annotation, totalStyle, visibleStyle, typesStyle func(arguments ...interface{}) string,
) {
	unfiltered := tallyUnfiltered(entry.AbsolutePath)
	visible := tallyVisible(entry.AbsolutePath, ignorePatterns)
	ignoredSubdirectories := collectIgnoredSubdirectories(entry.AbsolutePath, ignorePatterns)

	fmt.Fprintln(writer, directoryStyle(entry.Name+directorySuffix))
	fmt.Fprintln(writer, fmt.Sprintf(indentedLineFormat, annotation(canonicalPath(entry.AbsolutePath))))

	hasIgnored := visible.directoryCount < unfiltered.directoryCount ||
		visible.fileCount < unfiltered.fileCount ||
		visible.totalBytes < unfiltered.totalBytes

	if hasIgnored {
		totalParts := []string{
			fmt.Sprintf(directoriesCountFormat, unfiltered.directoryCount),
			fmt.Sprintf(filesCountFormat, unfiltered.fileCount),
			fsize.FormatSize(unfiltered.totalBytes),
		}
		fmt.Fprintln(writer, fmt.Sprintf(labeledLineFormat, annotation(padLabel(totalLabel)), totalStyle(strings.Join(totalParts, " · "))))

		var visibleParts []string
		if visible.directoryCount > 0 {
			visibleParts = append(visibleParts, fmt.Sprintf(directoriesCountFormat, visible.directoryCount))
		}
		if visible.fileCount > 0 {
			visibleParts = append(visibleParts, fmt.Sprintf(filesCountFormat, visible.fileCount))
		}
		visibleParts = append(visibleParts, fsize.FormatSize(visible.totalBytes))
		fmt.Fprintln(writer, fmt.Sprintf(labeledLineFormat, annotation(padLabel(visibleLabel)), visibleStyle(strings.Join(visibleParts, " · "))))
	} else {
		var totalParts []string
		if unfiltered.directoryCount > 0 {
			totalParts = append(totalParts, fmt.Sprintf(directoriesCountFormat, unfiltered.directoryCount))
		}
		if unfiltered.fileCount > 0 {
			totalParts = append(totalParts, fmt.Sprintf(filesCountFormat, unfiltered.fileCount))
		}
		totalParts = append(totalParts, fsize.FormatSize(unfiltered.totalBytes))
		fmt.Fprintln(writer, fmt.Sprintf(labeledLineFormat, annotation(padLabel(totalLabel)), totalStyle(strings.Join(totalParts, " · "))))
	}

	if topExtensions := formatTopExtensions(visible.extensions); topExtensions != "" {
		fmt.Fprintln(writer, fmt.Sprintf(labeledLineFormat, annotation(padLabel(typesLabel)), typesStyle(topExtensions)))
	}

	if len(ignoredSubdirectories) > 0 {
		fmt.Fprintln(writer, fmt.Sprintf(labeledLineFormat, annotation(padLabel(ignoredLabel)), annotation(strings.Join(ignoredSubdirectories, ", "))))
	}
	fmt.Fprintln(writer)
}

// writeFileBlock prints one file child with its canonical path and size.
func writeFileBlock(writer io.Writer, entry types.DirEntry, executableStyle, annotation func(arguments ...interface{}) string) {
	displayName := entry.Name
	if traverse.IsExecutable(entry.AbsolutePath) {
		displayName = executableStyle(entry.Name)
	}
	fmt.Fprintln(writer, displayName)
	fmt.Fprintln(writer, fmt.Sprintf(indentedLineFormat, annotation(canonicalPath(entry.AbsolutePath))))
	fmt.Fprintln(writer, fmt.Sprintf(indentedLineFormat, annotation(fsize.FormatSize(entry.SizeBytes))))
	fmt.Fprintln(writer)
}

// tallyUnfiltered counts every descendant directory, file, and byte.
func tallyUnfiltered(directoryPath string) subtreeTally {
	tally := subtreeTally{extensions: map[string]int{}}
	_ = filepath.WalkDir(directoryPath, func(visitedPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}
		if visitedPath == directoryPath {
			return nil
		}
		if entry.IsDir() {
			tally.directoryCount++
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		tally.fileCount++
		if entryInfo, infoError := entry.Info(); infoError == nil {
			tally.totalBytes += entryInfo.Size()
		}
		return nil
	})
	return tally
}

// tallyVisible counts descendants the ignore rules would keep, skipping
// descent into ignored directories and collecting the extension histogram.
func tallyVisible(directoryPath string, ignorePatterns []*regexp.Regexp) subtreeTally {
	tally := subtreeTally{extensions: map[string]int{}}
	_ = filepath.WalkDir(directoryPath, func(visitedPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}
		if visitedPath == directoryPath {
			return nil
		}
		entryName := entry.Name()
		if entry.IsDir() {
			if rules.IsDefaultIgnoredDirectory(entryName) || rules.MatchesAnyPattern(entryName, ignorePatterns) {
				return fs.SkipDir
			}
			tally.directoryCount++
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if rules.IsDefaultIgnoredFile(entryName) || rules.MatchesAnyPattern(entryName, ignorePatterns) {
			return nil
		}
		tally.fileCount++
		if entryInfo, infoError := entry.Info(); infoError == nil {
			tally.totalBytes += entryInfo.Size()
		}
		if extension := strings.TrimPrefix(filepath.Ext(entryName), "."); extension != "" {
			tally.extensions[strings.ToLower(extension)]++
		}
		return nil
	})
	return tally
}

// collectIgnoredSubdirectories names the ignored immediate subdirectories
// with their hidden file counts.
func collectIgnoredSubdirectories(directoryPath string, ignorePatterns []*regexp.Regexp) []string {
	var ignoredSubdirectories []string
	for _, child := range traverse.ListDirectory(directoryPath) {
		if !child.IsDirectory {
			continue
		}
		if rules.IsDefaultIgnoredDirectory(child.Name) || rules.MatchesAnyPattern(child.Name, ignorePatterns) {
			ignoredSubdirectories = append(ignoredSubdirectories,
				fmt.Sprintf(ignoredDirectoryFormat, child.Name, fsize.CountFiles(child.AbsolutePath)))
		}
	}
	return ignoredSubdirectories
}

// formatTopExtensions renders the histogram's top entries, most frequent
// first with names breaking ties for deterministic output.
func formatTopExtensions(extensionCounts map[string]int) string {
	type extensionEntry struct {
		extension string
		count     int
	}
	entries := make([]extensionEntry, 0, len(extensionCounts))
	for extension, count := range extensionCounts {
		entries = append(entries, extensionEntry{extension: extension, count: count})
	}
	sort.Slice(entries, func(firstIndex, secondIndex int) bool {
		if entries[firstIndex].count != entries[secondIndex].count {
			return entries[firstIndex].count > entries[secondIndex].count
		}
		return entries[firstIndex].extension < entries[secondIndex].extension
	})
	if len(entries) > topExtensionCount {
		entries = entries[:topExtensionCount]
	}
	formattedEntries := make([]string, 0, len(entries))
	for _, entry := range entries {
		formattedEntries = append(formattedEntries, fmt.Sprintf(extensionEntryFormat, entry.extension, entry.count))
	}
	return strings.Join(formattedEntries, " ")
}

// canonicalPath resolves symlinks and relative segments where possible.
func canonicalPath(path string) string {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return path
	}
	if resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath); resolveError == nil {
		return resolvedPath
	}
	return absolutePath
}

// styleOrPlain returns a color sprint function, or plain fmt.Sprint when
// colors are disabled.
func styleOrPlain(colorized bool, attributes ...color.Attribute) func(arguments ...interface{}) string {
	if !colorized {
		return fmt.Sprint
	}
	return color.New(attributes...).SprintFunc()
}

// padLabel left-aligns a block label before styling so color codes never
// break the column width.
func padLabel(label string) string {
	return fmt.Sprintf("%-*s", labelWidth, label)
}
