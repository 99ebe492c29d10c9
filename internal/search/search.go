// Package search implements glob matching over a directory subtree with flat
// and tree-shaped result rendering.
package search

import (
	"fmt"
	"io"
	"os"
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
	errorInvalidPatternFormat = "invalid pattern %q: %w"
	noMatchesFormat           = "no files or directories matching '%s' found"
	foundHeaderFormat         = "found %d item(s) matching"
	flatSizeSuffixFormat      = " (%s)"
	directorySuffix           = "/"
)

var pathSeparator = string(os.PathSeparator)

// styleOrPlain returns a color sprint function, or plain fmt.Sprint when
// colors are disabled.
func styleOrPlain(colorized bool, attributes ...color.Attribute) func(arguments ...interface{}) string {
	if !colorized {
		return fmt.Sprint
	}
	return color.New(attributes...).SprintFunc()
}

// parentOf returns the containing directory of a path.
func parentOf(path string) string {
	return filepath.Dir(path)
}

// Options configures one search invocation.
type Options struct {
	// Pattern is the glob to match against entry base names.
	Pattern string
	// Root is the absolute directory the search starts from.
	Root string
	// MaxDepth bounds descent below the root; types.UnlimitedDepth removes the bound.
	MaxDepth int
	// Flat selects path-list output instead of the restricted tree render.
	Flat bool
	// IgnorePatterns prunes descent the same way the main walk would.
	IgnorePatterns []*regexp.Regexp
}

// flatMatch is one match collected for flat output.
type flatMatch struct {
	path      string
	sizeBytes int64
}

// collector accumulates matches during the pre-pass walk.
type collector struct {
	options     Options
	matcher     *regexp.Regexp
	matchCount  int
	flatMatches []flatMatch
	keepSet     map[string]struct{}
}

// Run executes the search and writes results. An invalid pattern aborts
// before any walking; zero matches is an informational message, not an error.
func Run(options Options, writer io.Writer, colorized bool) error {
	matcher, compileError := rules.CompileSearchPattern(options.Pattern)
	if compileError != nil {
		return fmt.Errorf(errorInvalidPatternFormat, options.Pattern, compileError)
	}

	matchCollector := &collector{
		options: options,
		matcher: matcher,
		keepSet: make(map[string]struct{}),
	}
	matchCollector.walk(options.Root, 0)

	highlight := styleOrPlain(colorized, color.FgCyan)
	annotation := styleOrPlain(colorized, color.FgHiBlack)

	if matchCollector.matchCount == 0 {
		notice := styleOrPlain(colorized, color.FgYellow)
		fmt.Fprintln(writer, notice(fmt.Sprintf(noMatchesFormat, options.Pattern)))
		return nil
	}

	success := styleOrPlain(colorized, color.FgGreen)
	fmt.Fprintln(writer, success(fmt.Sprintf(foundHeaderFormat, matchCollector.matchCount))+" "+highlight(options.Pattern))
	fmt.Fprintln(writer)

	if options.Flat {
		sort.Slice(matchCollector.flatMatches, func(firstIndex, secondIndex int) bool {
			return matchCollector.flatMatches[firstIndex].path < matchCollector.flatMatches[secondIndex].path
		})
		for _, match := range matchCollector.flatMatches {
			fmt.Fprintln(writer, highlight(match.path)+annotation(fmt.Sprintf(flatSizeSuffixFormat, fsize.FormatSize(match.sizeBytes))))
		}
		return nil
	}

	treeRenderer := &keepSetRenderer{
		writer:     writer,
		keepSet:    matchCollector.keepSet,
		directory:  styleOrPlain(colorized, color.FgBlue, color.Bold),
		file:       styleOrPlain(colorized, color.FgCyan, color.Bold),
		executable: styleOrPlain(colorized, color.FgGreen, color.Bold),
		annotation: annotation,
	}
	treeRenderer.render(options.Root, "")
	return nil
}

// walk is the pre-pass: every entry name is tested against the pattern before
// the descent filter applies, so an ignored directory can still match once.
func (matchCollector *collector) walk(directoryPath string, currentDepth int) {
	if currentDepth >= matchCollector.options.MaxDepth {
		return
	}
	for _, entry := range traverse.ListDirectory(directoryPath) {
		if matchCollector.matcher.MatchString(entry.Name) {
			matchCollector.record(entry)
		}
		if !entry.IsDirectory {
			continue
		}
		if rules.IsDefaultIgnoredDirectory(entry.Name) || rules.MatchesAnyPattern(entry.Name, matchCollector.options.IgnorePatterns) {
			continue
		}
		matchCollector.walk(entry.AbsolutePath, currentDepth+1)
	}
}

// record stores one match in the shape the active output mode needs.
func (matchCollector *collector) record(entry types.DirEntry) {
	matchCollector.matchCount++
	if matchCollector.options.Flat {
		sizeBytes := entry.SizeBytes
		if entry.IsDirectory {
			sizeBytes = 0
		}
		matchCollector.flatMatches = append(matchCollector.flatMatches, flatMatch{path: entry.AbsolutePath, sizeBytes: sizeBytes})
		return
	}
	matchCollector.keepSet[entry.AbsolutePath] = struct{}{}
	ancestorPath := entry.AbsolutePath
	for {
		parentPath := parentOf(ancestorPath)
		if parentPath == ancestorPath || parentPath == matchCollector.options.Root {
			break
		}
		matchCollector.keepSet[parentPath] = struct{}{}
		ancestorPath = parentPath
	}
}

// keepSetRenderer renders the restricted tree: membership in the keep set is
// the only filter, no ignore rules apply.
type keepSetRenderer struct {
	writer     io.Writer
	keepSet    map[string]struct{}
	directory  func(arguments ...interface{}) string
	file       func(arguments ...interface{}) string
	executable func(arguments ...interface{}) string
	annotation func(arguments ...interface{}) string
}

// render lists one directory level, keeping entries that are in the keep set
// or contain a kept descendant.
func (renderer *keepSetRenderer) render(directoryPath string, prefix string) {
	var survivors []types.DirEntry
	for _, entry := range traverse.ListDirectory(directoryPath) {
		if renderer.kept(entry) {
			survivors = append(survivors, entry)
		}
	}

	for entryIndex, entry := range survivors {
		isLastSibling := entryIndex == len(survivors)-1
		connector := traverse.ConnectorMiddle
		if isLastSibling {
			connector = traverse.ConnectorLast
		}
		if entry.IsDirectory {
			fmt.Fprintln(renderer.writer, prefix+connector+renderer.directory(entry.Name+directorySuffix))
			renderer.render(entry.AbsolutePath, traverse.ExtendPrefix(prefix, isLastSibling))
			continue
		}
		displayName := renderer.file(entry.Name)
		if traverse.IsExecutable(entry.AbsolutePath) {
			displayName = renderer.executable(entry.Name)
		}
		sizeSuffix := renderer.annotation(fmt.Sprintf(flatSizeSuffixFormat, fsize.FormatSize(entry.SizeBytes)))
		fmt.Fprintln(renderer.writer, prefix+connector+displayName+sizeSuffix)
	}
}

// kept reports keep-set membership or a kept descendant.
func (renderer *keepSetRenderer) kept(entry types.DirEntry) bool {
	if _, present := renderer.keepSet[entry.AbsolutePath]; present {
		return true
	}
	if !entry.IsDirectory {
		return false
	}
	descendantPrefix := entry.AbsolutePath + pathSeparator
	for keptPath := range renderer.keepSet {
		if strings.HasPrefix(keptPath, descendantPrefix) {
			return true
		}
	}
	return false
}
