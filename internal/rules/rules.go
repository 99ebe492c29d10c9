// Package rules classifies directory entries against the layered ignore policy:
// built-in defaults, user glob patterns, the size gate, and git-mode filtering.
package rules

import (
	"os"
	"regexp"
	"strings"

	"github.com/temirov/strut/internal/types"
)

// Classification is the visibility verdict for one directory entry.
type Classification int

const (
	// ClassVisible renders the entry normally.
	ClassVisible Classification = iota
	// ClassIgnoredDefault prunes a directory matched by the built-in deny list.
	ClassIgnoredDefault
	// ClassIgnoredPattern prunes a directory matched by a user pattern.
	ClassIgnoredPattern
	// ClassIgnoredFile silently drops a file matched by the default file deny list.
	ClassIgnoredFile
	// ClassIgnoredSize prunes a directory whose recursive size exceeds the gate.
	ClassIgnoredSize
	// ClassIgnoredGit silently drops an entry outside the active git path set.
	ClassIgnoredGit
)

// packagingMetadataSuffix marks Python packaging metadata directories.
const packagingMetadataSuffix = ".egg-info"

// defaultIgnoredDirectoryNames is the built-in directory deny list: version
// control metadata, language and package caches, build output, editor state.
var defaultIgnoredDirectoryNames = map[string]struct{}{
	"__pycache__":   {},
	".pytest_cache": {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".tox":          {},
	"dist":          {},
	"build":         {},
	".coverage":     {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"virtualenv":    {},
	"node_modules":  {},
	".npm":          {},
	".yarn":         {},
	".git":          {},
	".svn":          {},
	".hg":           {},
	".vscode":       {},
	".idea":         {},
	"target":        {},
	"bin":           {},
	"obj":           {},
	".next":         {},
	".nuxt":         {},
	".DS_Store":     {},
}

// defaultIgnoredFileExtensions lists extensions of compiled artifacts and swap files.
var defaultIgnoredFileExtensions = map[string]struct{}{
	"pyc": {},
	"pyo": {},
	"pyd": {},
	"swp": {},
	"swo": {},
}

// defaultIgnoredFileNames lists exact file names dropped by default.
var defaultIgnoredFileNames = map[string]struct{}{
	"package-lock.json": {},
	".DS_Store":         {},
}

// SubtreeSizer reports the recursive byte total of a directory.
type SubtreeSizer func(directoryPath string) int64

// IsDefaultIgnoredDirectory reports whether the directory name is in the
// built-in deny list or carries the packaging metadata suffix.
func IsDefaultIgnoredDirectory(directoryName string) bool {
	if _, denied := defaultIgnoredDirectoryNames[directoryName]; denied {
		return true
	}
	return strings.HasSuffix(directoryName, packagingMetadataSuffix)
}

// IsDefaultIgnoredFile reports whether the file name is dropped by default.
// The extension is the substring after the last dot; a name without a dot is
// compared whole, matching the historical behavior.
func IsDefaultIgnoredFile(fileName string) bool {
	if _, denied := defaultIgnoredFileNames[fileName]; denied {
		return true
	}
	extension := fileName
	if dotIndex := strings.LastIndex(fileName, "."); dotIndex >= 0 {
		extension = fileName[dotIndex+1:]
	}
	_, denied := defaultIgnoredFileExtensions[extension]
	return denied
}

// CompileIgnorePatterns translates comma-free glob strings into anchored
// regular expressions. The translation is deliberately narrow: "*" becomes
// ".*" and the pattern is matched against the full name. Invalid patterns are
// silently dropped.
func CompileIgnorePatterns(globPatterns []string) []*regexp.Regexp {
	compiledPatterns := make([]*regexp.Regexp, 0, len(globPatterns))
	for _, globPattern := range globPatterns {
		trimmedPattern := strings.TrimSpace(globPattern)
		if trimmedPattern == "" {
			continue
		}
		translatedPattern := strings.ReplaceAll(trimmedPattern, "*", ".*")
		compiledPattern, compileError := regexp.Compile("^" + translatedPattern + "$")
		if compileError != nil {
			continue
		}
		compiledPatterns = append(compiledPatterns, compiledPattern)
	}
	return compiledPatterns
}

// CompileSearchPattern translates a search glob into an anchored regular
// expression: "*" matches any run of characters and "?" exactly one.
func CompileSearchPattern(globPattern string) (*regexp.Regexp, error) {
	translatedPattern := strings.ReplaceAll(globPattern, "*", ".*")
	translatedPattern = strings.ReplaceAll(translatedPattern, "?", ".")
	return regexp.Compile("^" + translatedPattern + "$")
}

// MatchesAnyPattern reports whether the name matches one of the compiled patterns.
func MatchesAnyPattern(entryName string, compiledPatterns []*regexp.Regexp) bool {
	for _, compiledPattern := range compiledPatterns {
		if compiledPattern.MatchString(entryName) {
			return true
		}
	}
	return false
}

// Classify applies the visibility rules to one entry. The precedence order is
// fixed: the git-mode override replaces every other rule, then default
// directory ignores, custom patterns, default file ignores, and finally the
// size gate. The sizer is only invoked when a size gate is configured; the
// measured byte total is returned alongside the verdict so callers never walk
// the same subtree twice, and is zero when no measurement happened.
func Classify(entry types.DirEntry, configuration *types.WalkConfig, measureSubtree SubtreeSizer) (Classification, int64) {
	if configuration.GitRelationship != types.GitRelationshipNone {
		if gitPathSetCovers(entry, configuration.GitPathSet) {
			return ClassVisible, 0
		}
		return ClassIgnoredGit, 0
	}

	if entry.IsDirectory && !configuration.IgnoreDefaultsDisabled {
		reEnabledName := configuration.IgnoreOnlyPattern
		if IsDefaultIgnoredDirectory(entry.Name) && entry.Name != reEnabledName {
			return ClassIgnoredDefault, 0
		}
	}

	if configuration.IgnoreOnlyPattern == "" && MatchesAnyPattern(entry.Name, configuration.CustomIgnorePatterns) {
		return ClassIgnoredPattern, 0
	}

	if !entry.IsDirectory && IsDefaultIgnoredFile(entry.Name) {
		return ClassIgnoredFile, 0
	}

	if entry.IsDirectory && configuration.MaxSubtreeBytes > 0 && measureSubtree != nil {
		measuredBytes := measureSubtree(entry.AbsolutePath)
		if measuredBytes > configuration.MaxSubtreeBytes {
			return ClassIgnoredSize, measuredBytes
		}
		return ClassVisible, measuredBytes
	}

	return ClassVisible, 0
}

// gitPathSetCovers reports whether the entry survives git-mode filtering.
// A file must be in the set exactly; a directory must lexically contain at
// least one set member. An empty relationship snapshot (the history case)
// leaves the walk unrestricted.
func gitPathSetCovers(entry types.DirEntry, gitPathSet map[string]struct{}) bool {
	if gitPathSet == nil {
		return true
	}
	if !entry.IsDirectory {
		_, present := gitPathSet[entry.AbsolutePath]
		return present
	}
	directoryPrefix := entry.AbsolutePath + string(os.PathSeparator)
	for memberPath := range gitPathSet {
		if strings.HasPrefix(memberPath, directoryPrefix) {
			return true
		}
	}
	return false
}
