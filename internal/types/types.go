// Package types defines every cross-package data structure used by the strut CLI.
package types

import (
	"math"
	"regexp"
)

// UnlimitedDepth marks a walk whose depth is not bounded.
const UnlimitedDepth = math.MaxInt

// GitRelationship selects which repository relationship restricts a walk.
type GitRelationship string

const (
	// GitRelationshipNone disables git-aware filtering. It is the zero value
	// so a configuration that never touches the field cannot enter git mode.
	GitRelationshipNone GitRelationship = ""
	// GitRelationshipTracked restricts output to files present in the index.
	GitRelationshipTracked GitRelationship = "tracked"
	// GitRelationshipUntracked restricts output to untracked, not-ignored files.
	GitRelationshipUntracked GitRelationship = "untracked"
	// GitRelationshipStaged restricts output to files whose index entry differs from HEAD.
	GitRelationshipStaged GitRelationship = "staged"
	// GitRelationshipChanged restricts output to files with unstaged working tree changes.
	GitRelationshipChanged GitRelationship = "changed"
	// GitRelationshipHistory is declared for flag compatibility and never yields a path set.
	GitRelationshipHistory GitRelationship = "history"
)

// WalkConfig carries the per-invocation traversal configuration.
// It is created once from resolved inputs and never mutated during a walk.
type WalkConfig struct {
	// MaxDepth is the number of directory levels expanded below the root.
	MaxDepth int
	// CustomIgnorePatterns holds compiled user glob patterns in their original order.
	CustomIgnorePatterns []*regexp.Regexp
	// MaxSubtreeBytes prunes directories whose recursive size strictly exceeds it.
	// Zero disables the gate.
	MaxSubtreeBytes int64
	// GitPathSet holds canonical absolute paths; its meaning depends on GitRelationship.
	GitPathSet map[string]struct{}
	// GitRelationship selects the active git filter.
	GitRelationship GitRelationship
	// ShowSizes adds human-readable size suffixes to file lines.
	ShowSizes bool
	// IgnoreDefaultsDisabled suppresses the built-in directory deny list.
	IgnoreDefaultsDisabled bool
	// IgnoreOnlyPattern re-enables exactly one default-ignored directory name.
	IgnoreOnlyPattern string
}

// DirEntry describes one filesystem child visited during a walk.
// IsDirectory is false for symlinks regardless of the link target; symlinks
// are never traversed so cyclic links cannot loop the walk.
type DirEntry struct {
	Name         string
	AbsolutePath string
	IsSymlink    bool
	IsDirectory  bool
	SizeBytes    int64
}
