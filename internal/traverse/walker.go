// Package traverse implements the filtered depth-first tree walk and its
// prefix-drawn rendering.
package traverse

import (
	"io"

	"github.com/temirov/strut/internal/fsize"
	"github.com/temirov/strut/internal/rules"
	"github.com/temirov/strut/internal/types"
)

// decisionKind identifies how a surviving entry is rendered.
type decisionKind int

const (
	decisionShown decisionKind = iota
	decisionPrunedIgnored
	decisionPrunedOversized
)

// renderedEntry pairs an entry with its render decision. Entries that are
// skipped silently never become renderedEntry values, so last-sibling
// connectors are computed over the surviving set, not the raw listing.
type renderedEntry struct {
	entry           types.DirEntry
	kind            decisionKind
	hiddenFileCount int
	subtreeBytes    int64
}

// Walker performs the recursive filtered traversal. It holds only read-only
// state: the shared configuration and the renderer. The walk is synchronous
// and depth-first; stack growth is bounded by true directory depth because
// symlinks are never recursed.
type Walker struct {
	configuration *types.WalkConfig
	renderer      *Renderer
	measure       rules.SubtreeSizer
}

// NewWalker constructs a Walker writing through the given renderer.
func NewWalker(configuration *types.WalkConfig, writer io.Writer, colorized bool) *Walker {
	return &Walker{
		configuration: configuration,
		renderer:      NewRenderer(writer, configuration.ShowSizes, colorized),
		measure:       fsize.SubtreeBytes,
	}
}

// Run renders the header line and walks the root directory.
func (walker *Walker) Run(rootPath string) {
	walker.renderer.WriteHeader(rootPath)
	walker.walkDirectory(rootPath, 0, "")
}

// walkDirectory processes one directory level: list, sort, classify every
// entry, then render the survivors and recurse into shown directories.
func (walker *Walker) walkDirectory(directoryPath string, currentDepth int, prefix string) {
	if currentDepth >= walker.configuration.MaxDepth {
		return
	}

	survivors := walker.classifyEntries(ListDirectory(directoryPath))

	for entryIndex, survivor := range survivors {
		isLastSibling := entryIndex == len(survivors)-1
		switch survivor.kind {
		case decisionPrunedIgnored:
			walker.renderer.WritePrunedIgnored(survivor.entry, prefix, isLastSibling, survivor.hiddenFileCount, survivor.subtreeBytes)
		case decisionPrunedOversized:
			walker.renderer.WritePrunedOversized(survivor.entry, prefix, isLastSibling, survivor.subtreeBytes)
		case decisionShown:
			walker.renderer.WriteShown(survivor.entry, prefix, isLastSibling)
			if survivor.entry.IsDirectory {
				walker.walkDirectory(survivor.entry.AbsolutePath, currentDepth+1, ExtendPrefix(prefix, isLastSibling))
			}
		}
	}
}

// classifyEntries runs the rule engine over a sorted listing and keeps only
// entries that produce output.
func (walker *Walker) classifyEntries(entries []types.DirEntry) []renderedEntry {
	survivors := make([]renderedEntry, 0, len(entries))
	for _, entry := range entries {
		classification, measuredBytes := rules.Classify(entry, walker.configuration, walker.measure)
		switch classification {
		case rules.ClassVisible:
			survivors = append(survivors, renderedEntry{entry: entry, kind: decisionShown})
		case rules.ClassIgnoredDefault, rules.ClassIgnoredPattern:
			if !entry.IsDirectory {
				continue
			}
			survivor := renderedEntry{
				entry:           entry,
				kind:            decisionPrunedIgnored,
				hiddenFileCount: fsize.CountFiles(entry.AbsolutePath),
			}
			if walker.configuration.ShowSizes {
				survivor.subtreeBytes = fsize.SubtreeBytes(entry.AbsolutePath)
			}
			survivors = append(survivors, survivor)
		case rules.ClassIgnoredSize:
			// The size gate already walked this subtree; reuse its measurement.
			survivors = append(survivors, renderedEntry{
				entry:        entry,
				kind:         decisionPrunedOversized,
				subtreeBytes: measuredBytes,
			})
		case rules.ClassIgnoredFile, rules.ClassIgnoredGit:
			// Silent skip: no line, no recursion.
		}
	}
	return survivors
}
