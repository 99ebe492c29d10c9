package traverse

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/strut/internal/fsize"
	"github.com/temirov/strut/internal/types"
)

const (
	// ConnectorMiddle draws an entry with siblings below it.
	ConnectorMiddle = "├── "
	// ConnectorLast draws the last surviving sibling.
	ConnectorLast = "└── "
	// PrefixExtensionMiddle extends the prefix below a non-last directory.
	PrefixExtensionMiddle = "│   "
	// PrefixExtensionLast extends the prefix below a last directory.
	PrefixExtensionLast = "    "

	directorySuffix       = "/"
	symlinkArrow          = " -> "
	prunedIgnoredFormat   = " (%d files ignored)"
	prunedSizedFormat     = " (%s, %d files ignored)"
	prunedOversizedFormat = " (%dMB, skipped)"
	sizeSuffixFormat      = " (%s)"
	megabyte              = int64(1024 * 1024)
)

// windowsExecutableExtensions approximates the executable check on platforms
// without permission bits.
var windowsExecutableExtensions = map[string]struct{}{
	".exe": {}, ".bat": {}, ".cmd": {}, ".sh": {}, ".py": {}, ".ps1": {},
}

// styler colors one fragment of output.
type styler func(arguments ...interface{}) string

// Renderer turns walk decisions into prefix-drawn tree lines.
type Renderer struct {
	writer     io.Writer
	showSizes  bool
	directory  styler
	executable styler
	symlink    styler
	header     styler
	annotation styler
}

// NewRenderer constructs a Renderer. When colorized is false every styler is
// a plain passthrough, which also keeps clipboard copies free of escape codes.
func NewRenderer(writer io.Writer, showSizes bool, colorized bool) *Renderer {
	renderer := &Renderer{
		writer:     writer,
		showSizes:  showSizes,
		directory:  fmt.Sprint,
		executable: fmt.Sprint,
		symlink:    fmt.Sprint,
		header:     fmt.Sprint,
		annotation: fmt.Sprint,
	}
	if colorized {
		renderer.directory = color.New(color.FgBlue, color.Bold).SprintFunc()
		renderer.executable = color.New(color.FgGreen, color.Bold).SprintFunc()
		renderer.symlink = color.New(color.FgCyan).SprintFunc()
		renderer.header = color.New(color.FgCyan).SprintFunc()
		renderer.annotation = color.New(color.FgHiBlack).SprintFunc()
	}
	return renderer
}

// WriteHeader prints the root line above the tree.
func (renderer *Renderer) WriteHeader(rootPath string) {
	fmt.Fprintln(renderer.writer, renderer.header(rootPath))
}

// connectorFor selects the tree-drawing connector for an entry.
func connectorFor(isLastSibling bool) string {
	if isLastSibling {
		return ConnectorLast
	}
	return ConnectorMiddle
}

// ExtendPrefix returns the prefix carried into a directory's children.
func ExtendPrefix(prefix string, isLastSibling bool) string {
	if isLastSibling {
		return prefix + PrefixExtensionLast
	}
	return prefix + PrefixExtensionMiddle
}

// WriteShown prints a normally visible entry: directories get a trailing
// slash, symlinks render as "name -> target" and are never followed, and
// executables are visually distinguished. File lines carry a size suffix when
// sizes are enabled; directory lines never do.
func (renderer *Renderer) WriteShown(entry types.DirEntry, prefix string, isLastSibling bool) {
	displayName := renderer.displayNameFor(entry)
	line := prefix + connectorFor(isLastSibling) + displayName
	if renderer.showSizes && !entry.IsDirectory {
		line += renderer.annotation(fmt.Sprintf(sizeSuffixFormat, fsize.FormatSize(entry.SizeBytes)))
	}
	fmt.Fprintln(renderer.writer, line)
}

// WritePrunedIgnored prints an ignored directory as one line carrying the
// unfiltered count of files hidden beneath it.
func (renderer *Renderer) WritePrunedIgnored(entry types.DirEntry, prefix string, isLastSibling bool, hiddenFileCount int, subtreeBytes int64) {
	annotation := fmt.Sprintf(prunedIgnoredFormat, hiddenFileCount)
	if renderer.showSizes {
		annotation = fmt.Sprintf(prunedSizedFormat, fsize.FormatSize(subtreeBytes), hiddenFileCount)
	}
	fmt.Fprintln(renderer.writer,
		prefix+connectorFor(isLastSibling)+renderer.directory(entry.Name+directorySuffix)+renderer.annotation(annotation))
}

// WritePrunedOversized prints a directory skipped by the size gate.
func (renderer *Renderer) WritePrunedOversized(entry types.DirEntry, prefix string, isLastSibling bool, subtreeBytes int64) {
	fmt.Fprintln(renderer.writer,
		prefix+connectorFor(isLastSibling)+renderer.directory(entry.Name+directorySuffix)+
			renderer.annotation(fmt.Sprintf(prunedOversizedFormat, subtreeBytes/megabyte)))
}

// displayNameFor styles the entry name by its kind.
func (renderer *Renderer) displayNameFor(entry types.DirEntry) string {
	if entry.IsSymlink {
		if linkTarget, readLinkError := os.Readlink(entry.AbsolutePath); readLinkError == nil {
			return renderer.symlink(entry.Name + symlinkArrow + linkTarget)
		}
		return renderer.symlink(entry.Name)
	}
	if entry.IsDirectory {
		return renderer.directory(entry.Name + directorySuffix)
	}
	if IsExecutable(entry.AbsolutePath) {
		return renderer.executable(entry.Name)
	}
	return entry.Name
}

// IsExecutable reports whether the file at path is executable. The check is
// best-effort: permission bits where they exist, well-known extensions
// elsewhere.
func IsExecutable(path string) bool {
	if runtime.GOOS == "windows" {
		extension := strings.ToLower(filepath.Ext(path))
		_, known := windowsExecutableExtensions[extension]
		return known
	}
	fileInfo, statError := os.Stat(path)
	if statError != nil {
		return false
	}
	return fileInfo.Mode()&0o111 != 0
}
