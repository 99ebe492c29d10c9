package traverse

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/strut/internal/types"
)

// ListDirectory reads one directory and returns its children ordered
// directories first, then case-insensitive lexicographically by name. A
// directory that cannot be listed is treated as empty; an entry that vanishes
// between listing and stat keeps a zero size. Symlinks are reported with
// IsDirectory false regardless of their target so they are never recursed.
func ListDirectory(directoryPath string) []types.DirEntry {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return nil
	}

	entries := make([]types.DirEntry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		isSymlink := directoryEntry.Type()&fs.ModeSymlink != 0
		entry := types.DirEntry{
			Name:         entryName,
			AbsolutePath: filepath.Join(directoryPath, entryName),
			IsSymlink:    isSymlink,
			IsDirectory:  !isSymlink && directoryEntry.IsDir(),
		}
		if entryInfo, infoError := directoryEntry.Info(); infoError == nil && !entry.IsDirectory {
			entry.SizeBytes = entryInfo.Size()
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(firstIndex, secondIndex int) bool {
		first, second := entries[firstIndex], entries[secondIndex]
		if first.IsDirectory != second.IsDirectory {
			return first.IsDirectory
		}
		return strings.ToLower(first.Name) < strings.ToLower(second.Name)
	})
	return entries
}
