// Package fsize computes recursive directory sizes and file counts.
// Symlinks are never followed and unreadable subtrees contribute zero so a
// bad subtree can never abort a walk.
package fsize

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

const (
	kibibyte = int64(1024)
	mebibyte = kibibyte * 1024
	gibibyte = mebibyte * 1024
)

// SubtreeBytes returns the byte total of every regular file reachable below
// the directory without following symlinks.
func SubtreeBytes(directoryPath string) int64 {
	var totalBytes int64
	_ = filepath.WalkDir(directoryPath, func(visitedPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		entryInfo, infoError := entry.Info()
		if infoError != nil {
			return nil
		}
		totalBytes += entryInfo.Size()
		return nil
	})
	return totalBytes
}

// CountFiles returns the number of regular files reachable below the
// directory without following symlinks. The count is unfiltered: nested
// ignore rules do not apply, it answers "how many files were hidden".
func CountFiles(directoryPath string) int {
	fileCount := 0
	_ = filepath.WalkDir(directoryPath, func(visitedPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}
		if entry.Type().IsRegular() {
			fileCount++
		}
		return nil
	})
	return fileCount
}

// FormatSize renders a byte count with binary thresholds and single-letter
// units: plain bytes below 1024, then one decimal place for K, M, and G.
func FormatSize(byteCount int64) string {
	switch {
	case byteCount >= gibibyte:
		return fmt.Sprintf("%.1fG", float64(byteCount)/float64(gibibyte))
	case byteCount >= mebibyte:
		return fmt.Sprintf("%.1fM", float64(byteCount)/float64(mebibyte))
	case byteCount >= kibibyte:
		return fmt.Sprintf("%.1fK", float64(byteCount)/float64(kibibyte))
	default:
		return fmt.Sprintf("%dB", byteCount)
	}
}
