// Package fs provides various filesystem helpers.
package fs

import (
	"os"
	"runtime"
)

// PathExists returns true if the given path exists, as a file or a directory.
// Symlinks are followed, so a dangling link does not count.
func PathExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// FileExists returns true if the given path exists and is not a directory.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

// IsExecutable returns true if the given path is a regular file we could run.
// On Windows there's no execute bit so any regular file qualifies.
func IsExecutable(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode()&0111 != 0
}
