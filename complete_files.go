package flagtree

import (
	"os"
	"path/filepath"
	"strings"
)

// fileCandidates lists filesystem entries whose path starts with prefix.
// Directories end with a separator so completion can continue into them.
func fileCandidates(prefix string, dirsOnly bool) *CompletionResult {
	res := NewCompletionResult()
	dir, base := filepath.Split(prefix)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}
	entries, err := os.ReadDir(readDir)
	if err != nil {
		return res
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if !strings.HasPrefix(name, base) {
			continue
		}
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(readDir, name)); err == nil {
				isDir = info.IsDir()
			}
		}
		if dirsOnly && !isDir {
			continue
		}
		value := dir + name
		if isDir {
			value += string(filepath.Separator)
		}
		res.Add(value)
	}
	return res
}
