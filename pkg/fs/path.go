package fs

import (
	"errors"
	"path"
	"strings"
)

// readDirBatch is the number of entries requested per ReadDir call.
const readDirBatch = 32

// SkipDir can be returned by a WalkFunc to skip the directory just visited.
var SkipDir = errors.New("skip this directory")

// SplitPath trims leading slashes from p and splits it at the first
// remaining slash. more reports whether a remainder follows name; the
// remainder itself may be empty, e.g. for "dev/".
func SplitPath(p string) (name, rest string, more bool) {
	trimmed := strings.TrimLeft(p, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i], trimmed[i+1:], true
	}
	return trimmed, "", false
}

// Resolve looks up p starting at root. Leading slashes are ignored, so an
// absolute path resolves against root.
func Resolve(root Node, p string) (Node, error) {
	node, err := root.Lookup(p)
	if err != nil {
		return nil, NewError("lookup", p, err)
	}
	return node, nil
}

// ReadDirAll returns every entry of dir, including "." and "..".
func ReadDirAll(dir Node) ([]DirEntry, error) {
	var entries []DirEntry
	buf := make([]DirEntry, readDirBatch)
	for {
		n, err := dir.ReadDir(len(entries), buf)
		if err != nil {
			return nil, err
		}
		entries = append(entries, buf[:n]...)
		if n < len(buf) {
			return entries, nil
		}
	}
}

// WalkFunc is called by Walk for every node below the starting directory.
type WalkFunc func(p string, entry DirEntry, node Node) error

// Walk visits the tree below root depth-first, in the order ReadDir reports
// entries. Paths passed to fn are absolute with respect to root.
func Walk(root Node, fn WalkFunc) error {
	return walk(root, "/", fn)
}

func walk(dir Node, dirPath string, fn WalkFunc) error {
	entries, err := ReadDirAll(dir)
	if err != nil {
		return NewError("readdir", dirPath, err)
	}

	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}

		child, err := dir.Lookup(entry.Name)
		if err != nil {
			return NewError("lookup", path.Join(dirPath, entry.Name), err)
		}

		childPath := path.Join(dirPath, entry.Name)
		if err := fn(childPath, entry, child); err != nil {
			if errors.Is(err, SkipDir) {
				continue
			}
			return err
		}

		if entry.Type.IsDir() {
			if err := walk(child, childPath, fn); err != nil {
				return err
			}
		}
	}

	return nil
}
