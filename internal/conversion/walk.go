package conversion

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// walkFiles visits every file under root in lexical order, passing the path
// relative to root. Symlinks to directories are neither followed nor
// reported; symlinks to files are reported like the files they name.
func walkFiles(root string, fn func(rel string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				return nil
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return fn(rel, d)
	})
}

func extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
