package conversion

import (
	"errors"
	"io/fs"
)

var errStopWalk = errors.New("stop walk")

// ValidateLossless fails with a LossyFileFoundError when any file under root
// has an extension in lossy.
func ValidateLossless(root string, lossy map[string]struct{}) error {
	var found string
	err := walkFiles(root, func(rel string, d fs.DirEntry) error {
		if _, ok := lossy[extension(d.Name())]; ok {
			found = rel
			return errStopWalk
		}
		return nil
	})
	if found != "" {
		return &LossyFileFoundError{Path: found}
	}
	if err != nil {
		return filesystemError("validate", "scan source folder", err)
	}
	return nil
}

// DetectScene returns every file under root whose extension marks a scene
// release. An empty result means no indicators were found.
func DetectScene(root string, scene map[string]struct{}) ([]string, error) {
	var found []string
	err := walkFiles(root, func(rel string, d fs.DirEntry) error {
		if _, ok := scene[extension(d.Name())]; ok {
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		return nil, filesystemError("scene", "scan source folder", err)
	}
	return found, nil
}
