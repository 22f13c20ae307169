package conversion

import (
	"path/filepath"
	"regexp"
)

var (
	hiResTag = regexp.MustCompile(`(?i)24 ?bit FLAC`)
	flacTag  = regexp.MustCompile(`(?i)FLAC`)
)

// Destination is the output folder for a conversion.
type Destination struct {
	Name string
	Path string
}

// DestinationName derives the output folder name from the source folder name.
func DestinationName(name string) string {
	switch {
	case hiResTag.MatchString(name):
		return hiResTag.ReplaceAllLiteralString(name, "FLAC")
	case flacTag.MatchString(name):
		return flacTag.ReplaceAllLiteralString(name, "16bit FLAC")
	default:
		return name + " [FLAC]"
	}
}

// DestinationFor places the derived folder next to source.
func DestinationFor(source string) Destination {
	clean := filepath.Clean(source)
	name := DestinationName(filepath.Base(clean))
	return Destination{Name: name, Path: filepath.Join(filepath.Dir(clean), name)}
}
