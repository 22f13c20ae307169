package audioinfo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	flac "github.com/go-flac/go-flac"
	"golang.org/x/text/unicode/norm"
)

// Record describes the stream parameters of one lossless file.
type Record struct {
	Name       string
	Precision  int
	SampleRate int
	Channels   int
}

// Index maps basenames to records. Files with the same basename in different
// subfolders share one entry; the last one walked wins.
type Index map[string]Record

// ErrUnsupported reports a file whose container is not probed.
var ErrUnsupported = errors.New("unsupported audio container")

// Key normalizes a basename for index lookups.
func Key(name string) string {
	return norm.NFC.String(filepath.Base(name))
}

// Lookup returns the record for a basename.
func (idx Index) Lookup(name string) (Record, bool) {
	rec, ok := idx[Key(name)]
	return rec, ok
}

// Gather walks root and probes every supported file. Files that cannot be
// decoded are left out of the index.
func Gather(ctx context.Context, root string, logger *slog.Logger) (Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	idx := Index{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		rec, probeErr := Probe(path)
		if probeErr != nil {
			logger.Debug("audio probe skipped",
				slog.String("file", path),
				slog.String("error", probeErr.Error()),
			)
			return nil
		}
		idx[Key(rec.Name)] = rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gather audio info: %w", err)
	}
	return idx, nil
}

// Supported reports whether path has a probed extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac", ".wav":
		return true
	default:
		return false
	}
}

// Probe reads the stream parameters of a single FLAC or WAV file.
func Probe(path string) (Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		return probeFLAC(path)
	case ".wav":
		return probeWAV(path)
	default:
		return Record{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
}

func probeFLAC(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	meta, err := flac.ParseMetadata(f)
	if err != nil {
		return Record{}, fmt.Errorf("parse flac metadata: %w", err)
	}
	info, err := meta.GetStreamInfo()
	if err != nil {
		return Record{}, fmt.Errorf("read flac streaminfo: %w", err)
	}
	if info.SampleRate == 0 {
		return Record{}, errors.New("flac streaminfo has zero sample rate")
	}
	return Record{
		Name:       filepath.Base(path),
		Precision:  info.BitDepth,
		SampleRate: info.SampleRate,
		Channels:   info.ChannelCount,
	}, nil
}

func probeWAV(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Record{}, errors.New("invalid wav file")
	}
	return Record{
		Name:       filepath.Base(path),
		Precision:  int(decoder.BitDepth),
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
	}, nil
}
