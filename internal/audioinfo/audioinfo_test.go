package audioinfo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downconv/internal/audioinfo"
	"downconv/internal/testsupport"
)

func TestProbeFLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01 - Intro.flac")
	testsupport.WriteFLAC(t, path, 96000, 24)

	rec, err := audioinfo.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, "01 - Intro.flac", rec.Name)
	assert.Equal(t, 24, rec.Precision)
	assert.Equal(t, 96000, rec.SampleRate)
	assert.Equal(t, 2, rec.Channels)
}

func TestProbeFLACHighRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	testsupport.WriteFLAC(t, path, 352800, 16)

	rec, err := audioinfo.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, 16, rec.Precision)
	assert.Equal(t, 352800, rec.SampleRate)
}

func TestProbeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	testsupport.WriteWAV(t, path, 88200, 24)

	rec, err := audioinfo.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, 24, rec.Precision)
	assert.Equal(t, 88200, rec.SampleRate)
}

func TestProbeRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	flacPath := filepath.Join(dir, "broken.flac")
	require.NoError(t, os.WriteFile(flacPath, []byte("not a flac"), 0o644))
	_, err := audioinfo.Probe(flacPath)
	assert.Error(t, err)

	_, err = audioinfo.Probe(filepath.Join(dir, "cover.jpg"))
	assert.ErrorIs(t, err, audioinfo.ErrUnsupported)
}

func TestGatherIndexesByBasename(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFLAC(t, filepath.Join(root, "01.flac"), 96000, 24)
	testsupport.WriteFLAC(t, filepath.Join(root, "CD2", "02.flac"), 44100, 16)
	testsupport.WriteWAV(t, filepath.Join(root, "03.wav"), 48000, 24)
	testsupport.WriteFile(t, filepath.Join(root, "cover.jpg"), 32)
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.flac"), []byte("junk"), 0o644))

	idx, err := audioinfo.Gather(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Len(t, idx, 3)

	rec, ok := idx.Lookup("02.flac")
	require.True(t, ok)
	assert.Equal(t, 16, rec.Precision)

	_, ok = idx.Lookup("bad.flac")
	assert.False(t, ok)
}

func TestLookupNormalizesUnicode(t *testing.T) {
	root := t.TempDir()
	// Decomposed e + combining acute accent.
	decomposed := "Cafe\u0301.flac"
	testsupport.WriteFLAC(t, filepath.Join(root, decomposed), 44100, 24)

	idx, err := audioinfo.Gather(context.Background(), root, nil)
	require.NoError(t, err)

	_, ok := idx.Lookup("Caf\u00e9.flac")
	assert.True(t, ok)
}

func TestGatherHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFLAC(t, filepath.Join(root, "01.flac"), 96000, 24)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := audioinfo.Gather(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
