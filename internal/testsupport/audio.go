package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes a short PCM WAV file with the given stream parameters.
func WriteWAV(t testing.TB, path string, sampleRate, bitDepth int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const channels = 2
	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		Data:           make([]int, 64*channels),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav samples %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav encoder %s: %v", path, err)
	}
}

// WriteFLAC writes a metadata-only FLAC file carrying a STREAMINFO block with
// the given stream parameters. It has no audio frames, which is enough for
// readers that only inspect metadata.
func WriteFLAC(t testing.TB, path string, sampleRate, bitDepth int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, FLACHeader(sampleRate, bitDepth, 2), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// FLACHeader encodes the stream marker and a final STREAMINFO block.
func FLACHeader(sampleRate, bitDepth, channels int) []byte {
	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	// 20 bits sample rate, 3 bits channels-1, 5 bits bps-1, 36 bits total samples.
	info[10] = byte(sampleRate >> 12)
	info[11] = byte(sampleRate >> 4)
	info[12] = byte(sampleRate<<4) | byte((channels-1)&0x7)<<1 | byte(((bitDepth-1)>>4)&0x1)
	info[13] = byte(((bitDepth - 1) & 0xF) << 4)

	out := []byte("fLaC")
	// Last-metadata-block flag set, type 0 (STREAMINFO), 24-bit length.
	out = append(out, 0x80, 0x00, 0x00, byte(len(info)))
	return append(out, info...)
}
