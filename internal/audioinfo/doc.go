// Package audioinfo reads stream parameters from lossless audio files.
//
// Key types:
//   - Record: basename, bit depth and sample rate of one file
//   - Index: records keyed by NFC-normalized basename
//
// Primary entry points:
//   - Gather: walks a folder and probes every FLAC and WAV file
//   - Probe: reads a single file
//
// FLAC files are read through their STREAMINFO block, WAV files through the
// fmt chunk. Audio frames are never decoded.
package audioinfo
