// Package conversion turns a 24-bit FLAC release folder into a 16-bit one.
//
// A conversion runs in a fixed order:
//   - ValidateLossless rejects folders that contain lossy audio
//   - DestinationFor derives the sibling output folder, which must not exist
//   - DetectScene finds scene-release indicator files (warning only)
//   - Classify splits the tree into files to convert, copy, or skip
//   - CopyAll mirrors the copy set into the destination
//   - Schedule runs the encoder over the convert set on a bounded Pool
//
// Converter wires these steps together with locking, history, and logging.
//
// Schedule owns its worker slots from a single goroutine. Each launched
// encoder has a waiter goroutine that reports its exit on a shared channel, so
// the scheduler blocks until any process finishes instead of polling. The
// first failure stops new launches; running siblings are then terminated or
// awaited according to the pool's abort policy, and every child is reaped
// before Schedule returns.
//
// Metadata lookup is keyed by basename. Two files with the same name in
// different subfolders share one record, which is fine for the flat or
// uniquely named release folders this tool targets.
package conversion
