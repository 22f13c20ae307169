// Package services defines shared utilities consumed by the conversion
// pipeline and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, pipeline stages, and source
//     folders for logging and history records.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent run statuses (failed vs rejected).
//
// Use these helpers when wiring new pipeline steps so operational behaviour
// (error handling, observability) stays uniform across commands.
package services
