// Package history persists conversion runs in SQLite.
//
// Each invocation of the converter opens a run, records the outcome of every
// copied, skipped, and converted file, and closes the run with a terminal
// status. The `downconv history` command reads the same tables back.
//
// Schema changes are appended to the migrations in schema.go and applied on
// Open, tracked through SQLite's user_version.
package history
