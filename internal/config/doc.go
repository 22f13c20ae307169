// Package config loads, normalizes, and validates downconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DOWNCONV_CONCURRENCY. The Config type centralizes every knob the CLI and the
// conversion pipeline need: encoder invocation, worker concurrency, the file
// extension sets used during folder validation, and where run history lives.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lower-cased extension sets, and clear validation errors.
package config
