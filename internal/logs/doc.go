// Package logs reads the downconv log file for `downconv log`.
//
// Last returns the final N lines with bounded memory and the offset at which
// they end; Follow polls from an offset and hands every new line to a
// callback until the context is cancelled.
package logs
