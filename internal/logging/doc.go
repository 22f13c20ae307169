// Package logging builds the slog loggers used across downconv.
//
// New and NewFromConfig choose between the console handler (one aligned line
// per record, component first) and slog's JSON handler. WithContext copies the
// run id and folder carried by a context onto a logger, and WarnWithContext /
// ErrorWithContext make sure every warning names an event type and a hint.
package logging
