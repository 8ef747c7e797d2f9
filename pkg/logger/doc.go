// Package logger provides a small factory over log/slog with functional
// options for level, format, output and static attributes.
//
// The engine logs through plain *slog.Logger values; this package only
// standardizes how hosts construct them. Discard returns the no-op logger
// engine components default to when the host supplies none.
package logger
