// Package logger provides structured logging for the load balancer.
// It wraps the standard log/slog package, selecting JSON or text output
// based on the configured environment.
package logger
