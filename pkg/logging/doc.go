// Package logging provides structured logging utilities for gkesync.
//
// # Overview
//
// This package wraps the standard library slog package with defaults shared by
// every command: module/version context on each record, level parsing, and
// source location for debug logs.
//
// # Features
//
//   - JSON logging to stderr when running unattended (CronJob, CI)
//   - Text logging when stderr is a terminal
//   - Environment-based log level configuration (LOG_LEVEL)
//   - Automatic module and version context
//   - Source location tracking for debug logs
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: extractor summaries, per-attempt details, with source location
//   - INFO: pipeline progress (default)
//   - WARN/WARNING: best-effort steps that failed (formatter, report)
//   - ERROR: fatal conditions
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLoggerWithLevel("gkesync", version, "info")
//	    slog.Info("checkpoint", "id", "2025-R37")
//	}
//
// # Output Format
//
//	{
//	    "time": "2025-09-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "merged entries",
//	    "module": "gkesync",
//	    "version": "v0.3.0",
//	    "entries": 2
//	}
package logging
