// Package logging provides structured logging utilities for the anchor tools.
//
// # Overview
//
// This package wraps the standard library slog package with defaults shared by
// the anchor CLI and the anchord service. All logs are JSON on stderr: stdout
// of the CLI is reserved for the fingerprint line so callers can parse it.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: per-file discovery and hashing detail, with source location
//   - INFO: general informational messages (default)
//   - WARN/WARNING: potentially problematic situations
//   - ERROR: failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("anchor", version)
//	    slog.Info("resolving bundle", "bundle", id)
//	}
//
// Explicit level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("anchor", version, "debug")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug anchor fingerprint 2025-06-01
//
// # Output Format
//
//	{
//	    "time": "2025-06-01T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "bundle fingerprinted",
//	    "module": "anchor",
//	    "version": "v1.0.0",
//	    "bundle": "2025-06-01",
//	    "files": 3
//	}
package logging
