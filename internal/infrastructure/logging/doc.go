// Package logging provides structured logging for the bridge.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same handler, level filter and default fields.
//
// # Features
//
//   - Text output by default, JSON when configured
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Writes to stderr unless told otherwise, leaving stdout to the
//     status line and OSC trace
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stderr"   # stderr, stdout
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("sending OSC", "target", s.Target())
//	logger.Error("broker unreachable", "error", err)
package logging
