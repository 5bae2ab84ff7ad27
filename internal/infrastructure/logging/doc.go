// Package logging provides structured logging for Gray Logic Sensing.
//
// This package wraps Go's standard log/slog package so the processor,
// inputs, handlers and listeners all log with the same fields.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Component("processor").Info("inputs started", "count", 2)
//
// Never log broker passwords or InfluxDB tokens.
package logging
