// Package logging provides structured logging built on log/slog.
//
// The Logger wraps slog.Logger with service-wide default fields and
// configuration-driven format and level selection. Components derive
// their own loggers via With:
//
//	logger := logging.New(cfg.Logging, version)
//	deviceLogger := logger.With("component", "device")
package logging
