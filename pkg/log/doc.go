/*
Package log provides structured logging for the SkyTask console using zerolog.

The log package wraps zerolog with a global logger, configurable levels and
component-scoped child loggers. Until Init is called the global Logger discards
everything, so library packages can log freely in tests.

# Core Components

Global Logger:
  - Zerolog instance, initialized via log.Init()
  - Defaults to stderr so command output on stdout stays parseable

Context Loggers:
  - WithComponent("session")
  - WithResource("tasks") for list controllers
  - WithRequestID(id) for gateway calls

# Usage

Initializing the Logger:

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})

Component Loggers:

	logger := log.WithComponent("session")
	logger.Info().Str("environment", "prod").Msg("Environment changed")

# Log Levels

  - debug: persistence writes, every gateway call, list loads
  - info: login, logout, environment changes
  - warn: refresh failures, persist failures, permission denials
  - error: unrecoverable command failures
*/
package log
