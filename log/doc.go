// Package log provides the leveled, printf-style logging interface shared by
// the agent graphs, the capability adapters, the report stores and the HTTP
// server.
//
// # Log Levels
//
// Five levels are supported, in order of increasing severity:
//
//   - LogLevelDebug: node-by-node tracing of a run
//   - LogLevelInfo: routing decisions and run summaries
//   - LogLevelWarn: capability failures that were recovered locally
//   - LogLevelError: failures that aborted a run or a request
//   - LogLevelNone: disables all output
//
// # Implementations
//
// DefaultLogger writes through the standard library log package with a
// "[chat-agents] " prefix. GologLogger adapts github.com/kataras/golog and is
// what the server binary installs. NoOpLogger discards everything and is
// convenient in tests.
//
//	logger := log.NewDefaultLogger(log.LogLevelDebug)
//	logger.Info("route decided: %s", route)
//
// # Package-level Logger
//
// Components that are not handed a Logger fall back to the package-level one:
//
//	log.SetDefaultLogger(log.NewGologLoggerFor("[api] ", log.LogLevelInfo))
//	log.Info("server listening on %s", addr)
package log
