// Package logging provides concrete implementations of the pgetl.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: plain lines on stderr, verbose lines gated by a flag
//   - ZapLogger: structured JSON records through go.uber.org/zap
//   - NullLogger: discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
