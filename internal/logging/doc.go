// Package logging provides concrete implementations of the dwload.Logger interface
// and the failure banner printed when a load or run ends badly.
//
// Available implementations:
//   - ConsoleLogger: writes formatted messages to stderr (or any writer)
//   - NullLogger: discards all messages
//   - RecordingLogger: keeps messages in memory for assertions
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
