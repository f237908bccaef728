// Package logx configures ffbot's structured logging.
//
// Logger is a small value type on top of zerolog:
//   - console output is readable (short timestamp, short caller)
//   - file output is JSON
//   - the level and sinks can be swapped at runtime with Service.Apply
package logx
