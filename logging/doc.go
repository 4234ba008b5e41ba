// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer ChatLogger with contextual
// helpers (thread, component) and domain specific helpers for model calls,
// chat turns and summarization.
package logging
