// Package live implements the hierarchical actor core for server-maintained
// UI sessions.
//
// Each connected client owns a Session actor; a session owns mounted View
// actors (keyed by generated id, insertion-ordered); a view owns Component
// actors (keyed by caller-supplied id, insertion-ordered). Every actor is one
// goroutine draining one bounded mailbox, so an actor's state is touched only
// by the goroutine that owns it. All cross-actor communication is
// request/response over the mailbox: callers enqueue a message carrying a
// single-use reply channel and await exactly one reply within a bound.
//
// A Supervisor creates and retrieves sessions by key, expires idle sessions,
// health-checks unresponsive ones, and shuts everything down on demand.
//
// Calls into the embedding application layer go through a Bridge, which
// serializes entry (the embedding layer may hold one global execution lock)
// and performs the authoritative state sync after each invocation.
package live
