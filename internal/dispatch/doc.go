// Package dispatch picks an indentation strategy for a language and runs the
// fallback cascade: structured formatter, then rule-based indenter, then the
// bracket indenter, which always succeeds.
//
// Dispatch never fails. A strategy that errors or panics is skipped and the
// result is marked degraded with a reason the caller can show to the user.
package dispatch
