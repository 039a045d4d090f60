// Package services defines the shared error taxonomy and context helpers used
// by the review engine packages and the hosting layer around them.
//
// Key responsibilities:
//   - Structured error markers (validation, not found, conflict) plus the Wrap
//     helper so callers can classify failures with errors.Is and KindOf.
//   - Context helpers that stamp video, comment, session, and correlation
//     identifiers for logging.
//
// Use these helpers when wiring new operations so error classification and
// observability stay uniform between the CLI, the daemon, and tests.
package services
