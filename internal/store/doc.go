// Package store persists videos, comments and review sessions in SQLite.
//
// The Store owns the database connection, schema initialization and the
// busy-retry plumbing every write goes through. Comments are kept as a flat
// collection per video; threading, filtering and sorting happen in the
// comments package on the loaded snapshot. Review sessions are saved together
// with their participants in one transaction so a reader never observes a
// half-applied decision.
//
// Concurrent writers resolve last-writer-wins per row. Schema changes bump the
// version in schema.go; users delete the database to adopt the new schema.
package store
