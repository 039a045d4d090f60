// Package api defines wire-format types, converters and the Service facade
// shared by the HTTP daemon and the CLI.
//
// # Key Types
//
// Video, Comment, Session and Participant are transport representations of
// the engine models. CommentList bundles a comment query with its summary and
// timeline markers.
//
// Request types (CreateCommentRequest, DecisionRequest, ...) carry
// go-playground/validator tags; the Service rejects invalid requests with
// services.ErrValidation before any engine call.
//
// # Service
//
// Service translates each mutation into a load, engine, persist cycle over a
// Repository. Mutations are serialized inside one process; across processes
// the store resolves last-writer-wins per row.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Enums are exposed as lowercase strings and
// priorities by label. Timestamps use RFC3339 with milliseconds. Session
// passwords are never serialized.
package api
