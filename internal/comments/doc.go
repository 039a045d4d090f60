// Package comments owns the video comment entity and the read and write
// operations over a flat comment collection.
//
// Storage stays flat: a collection is a []Comment keyed by ID, and replies
// point at their root through ParentID. Threads are derived at read time by
// BuildThreads and are never persisted. Threads are exactly two levels deep;
// a reply cannot itself be replied to.
//
// Every function here treats its inputs as immutable snapshots. Mutation
// intents (Add, Reply, Edit, Resolve, Reopen, React, Delete) return a new
// collection plus the affected comment so the hosting layer can persist the
// change and apply its own write-serialization policy.
//
// The annotation payload is a sealed union: Comment.Type is the discriminant
// and Comment.Annotation holds the matching variant. Validate rejects any
// mismatch.
package comments
