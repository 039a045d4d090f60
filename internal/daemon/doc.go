// Package daemon hosts the long-running reelreview HTTP API.
//
// A Daemon owns the review store, the api.Service facade and the Prometheus
// collectors, and serves them through a chi router. A flock-based lock on
// the data directory keeps a single daemon per database. Public sessions
// with a password are gated by the X-Review-Password header on every
// session route; a video's session list shows them locked, without
// participants or progress, unless the header unlocks them.
//
// Keep request decoding, routing and status mapping here; domain rules
// belong to the engine packages and persistence to the store.
package daemon
