// Package video describes the read-only video asset a review references.
//
// An Asset is loaded by the player or the store and never changed by the
// engine packages. The helpers here answer range and frame questions against
// a specific asset so callers do not repeat the duration and frame rate
// plumbing.
package video
