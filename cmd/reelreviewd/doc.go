// Command reelreviewd serves the review engine over HTTP.
//
// It loads configuration, takes the per-data-directory lock and exposes the
// JSON API and Prometheus metrics on paths.api_bind until it receives SIGINT
// or SIGTERM.
package main
