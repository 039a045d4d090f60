// Package config loads, normalizes, and validates reelreview configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the REELREVIEW_DATA_DIR
// environment override. The Config type centralizes every knob the daemon and
// CLI need: where the review database and logs live, the API bind address,
// review quorum defaults, and the drawing and comment tuning the engine uses.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
