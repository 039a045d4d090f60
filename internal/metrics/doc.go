// Package metrics exposes Prometheus collectors for the review service.
//
// Each Metrics value owns its registry so tests and multiple daemons in one
// process never collide on the global default registry.
package metrics
