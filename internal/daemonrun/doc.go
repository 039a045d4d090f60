// Package daemonrun wires configuration, logging, the review store and the
// HTTP daemon into one process lifecycle for reelreviewd.
package daemonrun
