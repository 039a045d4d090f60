// Command reelreview is the command-line front end for the review engine.
//
// It operates directly on the local review database: registering videos,
// converting timecodes, processing drawing paths, managing comment threads
// and driving review sessions through their approval workflow. Every command
// accepts --json for machine-readable output.
package main
