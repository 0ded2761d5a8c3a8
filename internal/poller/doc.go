// Package poller watches the current hub on a fixed cadence: system
// health, voice pipeline state, and device counts, each probed
// independently so one failure never hides the others.
package poller
