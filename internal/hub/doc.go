// Package hub manages the set of registered automation hubs.
//
// A Registry tracks every hub the gateway knows about and which one is
// current. The local hub (id "local") is seeded on first start, always
// exists, and cannot be removed. New hubs are admitted only after a
// successful health probe, so a failed connection attempt never leaves
// partial state behind.
package hub
