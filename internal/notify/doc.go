// Package notify is the in-memory notification centre: transient
// user-facing messages with severities, a TTL, and subscriber fan-out
// for push delivery.
package notify
