// Package scenario manages the gateway's scenario collection: named,
// ordered action lists persisted in SQLite and executed by the current
// hub on request.
package scenario
