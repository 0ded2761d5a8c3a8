// Package directory caches the device list of the current hub and
// projects device capabilities onto dashboard controls.
//
// The cache is deliberately pessimistic: when a refresh fails for any
// reason, the directory empties instead of serving a stale list.
package directory
