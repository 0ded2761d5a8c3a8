// Package command dispatches device commands to the current hub and
// translates the outcome into notifications and directory refreshes.
package command
