// HomeDeck gateway.
//
// HomeDeck sits between home dashboards and an automation hub: it keeps
// a registry of hubs, mirrors the current hub's device list, dispatches
// device commands and scenarios, polls hub health, and keeps the
// dashboard serviceable from cache when the hub is unreachable.
package main

import "github.com/homedeck/homedeck/internal/cli"

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	cli.Execute()
}
