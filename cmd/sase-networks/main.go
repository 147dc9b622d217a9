// sase-networks creates, updates or deletes remote networks from a CSV file.
//
// Usage:
//
//	sase-networks <file.csv>             Create or update one remote network per row
//	sase-networks <file.csv> --delete    Delete the remote network named on each row
//
// Rows the API rejects are reported and skipped; the command exits 1 if any
// row failed.
package main

import (
	"github.com/netops-tools/sasectl/internal/runner"
	"github.com/netops-tools/sasectl/pkg/provision"
)

func main() {
	runner.Main(runner.NewCommand(
		"sase-networks",
		"Provision SASE remote networks from CSV",
		`Each row of the CSV file describes one remote network, keyed by the
network_name column. Existing networks are updated in place, missing ones
are created. With --delete, each named network is removed if present.

The API token is read from API_TOKEN, or prompted for on a terminal.`,
		provision.RunNetworks,
	))
}
