// sase-tunnels creates, updates or deletes IKE gateway and IPSec tunnel
// pairs from a CSV file.
//
// Usage:
//
//	sase-tunnels <file.csv>             Create or update a gateway and tunnel per row
//	sase-tunnels <file.csv> --delete    Delete the tunnel, then its gateway, per row
//
// The first failure stops the run.
package main

import (
	"github.com/netops-tools/sasectl/internal/runner"
	"github.com/netops-tools/sasectl/pkg/provision"
)

func main() {
	runner.Main(runner.NewCommand(
		"sase-tunnels",
		"Provision SASE IKE gateways and IPSec tunnels from CSV",
		`Each row of the CSV file describes one IPSec tunnel, keyed by the
tunnel_name column, and the IKE gateway it terminates on, named
"gw-<tunnel_name>". The gateway is written before the tunnel that
references it; with --delete the tunnel is removed first.

The API token is read from API_TOKEN, or prompted for on a terminal.`,
		provision.RunTunnels,
	))
}
