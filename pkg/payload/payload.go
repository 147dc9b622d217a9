// Package payload builds SASE configuration objects from CSV rows.
//
// Each builder maps one csvrow.Row onto one typed object whose JSON encoding
// is the request body for the matching /config/v1 collection. Builders do no
// I/O; the only failure mode is a numeric cell that does not parse.
//
// Cell conventions shared by all builders:
//
//   - a non-empty cell enables its field or sub-object
//   - a flag cell is "on" only when it reads "true" (any case)
//   - enumerated tags are matched case-insensitively; unknown tags emit nothing
package payload

import (
	"strconv"
	"strings"

	"github.com/netops-tools/sasectl/pkg/csvrow"
	"github.com/netops-tools/sasectl/pkg/util"
)

// Object kinds, used for progress output and audit records.
const (
	KindRemoteNetwork = "Network"
	KindIKEGateway    = "Gateway"
	KindIPSecTunnel   = "Tunnel"
)

// GatewayPrefix is prepended to a tunnel name to derive its IKE gateway name.
const GatewayPrefix = "gw-"

// Toggle is the {"enable": bool} shape the API uses for on/off features.
type Toggle struct {
	Enable bool `json:"enable"`
}

// GatewayName returns the IKE gateway name paired with tunnelName.
func GatewayName(tunnelName string) string {
	return GatewayPrefix + tunnelName
}

// intCell converts a numeric cell, tolerating surrounding whitespace.
func intCell(row csvrow.Row, column string) (int, error) {
	raw := row.Get(column)
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, util.NewFieldError(column, raw, "is not an integer")
	}
	return n, nil
}

func strPtr(s string) *string { return &s }
