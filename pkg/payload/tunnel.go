package payload

import (
	"fmt"

	"github.com/netops-tools/sasectl/pkg/csvrow"
)

// proxyIDSlots is the number of tunnel_proxy_id_N column groups.
const proxyIDSlots = 4

// IPSecTunnel is the data-plane tunnel bound to one IKE gateway.
type IPSecTunnel struct {
	Name                   string         `json:"name"`
	AutoKey                AutoKey        `json:"auto_key"`
	AntiReplay             bool           `json:"anti_replay,omitempty"`
	CopyTOS                bool           `json:"copy_tos,omitempty"`
	EnableGREEncapsulation bool           `json:"enable_gre_encapsulation,omitempty"`
	TunnelMonitor          *TunnelMonitor `json:"tunnel_monitor,omitempty"`
}

// ObjectName returns the idempotency key.
func (t *IPSecTunnel) ObjectName() string { return t.Name }

// AutoKey is the IKE-negotiated keying section of a tunnel.
type AutoKey struct {
	IKEGateway         []GatewayRef `json:"ike_gateway"`
	IPSecCryptoProfile string       `json:"ipsec_crypto_profile"`
	ProxyID            []ProxyID    `json:"proxy_id"`
}

// GatewayRef references an IKE gateway by name.
type GatewayRef struct {
	Name string `json:"name"`
}

// ProxyID is a traffic selector for the tunnel.
type ProxyID struct {
	Name     string         `json:"name"`
	Local    string         `json:"local"`
	Remote   string         `json:"remote"`
	Protocol *ProxyProtocol `json:"protocol,omitempty"`
}

// ProxyProtocol narrows a proxy ID to TCP or UDP ports or to an IP protocol number.
type ProxyProtocol struct {
	TCP    *PortPair `json:"tcp,omitempty"`
	UDP    *PortPair `json:"udp,omitempty"`
	Number *int      `json:"number,omitempty"`
}

// PortPair is a local/remote port selector.
type PortPair struct {
	LocalPort  int `json:"local_port"`
	RemotePort int `json:"remote_port"`
}

// TunnelMonitor probes a destination through the tunnel.
type TunnelMonitor struct {
	Enable        bool   `json:"enable"`
	DestinationIP string `json:"destination_ip"`
	ProxyID       string `json:"proxy_id,omitempty"`
}

// BuildIPSecTunnel maps one row onto an IPSec tunnel. The tunnel references
// the gateway produced by BuildIKEGateway for the same row.
func BuildIPSecTunnel(row csvrow.Row) (*IPSecTunnel, error) {
	name := row.Get("tunnel_name")
	t := &IPSecTunnel{
		Name: name,
		AutoKey: AutoKey{
			IKEGateway:         []GatewayRef{{Name: GatewayName(name)}},
			IPSecCryptoProfile: row.Get("tunnel_ipsec_profile"),
			ProxyID:            []ProxyID{},
		},
		AntiReplay:             row.IsTrue("tunnel_anti_replay"),
		CopyTOS:                row.IsTrue("tunnel_copy_tos"),
		EnableGREEncapsulation: row.IsTrue("tunnel_gre_encapsulation"),
	}

	for i := 1; i <= proxyIDSlots; i++ {
		p, err := proxyID(row, i)
		if err != nil {
			return nil, err
		}
		if p != nil {
			t.AutoKey.ProxyID = append(t.AutoKey.ProxyID, *p)
		}
	}

	if row.Has("tunnel_monitor_ip") {
		t.TunnelMonitor = &TunnelMonitor{
			Enable:        true,
			DestinationIP: row.Get("tunnel_monitor_ip"),
			ProxyID:       row.Get("tunnel_monitor_proxy_id"),
		}
	}

	return t, nil
}

// proxyID reads slot N, returning nil when the slot has no name.
func proxyID(row csvrow.Row, slot int) (*ProxyID, error) {
	col := func(suffix string) string {
		return fmt.Sprintf("tunnel_proxy_id_%d_%s", slot, suffix)
	}
	if !row.Has(col("name")) {
		return nil, nil
	}

	p := &ProxyID{
		Name:   row.Get(col("name")),
		Local:  row.Get(col("local")),
		Remote: row.Get(col("remote")),
	}

	switch proto := row.Lower(col("protocol")); proto {
	case "tcp", "udp":
		local, err := intCell(row, col("protocol_local_port"))
		if err != nil {
			return nil, err
		}
		remote, err := intCell(row, col("protocol_remote_port"))
		if err != nil {
			return nil, err
		}
		ports := &PortPair{LocalPort: local, RemotePort: remote}
		if proto == "tcp" {
			p.Protocol = &ProxyProtocol{TCP: ports}
		} else {
			p.Protocol = &ProxyProtocol{UDP: ports}
		}
	case "number":
		n, err := intCell(row, col("protocol_number"))
		if err != nil {
			return nil, err
		}
		p.Protocol = &ProxyProtocol{Number: &n}
	}

	return p, nil
}
