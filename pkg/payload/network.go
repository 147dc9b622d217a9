package payload

import (
	"fmt"

	"github.com/netops-tools/sasectl/pkg/csvrow"
)

// LicenseAggregate is the only license type the tools provision.
const LicenseAggregate = "FWAAS-AGGREGATE"

// subnetSlots is the number of network_subnets_N columns.
const subnetSlots = 4

// RemoteNetwork is a branch site attached to the service over IPSec.
type RemoteNetwork struct {
	Name                 string      `json:"name"`
	IPSecTunnel          string      `json:"ipsec_tunnel"`
	SecondaryWANEnabled  bool        `json:"secondary_wan_enabled"`
	LicenseType          string      `json:"license_type"`
	Region               string      `json:"region"`
	SPNName              string      `json:"spn_name"`
	Subnets              []string    `json:"subnets,omitempty"`
	SecondaryIPSecTunnel string      `json:"secondary_ipsec_tunnel,omitempty"`
	Protocol             *RNProtocol `json:"protocol,omitempty"`
	BGPPeer              *BGPPeer    `json:"bgp_peer,omitempty"`
	QoS                  *QoS        `json:"qos,omitempty"`
}

// ObjectName returns the idempotency key.
func (rn *RemoteNetwork) ObjectName() string { return rn.Name }

// RNProtocol holds the routing protocol settings of a remote network.
type RNProtocol struct {
	BGP *BGP `json:"bgp,omitempty"`
}

// BGP is the primary BGP session of a remote network.
type BGP struct {
	Enable                    bool   `json:"enable"`
	PeerAS                    string `json:"peer_as"`
	PeerIPAddress             string `json:"peer_ip_address"`
	LocalIPAddress            string `json:"local_ip_address"`
	Secret                    string `json:"secret"`
	SummarizeMobileUserRoutes bool   `json:"summarize_mobile_user_routes,omitempty"`
	OriginateDefaultRoute     bool   `json:"originate_default_route,omitempty"`
	DoNotExportRoutes         bool   `json:"do_not_export_routes,omitempty"`
}

// BGPPeer is the secondary BGP peer; it shares the primary's AS.
type BGPPeer struct {
	SameAsPrimary  bool   `json:"same_as_primary"`
	PeerIPAddress  string `json:"peer_ip_address"`
	LocalIPAddress string `json:"local_ip_address"`
	Secret         string `json:"secret"`
}

// QoS binds a QoS profile to the remote network.
type QoS struct {
	QoSProfile string `json:"qos_profile"`
	Enable     bool   `json:"enable"`
}

// BuildRemoteNetwork maps one row onto a remote network.
//
// Subnet slots 2-4 are only read when slot 1 is filled; see OrphanedSubnets.
func BuildRemoteNetwork(row csvrow.Row) (*RemoteNetwork, error) {
	rn := &RemoteNetwork{
		Name:        row.Get("network_name"),
		IPSecTunnel: row.Get("tunnel_1_name"),
		LicenseType: LicenseAggregate,
		Region:      row.Get("network_region"),
		SPNName:     row.Get("ipsec_termination_node"),
	}

	if row.Has("network_subnets_1") {
		for i := 1; i <= subnetSlots; i++ {
			if s := row.Get(subnetColumn(i)); s != "" {
				rn.Subnets = append(rn.Subnets, s)
			}
		}
	}

	if row.Has("tunnel_2_name") {
		rn.SecondaryIPSecTunnel = row.Get("tunnel_2_name")
		rn.SecondaryWANEnabled = true
	}

	if row.Has("bgp_local_address_1") {
		rn.Protocol = &RNProtocol{BGP: &BGP{
			Enable:                    true,
			PeerAS:                    row.Get("bgp_peer_as_1"),
			PeerIPAddress:             row.Get("bgp_peer_address_1"),
			LocalIPAddress:            row.Get("bgp_local_address_1"),
			Secret:                    row.Get("bgp_secret_1"),
			SummarizeMobileUserRoutes: row.IsTrue("bgp_summarize_mobile_user_routes"),
			OriginateDefaultRoute:     row.IsTrue("bgp_originate_default_route"),
			DoNotExportRoutes:         row.IsTrue("bgp_do_not_export_routes"),
		}}

		if row.Has("bgp_local_address_2") {
			rn.BGPPeer = &BGPPeer{
				SameAsPrimary:  true,
				PeerIPAddress:  row.Get("bgp_peer_address_2"),
				LocalIPAddress: row.Get("bgp_local_address_2"),
				Secret:         row.Get("bgp_secret_2"),
			}
		}
	}

	if row.Has("network_qos_profile") {
		rn.QoS = &QoS{QoSProfile: row.Get("network_qos_profile"), Enable: true}
	}

	return rn, nil
}

// OrphanedSubnets returns the subnets in slots 2-4 that BuildRemoteNetwork
// ignores because slot 1 is empty. It returns nil when nothing is dropped.
func OrphanedSubnets(row csvrow.Row) []string {
	if row.Has(subnetColumn(1)) {
		return nil
	}
	var dropped []string
	for i := 2; i <= subnetSlots; i++ {
		if s := row.Get(subnetColumn(i)); s != "" {
			dropped = append(dropped, s)
		}
	}
	return dropped
}

func subnetColumn(slot int) string {
	return fmt.Sprintf("network_subnets_%d", slot)
}
