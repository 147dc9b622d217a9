package payload

import (
	"github.com/netops-tools/sasectl/pkg/csvrow"
)

// Identity tags accepted for gateway_peer_id_type and gateway_local_id_type.
var identityTypes = map[string]bool{
	"ipaddr": true,
	"keyid":  true,
	"fqdn":   true,
	"ufqdn":  true,
}

// IKEGateway holds the IKE negotiation parameters of one tunnel.
type IKEGateway struct {
	Name              string          `json:"name"`
	AuthenticationKey string          `json:"authentication_key"`
	PeerID            *Identity       `json:"peer_id,omitempty"`
	LocalID           *Identity       `json:"local_id,omitempty"`
	Protocol          GatewayProtocol `json:"protocol"`
	ProtocolCommon    ProtocolCommon  `json:"protocol_common"`
	PeerAddress       *PeerAddress    `json:"peer_address,omitempty"`
}

// ObjectName returns the idempotency key.
func (gw *IKEGateway) ObjectName() string { return gw.Name }

// Identity is an IKE ID of one of the types in identityTypes.
type Identity struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// GatewayProtocol carries per-IKE-version settings.
type GatewayProtocol struct {
	IKEv1 IKEVersion `json:"ikev1"`
	IKEv2 IKEVersion `json:"ikev2"`
}

// IKEVersion is the crypto profile and dead-peer detection for one version.
type IKEVersion struct {
	IKECryptoProfile string  `json:"ike_crypto_profile"`
	DPD              *Toggle `json:"dpd,omitempty"`
}

// ProtocolCommon holds settings shared by both IKE versions.
type ProtocolCommon struct {
	NATTraversal  Toggle `json:"nat_traversal"`
	Fragmentation Toggle `json:"fragmentation"`
	PassiveMode   bool   `json:"passive_mode"`
}

// PeerAddress is exactly one of a static IP, an FQDN, or a dynamic peer.
type PeerAddress struct {
	IP      *string   `json:"ip,omitempty"`
	FQDN    *string   `json:"fqdn,omitempty"`
	Dynamic *struct{} `json:"dynamic,omitempty"`
}

// BuildIKEGateway maps one row onto the IKE gateway for its tunnel.
func BuildIKEGateway(row csvrow.Row) (*IKEGateway, error) {
	gw := &IKEGateway{
		Name:              GatewayName(row.Get("tunnel_name")),
		AuthenticationKey: row.Get("gateway_shared_key"),
		PeerID:            identity(row, "gateway_peer_id_type", "gateway_peer_id_value"),
		LocalID:           identity(row, "gateway_local_id_type", "gateway_local_id_value"),
		Protocol: GatewayProtocol{
			IKEv1: IKEVersion{
				IKECryptoProfile: row.Get("gateway_ikev1_profile"),
				DPD:              dpd(row, "gateway_ikev1_dpd"),
			},
			IKEv2: IKEVersion{
				IKECryptoProfile: row.Get("gateway_ikev2_profile"),
				DPD:              dpd(row, "gateway_ikev2_dpd"),
			},
		},
		ProtocolCommon: ProtocolCommon{
			NATTraversal:  Toggle{Enable: !row.IsFalse("gateway_nat_traversal")},
			Fragmentation: Toggle{Enable: row.IsTrue("gateway_fragmentation")},
			PassiveMode:   row.IsTrue("gateway_passive_mode"),
		},
	}

	switch row.Lower("gateway_peer_address_type") {
	case "ip":
		gw.PeerAddress = &PeerAddress{IP: strPtr(row.Get("gateway_peer_address"))}
	case "fqdn":
		gw.PeerAddress = &PeerAddress{FQDN: strPtr(row.Get("gateway_peer_address"))}
	case "dynamic":
		gw.PeerAddress = &PeerAddress{Dynamic: &struct{}{}}
	}

	return gw, nil
}

func identity(row csvrow.Row, typeColumn, valueColumn string) *Identity {
	tag := row.Lower(typeColumn)
	if !identityTypes[tag] {
		return nil
	}
	return &Identity{Type: tag, ID: row.Get(valueColumn)}
}

// dpd is tri-state: "true" and "false" are sent explicitly, anything else
// leaves the API default in place.
func dpd(row csvrow.Row, column string) *Toggle {
	switch {
	case row.IsTrue(column):
		return &Toggle{Enable: true}
	case row.IsFalse(column):
		return &Toggle{Enable: false}
	}
	return nil
}
