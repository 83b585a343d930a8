package valueobject

import "fmt"

// GatewayCapability identifies which kind of payment provider backs a
// stored payment profile.
type GatewayCapability struct {
	value string
}

const (
	gatewayTokenizedProfile = "TOKENIZED_PROFILE"
	gatewaySOAPToken        = "SOAP_TOKEN"
	gatewayHostedSDK        = "HOSTED_SDK"
	gatewayMerchantOfRecord = "MERCHANT_OF_RECORD"
)

var (
	GatewayTokenizedProfile = GatewayCapability{value: gatewayTokenizedProfile}
	GatewaySOAPToken        = GatewayCapability{value: gatewaySOAPToken}
	GatewayHostedSDK        = GatewayCapability{value: gatewayHostedSDK}
	GatewayMerchantOfRecord = GatewayCapability{value: gatewayMerchantOfRecord}
)

var validGatewayCapabilities = map[string]GatewayCapability{
	gatewayTokenizedProfile: GatewayTokenizedProfile,
	gatewaySOAPToken:        GatewaySOAPToken,
	gatewayHostedSDK:        GatewayHostedSDK,
	gatewayMerchantOfRecord: GatewayMerchantOfRecord,
}

// NewGatewayCapability creates a GatewayCapability from a raw string.
func NewGatewayCapability(s string) (GatewayCapability, error) {
	v, ok := validGatewayCapabilities[s]
	if !ok {
		return GatewayCapability{}, fmt.Errorf("invalid gateway capability: %q", s)
	}
	return v, nil
}

// AllGatewayCapabilities lists every known capability.
func AllGatewayCapabilities() []GatewayCapability {
	return []GatewayCapability{GatewayTokenizedProfile, GatewaySOAPToken, GatewayHostedSDK, GatewayMerchantOfRecord}
}

func (g GatewayCapability) String() string                     { return g.value }
func (g GatewayCapability) IsZero() bool                       { return g.value == "" }
func (g GatewayCapability) Equal(other GatewayCapability) bool { return g.value == other.value }
