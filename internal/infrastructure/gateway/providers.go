package gateway

import (
	"log/slog"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// Options selects the providers NewProviderRouter registers.
type Options struct {
	StubEnabled       bool
	StubDeclineRefs   []string
	RazorpayKeyID     string
	RazorpayKeySecret string
}

// NewProviderRouter builds the production router. Merchant-of-record
// profiles go to Razorpay when keys are set. The stub only serves the
// remaining capabilities when explicitly enabled; a capability with no
// provider is left unregistered so its charges fail.
func NewProviderRouter(opts Options, logger *slog.Logger) *Router {
	router := NewRouter()
	if opts.RazorpayKeyID != "" {
		router.Register(valueobject.GatewayMerchantOfRecord,
			NewRazorpayGateway(NewRazorpaySDK(opts.RazorpayKeyID, opts.RazorpayKeySecret)))
	}
	if !opts.StubEnabled {
		if opts.RazorpayKeyID == "" {
			logger.Warn("no payment provider configured, all charges will fail")
		}
		return router
	}

	logger.Warn("stub payment provider enabled, charges are not sent to a real gateway")
	stub := NewStubGateway(0, opts.StubDeclineRefs...)
	router.Register(valueobject.GatewayTokenizedProfile, stub).
		Register(valueobject.GatewaySOAPToken, stub).
		Register(valueobject.GatewayHostedSDK, stub)
	if opts.RazorpayKeyID == "" {
		router.Register(valueobject.GatewayMerchantOfRecord, stub)
	}
	return router
}
