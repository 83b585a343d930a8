package gateway

import (
	"context"
	"fmt"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// Router implements port.PaymentGateway by dispatching each charge to the
// provider registered for the profile's gateway capability.
type Router struct {
	providers map[string]port.PaymentGateway
}

func NewRouter() *Router {
	return &Router{providers: make(map[string]port.PaymentGateway)}
}

// Register binds a provider to a capability, replacing any earlier one.
func (r *Router) Register(capability valueobject.GatewayCapability, provider port.PaymentGateway) *Router {
	r.providers[capability.String()] = provider
	return r
}

func (r *Router) Charge(ctx context.Context, req port.ChargeRequest) (port.ChargeResult, error) {
	provider, ok := r.providers[req.Gateway.String()]
	if !ok {
		return port.ChargeResult{}, fmt.Errorf("no payment provider for gateway %q", req.Gateway.String())
	}
	return provider.Charge(ctx, req)
}
