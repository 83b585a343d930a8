package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
)

// RazorpayAPI is the slice of the Razorpay SDK the adapter uses. It enables
// testing with mock implementations.
type RazorpayAPI interface {
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	CreateRecurringPayment(data map[string]interface{}) (map[string]interface{}, error)
}

type razorpaySDK struct {
	client *razorpay.Client
}

// NewRazorpaySDK wraps a Razorpay client for the given API key pair.
func NewRazorpaySDK(keyID, keySecret string) RazorpayAPI {
	return razorpaySDK{client: razorpay.NewClient(keyID, keySecret)}
}

func (s razorpaySDK) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return s.client.Order.Create(data, nil)
}

func (s razorpaySDK) CreateRecurringPayment(data map[string]interface{}) (map[string]interface{}, error) {
	return s.client.Payment.CreateRecurringPayment(data, nil)
}

// RazorpayGateway charges merchant-of-record profiles through Razorpay
// recurring payments. The profile reference is "customer_id:token_id".
type RazorpayGateway struct {
	api RazorpayAPI
}

func NewRazorpayGateway(api RazorpayAPI) *RazorpayGateway {
	return &RazorpayGateway{api: api}
}

// Charge creates an order and debits the stored token against it. The SDK
// does not take a context, so the call runs on its own goroutine and ctx
// only bounds how long we wait for it.
func (g *RazorpayGateway) Charge(ctx context.Context, req port.ChargeRequest) (port.ChargeResult, error) {
	customerID, tokenID, ok := strings.Cut(req.ProfileRef, ":")
	if !ok || customerID == "" || tokenID == "" {
		return port.ChargeResult{}, fmt.Errorf("razorpay profile reference %q is not customer_id:token_id", req.ProfileRef)
	}

	type outcome struct {
		result port.ChargeResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := g.charge(customerID, tokenID, req)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return port.ChargeResult{}, ctx.Err()
	case o := <-done:
		return o.result, o.err
	}
}

func (g *RazorpayGateway) charge(customerID, tokenID string, req port.ChargeRequest) (port.ChargeResult, error) {
	notes := make(map[string]interface{}, len(req.Metadata))
	for k, v := range req.Metadata {
		notes[k] = v
	}

	receipt := req.Metadata["scheduled_payment_id"]
	if receipt == "" {
		receipt = req.Metadata["consumer_id"]
	}
	order, err := g.api.CreateOrder(map[string]interface{}{
		"amount":          req.AmountMinor,
		"currency":        req.Currency,
		"receipt":         receipt,
		"payment_capture": 1,
		"notes":           notes,
	})
	if err != nil {
		return port.ChargeResult{}, fmt.Errorf("create razorpay order: %w", err)
	}
	orderID, _ := order["id"].(string)
	if orderID == "" {
		return port.ChargeResult{}, errors.New("razorpay order response has no id")
	}

	data := map[string]interface{}{
		"amount":      req.AmountMinor,
		"currency":    req.Currency,
		"order_id":    orderID,
		"customer_id": customerID,
		"token":       tokenID,
		"recurring":   "1",
		"notes":       notes,
	}
	for _, key := range []string{"email", "contact"} {
		if v := req.Metadata[key]; v != "" {
			data[key] = v
		}
	}
	payment, err := g.api.CreateRecurringPayment(data)
	raw, _ := json.Marshal(payment)
	if err != nil {
		// The API rejected the debit itself: record it as a decline.
		return port.ChargeResult{Success: false, RawResponse: raw, FailureReason: err.Error()}, nil
	}

	paymentID, _ := payment["razorpay_payment_id"].(string)
	if paymentID == "" {
		reason, _ := payment["error_description"].(string)
		if reason == "" {
			reason = "razorpay returned no payment id"
		}
		return port.ChargeResult{Success: false, RawResponse: raw, FailureReason: reason}, nil
	}
	return port.ChargeResult{Success: true, GatewayTransactionID: paymentID, RawResponse: raw}, nil
}
