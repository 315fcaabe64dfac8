package domain

import "github.com/shopspring/decimal"

const (
	PaymentIntentSucceeded             = "succeeded"
	PaymentIntentRequiresPaymentMethod = "requires_payment_method"
	PaymentIntentRequiresAction        = "requires_action"
	PaymentIntentCanceled              = "canceled"
)

type (
	PaymentRequest struct {
		Amount          decimal.Decimal
		Currency        string
		PaymentMethodID string
		CustomerID      string
		Description     string
		IdempotencyKey  string
		Metadata        map[string]string
		Confirm         bool
	}

	PaymentIntent struct {
		ID              string            `json:"id"`
		Status          string            `json:"status"`
		Amount          decimal.Decimal   `json:"amount"`
		Currency        string            `json:"currency"`
		ClientSecret    string            `json:"client_secret,omitempty"`
		CustomerID      string            `json:"customer_id,omitempty"`
		PaymentMethodID string            `json:"payment_method_id,omitempty"`
		Metadata        map[string]string `json:"metadata,omitempty"`
	}

	PaymentMethod struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Brand    string `json:"brand,omitempty"`
		Last4    string `json:"last4,omitempty"`
		ExpMonth int    `json:"exp_month,omitempty"`
		ExpYear  int    `json:"exp_year,omitempty"`
	}
)

func (p PaymentIntent) Succeeded() bool {
	return p.Status == PaymentIntentSucceeded
}
