package payments

import (
	"context"
	"strings"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentGateway is the subset of the Stripe adapter the proxy endpoints use.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error)
	RetrieveIntent(ctx context.Context, intentID string) (domain.PaymentIntent, error)
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	ListPaymentMethods(ctx context.Context, customerID string) ([]domain.PaymentMethod, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (domain.PaymentMethod, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}

type CartReader interface {
	GetCart(ctx context.Context, userID uuid.UUID) (domain.CartSummary, error)
}

type CouponQuoter interface {
	Quote(ctx context.Context, code string, subtotal decimal.Decimal) (domain.CouponQuote, error)
}

type PaymentsService struct {
	gateway  PaymentGateway
	userRepo UserRepository
	carts    CartReader
	coupons  CouponQuoter
	currency string
}

func NewPaymentsService(gateway PaymentGateway, userRepo UserRepository, carts CartReader, coupons CouponQuoter, currency string) *PaymentsService {
	return &PaymentsService{
		gateway:  gateway,
		userRepo: userRepo,
		carts:    carts,
		coupons:  coupons,
		currency: currency,
	}
}

// CreatePaymentIntent opens an unconfirmed intent for the current cart total,
// discounted by couponCode when one is given.
func (s *PaymentsService) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, couponCode string) (domain.PaymentIntent, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return domain.PaymentIntent{}, err
	}
	if len(cart.Items) == 0 {
		return domain.PaymentIntent{}, domain.NewEmptyCartError()
	}

	total := cart.Subtotal
	if code := strings.TrimSpace(couponCode); code != "" {
		quote, err := s.coupons.Quote(ctx, code, cart.Subtotal)
		if err != nil {
			return domain.PaymentIntent{}, err
		}
		total = quote.Total
	}

	if !total.IsPositive() {
		return domain.PaymentIntent{}, domain.NewValidationError("nothing to pay for this cart", map[string]any{"total": total.StringFixed(2)})
	}

	customerID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return domain.PaymentIntent{}, err
	}

	intent, err := s.gateway.CreateIntent(ctx, domain.PaymentRequest{
		Amount:     total,
		Currency:   s.currency,
		CustomerID: customerID,
		Metadata:   map[string]string{"user_id": userID.String()},
	})
	if err != nil {
		logger.Warn("Failed to create payment intent", err, "user_id", userID)
		return domain.PaymentIntent{}, domain.NewPaymentFailedError(err.Error(), err)
	}

	return intent, nil
}

// ConfirmPayment reports the state of an intent the user created. Intents of
// other users are NotFound.
func (s *PaymentsService) ConfirmPayment(ctx context.Context, userID uuid.UUID, intentID string) (domain.PaymentIntent, error) {
	if strings.TrimSpace(intentID) == "" {
		return domain.PaymentIntent{}, domain.NewValidationError("payment intent id is required", map[string]any{"payment_intent_id": "required"})
	}

	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return domain.PaymentIntent{}, gatewayError(err, "payment intent")
	}

	if intent.Metadata["user_id"] != userID.String() {
		return domain.PaymentIntent{}, domain.NewNotFoundError("payment intent")
	}

	return intent, nil
}

func (s *PaymentsService) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error) {
	customerID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	methods, err := s.gateway.ListPaymentMethods(ctx, customerID)
	if err != nil {
		return nil, gatewayError(err, "customer")
	}

	return methods, nil
}

func (s *PaymentsService) AddPaymentMethod(ctx context.Context, userID uuid.UUID, paymentMethodID string) (domain.PaymentMethod, error) {
	if strings.TrimSpace(paymentMethodID) == "" {
		return domain.PaymentMethod{}, domain.NewValidationError("payment method id is required", map[string]any{"payment_method_id": "required"})
	}

	customerID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return domain.PaymentMethod{}, err
	}

	method, err := s.gateway.AttachPaymentMethod(ctx, customerID, paymentMethodID)
	if err != nil {
		return domain.PaymentMethod{}, gatewayError(err, "payment method")
	}

	return method, nil
}

// RemovePaymentMethod detaches a card, but only one attached to the user's
// own customer.
func (s *PaymentsService) RemovePaymentMethod(ctx context.Context, userID uuid.UUID, paymentMethodID string) error {
	methods, err := s.ListPaymentMethods(ctx, userID)
	if err != nil {
		return err
	}

	owned := false
	for _, m := range methods {
		if m.ID == paymentMethodID {
			owned = true
			break
		}
	}
	if !owned {
		return domain.NewNotFoundError("payment method")
	}

	if err := s.gateway.DetachPaymentMethod(ctx, paymentMethodID); err != nil {
		return gatewayError(err, "payment method")
	}

	return nil
}

// ensureCustomer returns the user's Stripe customer, creating and storing it
// on first use.
func (s *PaymentsService) ensureCustomer(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, user.Email, user.FullName)
	if err != nil {
		return "", domain.NewPaymentFailedError("could not create payment customer", err)
	}

	if err := s.userRepo.SetStripeCustomerID(ctx, userID, customerID); err != nil {
		return "", errors.Wrap(err, "store stripe customer")
	}

	logger.Info("Created payment customer", "user_id", userID)
	return customerID, nil
}

type notFounder interface {
	NotFound() bool
}

func gatewayError(err error, resource string) error {
	var nf notFounder
	if errors.As(err, &nf) && nf.NotFound() {
		return domain.NewNotFoundError(resource)
	}
	return domain.NewPaymentFailedError(err.Error(), err)
}
