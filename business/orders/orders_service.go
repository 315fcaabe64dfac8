package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/logger"
	"toutaunclicla/pkg/metrics"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrdersRepository interface {
	Reserve(ctx context.Context, order *domain.Order) error
	Confirm(ctx context.Context, orderID, userID uuid.UUID, paymentIntentID string) error
	Release(ctx context.Context, order domain.Order) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (domain.Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, int64, error)
	FindAll(ctx context.Context, status domain.OrderStatus, page domain.PageRequest) ([]domain.Order, int64, error)
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Order, error)
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
}

type AddressRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (domain.Address, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

type CouponQuoter interface {
	Quote(ctx context.Context, code string, subtotal decimal.Decimal) (domain.CouponQuote, error)
}

type PaymentGateway interface {
	Authorize(ctx context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error)
	Cancel(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string) error
}

// outcomeKnower is implemented by gateway errors that can tell a settled
// rejection from a failure whose charge may still exist.
type outcomeKnower interface {
	OutcomeKnown() bool
}

type CreateOrderRequest struct {
	UserID          uuid.UUID
	AddressID       uuid.UUID
	PaymentMethodID string
	CouponCode      string
	IdempotencyKey  string
}

type OrdersService struct {
	orderRepo   OrdersRepository
	cartRepo    CartRepository
	addressRepo AddressRepository
	userRepo    UserRepository
	coupons     CouponQuoter
	payments    PaymentGateway
	currency    string
	now         func() time.Time
}

func NewOrdersService(
	orderRepo OrdersRepository,
	cartRepo CartRepository,
	addressRepo AddressRepository,
	userRepo UserRepository,
	coupons CouponQuoter,
	payments PaymentGateway,
	currency string,
) *OrdersService {
	return &OrdersService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		coupons:     coupons,
		payments:    payments,
		currency:    currency,
		now:         time.Now,
	}
}

// CreateOrder turns the user's cart into an order: stock is reserved with the
// pending order, the payment is authorized, and the order is then confirmed
// and the cart emptied. A failed payment cancels the order and returns the
// stock; a payment taken for an order that cannot be confirmed is refunded.
func (s *OrdersService) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	start := s.now()
	order, err := s.createOrder(ctx, req)

	metrics.OrderWorkflowLatency.Observe(time.Since(start).Seconds())
	metrics.OrdersTotal.WithLabelValues(outcome(err)).Inc()

	return order, err
}

func outcome(err error) string {
	switch kind := domain.KindOf(err); {
	case err == nil:
		return "completed"
	case kind == domain.KindPaymentFailed:
		return "payment_failed"
	case kind == domain.KindInternal:
		return "error"
	default:
		return "rejected"
	}
}

func (s *OrdersService) createOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	if strings.TrimSpace(req.PaymentMethodID) == "" {
		return domain.Order{}, domain.NewValidationError("payment method is required", map[string]any{"payment_method_id": "required"})
	}

	if req.IdempotencyKey != "" {
		existing, err := s.orderRepo.FindByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
		switch {
		case err == nil && existing.Status == domain.OrderPending:
			return domain.Order{}, domain.NewConflictError("order with this idempotency key is still being processed")
		case err == nil:
			return existing, nil
		case !errors.Is(err, domain.ErrNotFound):
			return domain.Order{}, err
		}
	}

	items, err := s.cartRepo.FindByUser(ctx, req.UserID)
	if err != nil {
		return domain.Order{}, errors.Wrap(err, "load cart")
	}

	if len(items) == 0 {
		return domain.Order{}, domain.NewEmptyCartError()
	}

	for _, item := range items {
		if item.Quantity > item.Product.Stock {
			return domain.Order{}, domain.NewInsufficientStockError(item.ProductID, item.Product.Name, item.Product.Stock, item.Quantity)
		}
	}

	subtotal := domain.CartSubtotal(items)
	discount := decimal.Zero
	total := subtotal

	couponCode := strings.ToUpper(strings.TrimSpace(req.CouponCode))
	if couponCode != "" {
		quote, err := s.coupons.Quote(ctx, couponCode, subtotal)
		if err != nil {
			return domain.Order{}, err
		}
		discount, total = quote.DiscountAmount, quote.Total
		couponCode = quote.Coupon.Code
	}

	if _, err := s.addressRepo.FindByIDForUser(ctx, req.UserID, req.AddressID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, domain.NewInvalidAddressError(req.AddressID)
		}
		return domain.Order{}, errors.Wrap(err, "load address")
	}

	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return domain.Order{}, errors.Wrap(err, "load user")
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	order := domain.Order{
		ID:             uuid.New(),
		UserID:         req.UserID,
		AddressID:      req.AddressID,
		Subtotal:       subtotal,
		Discount:       discount,
		Total:          total,
		Status:         domain.OrderPending,
		CouponCode:     couponCode,
		IdempotencyKey: key,
		Items:          make([]domain.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.Price,
		})
	}

	if err := s.orderRepo.Reserve(ctx, &order); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			metrics.StockConflicts.Inc()
		}
		return domain.Order{}, err
	}

	intentID, err := s.authorize(ctx, order, user, req.PaymentMethodID)
	if err != nil {
		s.compensate(ctx, order, intentID)
		return domain.Order{}, err
	}

	if err := s.orderRepo.Confirm(ctx, order.ID, order.UserID, intentID); err != nil {
		logger.Error("Failed to confirm order", err, "order_id", order.ID)
		s.compensate(ctx, order, intentID)
		if errors.Is(err, domain.ErrInvalidTransition) {
			return domain.Order{}, domain.NewConflictError("order was cancelled before its payment completed")
		}
		return domain.Order{}, domain.NewInternalError("failed to confirm order", err)
	}

	order.Status = domain.OrderCompleted
	order.PaymentIntentID = intentID

	logger.Info("Order completed", "order_id", order.ID, "user_id", order.UserID, "total", order.Total.StringFixed(2))
	return order, nil
}

// authorize charges the order total. A zero total needs no payment. On error
// the returned intent id, when set, names a captured payment that has to be
// refunded.
func (s *OrdersService) authorize(ctx context.Context, order domain.Order, user domain.User, paymentMethodID string) (string, error) {
	if !order.Total.IsPositive() {
		return "", nil
	}

	req := domain.PaymentRequest{
		Amount:          order.Total,
		Currency:        s.currency,
		PaymentMethodID: paymentMethodID,
		CustomerID:      user.StripeCustomerID,
		Description:     fmt.Sprintf("Order %s", order.ID),
		IdempotencyKey:  "order-" + order.IdempotencyKey,
		Metadata: map[string]string{
			"order_id": order.ID.String(),
			"user_id":  order.UserID.String(),
		},
	}

	intent, err := s.payments.Authorize(ctx, req)
	if err != nil {
		logger.Warn("Payment authorization failed", err, "order_id", order.ID)
		return s.settleUnknown(ctx, req, err), domain.NewPaymentFailedError(err.Error(), err)
	}

	if !intent.Succeeded() {
		if intent.ID != "" {
			if cerr := s.payments.Cancel(context.WithoutCancel(ctx), intent.ID); cerr != nil {
				logger.Warn("Failed to cancel unconfirmed payment intent", cerr, "intent_id", intent.ID)
			}
		}
		return "", domain.NewPaymentFailedError("payment status "+intent.Status, nil)
	}

	return intent.ID, nil
}

// settleUnknown resolves an authorization whose outcome is unknown, such as a
// timeout after the request reached the gateway. Replaying the request with
// the same idempotency key returns the original result without charging
// again. It returns the intent id when the payment went through.
func (s *OrdersService) settleUnknown(ctx context.Context, req domain.PaymentRequest, cause error) string {
	var known outcomeKnower
	if errors.As(cause, &known) && known.OutcomeKnown() {
		return ""
	}

	intent, err := s.payments.Authorize(context.WithoutCancel(ctx), req)
	if err != nil {
		logger.Error("Failed to settle payment with unknown outcome", err, "idempotency_key", req.IdempotencyKey)
		return ""
	}

	if intent.Succeeded() {
		return intent.ID
	}

	if intent.ID != "" {
		if cerr := s.payments.Cancel(context.WithoutCancel(ctx), intent.ID); cerr != nil {
			logger.Warn("Failed to cancel unconfirmed payment intent", cerr, "intent_id", intent.ID)
		}
	}
	return ""
}

// compensate undoes a reservation: a captured payment is refunded and the
// order is cancelled with its stock returned. It runs detached from the
// request context.
func (s *OrdersService) compensate(ctx context.Context, order domain.Order, intentID string) {
	ctx = context.WithoutCancel(ctx)

	if intentID != "" {
		if err := s.payments.Refund(ctx, intentID); err != nil {
			metrics.PaymentRefunds.WithLabelValues("failed").Inc()
			logger.Error("Failed to refund payment during compensation", err, "order_id", order.ID, "intent_id", intentID)
		} else {
			metrics.PaymentRefunds.WithLabelValues("refunded").Inc()
			logger.Warn("Refunded payment of failed order", "order_id", order.ID, "intent_id", intentID)
		}
	}

	if err := s.orderRepo.Release(ctx, order); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
		logger.Error("Failed to release reservation", err, "order_id", order.ID)
	}
}

func (s *OrdersService) ListMyOrders(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[domain.Order], error) {
	orders, total, err := s.orderRepo.FindByUser(ctx, userID, page)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	return domain.NewPage(orders, page, total), nil
}

func (s *OrdersService) ListOrders(ctx context.Context, status domain.OrderStatus, page domain.PageRequest) (domain.Page[domain.Order], error) {
	orders, total, err := s.orderRepo.FindAll(ctx, status, page)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	return domain.NewPage(orders, page, total), nil
}

// GetOrder returns the order to its owner or to an admin. Other users get
// NotFound.
func (s *OrdersService) GetOrder(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if !isAdmin && order.UserID != userID {
		return domain.Order{}, domain.NewNotFoundError("order")
	}

	return order, nil
}

func (s *OrdersService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.GetOrder(ctx, userID, false, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	return s.cancel(ctx, order)
}

func (s *OrdersService) cancel(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := order.Status.Transition(domain.OrderCancelled); err != nil {
		return domain.Order{}, err
	}

	if order.PaymentIntentID != "" {
		if err := s.payments.Cancel(ctx, order.PaymentIntentID); err != nil {
			logger.Warn("Failed to cancel payment intent", err, "order_id", order.ID)
		}
	}

	if err := s.orderRepo.Release(ctx, order); err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderCancelled
	return order, nil
}

// UpdateStatus is the admin transition. Cancelling returns stock the same way
// a customer cancellation does.
func (s *OrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if status == domain.OrderCancelled {
		return s.cancel(ctx, order)
	}

	if err := order.Status.Transition(status); err != nil {
		return domain.Order{}, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, status); err != nil {
		return domain.Order{}, err
	}

	order.Status = status
	return order, nil
}

// SweepStalePending cancels pending orders older than olderThan and returns
// their stock. It returns how many orders were released.
func (s *OrdersService) SweepStalePending(ctx context.Context, olderThan time.Duration, batch int) (int, error) {
	cutoff := s.now().Add(-olderThan)

	stale, err := s.orderRepo.FindStalePending(ctx, cutoff, batch)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, order := range stale {
		if _, err := s.cancel(ctx, order); err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				continue
			}
			logger.Error("Failed to release stale order", err, "order_id", order.ID)
			continue
		}
		released++
		metrics.StaleOrdersReleased.Inc()
	}

	if released > 0 {
		logger.Info("Released stale pending orders", "count", released)
	}

	return released, nil
}
