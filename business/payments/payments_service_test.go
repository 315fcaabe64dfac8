package payments

import (
	"context"
	"testing"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notFoundErr struct{}

func (notFoundErr) Error() string  { return "stripe 404 resource_missing" }
func (notFoundErr) NotFound() bool { return true }

type fakeGateway struct {
	customers int
	intents   map[string]domain.PaymentIntent
	methods   map[string][]domain.PaymentMethod
	detached  []string
	lastReq   domain.PaymentRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]domain.PaymentIntent{}, methods: map[string][]domain.PaymentMethod{}}
}

func (g *fakeGateway) CreateIntent(_ context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error) {
	g.lastReq = req
	intent := domain.PaymentIntent{
		ID:           "pi_" + uuid.NewString()[:8],
		Status:       domain.PaymentIntentRequiresPaymentMethod,
		Amount:       req.Amount,
		ClientSecret: "secret",
		CustomerID:   req.CustomerID,
		Metadata:     req.Metadata,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, id string) (domain.PaymentIntent, error) {
	intent, ok := g.intents[id]
	if !ok {
		return domain.PaymentIntent{}, notFoundErr{}
	}
	return intent, nil
}

func (g *fakeGateway) CreateCustomer(_ context.Context, _, _ string) (string, error) {
	g.customers++
	return "cus_new", nil
}

func (g *fakeGateway) ListPaymentMethods(_ context.Context, customerID string) ([]domain.PaymentMethod, error) {
	return g.methods[customerID], nil
}

func (g *fakeGateway) AttachPaymentMethod(_ context.Context, customerID, id string) (domain.PaymentMethod, error) {
	m := domain.PaymentMethod{ID: id, Type: "card", Brand: "visa", Last4: "4242"}
	g.methods[customerID] = append(g.methods[customerID], m)
	return m, nil
}

func (g *fakeGateway) DetachPaymentMethod(_ context.Context, id string) error {
	g.detached = append(g.detached, id)
	return nil
}

type fakeUsers struct {
	users map[uuid.UUID]domain.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.NewNotFoundError("user")
	}
	return u, nil
}

func (f *fakeUsers) SetStripeCustomerID(_ context.Context, id uuid.UUID, customerID string) error {
	u := f.users[id]
	u.StripeCustomerID = customerID
	f.users[id] = u
	return nil
}

type fakeCart struct {
	summary domain.CartSummary
}

func (f fakeCart) GetCart(context.Context, uuid.UUID) (domain.CartSummary, error) {
	return f.summary, nil
}

type fakeCoupons struct{}

func (fakeCoupons) Quote(_ context.Context, code string, subtotal decimal.Decimal) (domain.CouponQuote, error) {
	if code != "SAVE10" {
		return domain.CouponQuote{}, domain.NewNotFoundError("coupon")
	}
	c := domain.Coupon{Code: code, DiscountPercent: decimal.NewFromInt(10)}
	d, total := c.Apply(subtotal)
	return domain.CouponQuote{Coupon: c, Subtotal: subtotal, DiscountAmount: d, Total: total}, nil
}

func cartOf(subtotal string) fakeCart {
	return fakeCart{summary: domain.CartSummary{
		Items:     []domain.CartLine{{ProductID: uuid.New(), Quantity: 1}},
		ItemCount: 1,
		Subtotal:  decimal.RequireFromString(subtotal),
	}}
}

func TestCreatePaymentIntent(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	users := &fakeUsers{users: map[uuid.UUID]domain.User{userID: {ID: userID, Email: "a@b.c"}}}
	gw := newFakeGateway()
	svc := NewPaymentsService(gw, users, cartOf("60.00"), fakeCoupons{}, "eur")

	intent, err := svc.CreatePaymentIntent(ctx, userID, "SAVE10")
	require.NoError(t, err)
	assert.True(t, intent.Amount.Equal(decimal.RequireFromString("54.00")))
	assert.Equal(t, "cus_new", intent.CustomerID)
	assert.False(t, gw.lastReq.Confirm)
	assert.Equal(t, "cus_new", users.users[userID].StripeCustomerID)

	_, err = svc.CreatePaymentIntent(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.customers, "customer is created once")

	_, err = svc.CreatePaymentIntent(ctx, userID, "NOPE")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreatePaymentIntent_EmptyCart(t *testing.T) {
	svc := NewPaymentsService(newFakeGateway(), &fakeUsers{}, fakeCart{}, fakeCoupons{}, "eur")

	_, err := svc.CreatePaymentIntent(context.Background(), uuid.New(), "")
	assert.True(t, errors.Is(err, domain.ErrEmptyCart))
}

func TestConfirmPayment_Ownership(t *testing.T) {
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	users := &fakeUsers{users: map[uuid.UUID]domain.User{owner: {ID: owner, StripeCustomerID: "cus_1"}}}
	gw := newFakeGateway()
	svc := NewPaymentsService(gw, users, cartOf("10.00"), fakeCoupons{}, "eur")

	intent, err := svc.CreatePaymentIntent(ctx, owner, "")
	require.NoError(t, err)

	got, err := svc.ConfirmPayment(ctx, owner, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, intent.ID, got.ID)

	_, err = svc.ConfirmPayment(ctx, other, intent.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.ConfirmPayment(ctx, owner, "pi_missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPaymentMethods(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	users := &fakeUsers{users: map[uuid.UUID]domain.User{userID: {ID: userID, StripeCustomerID: "cus_1"}}}
	gw := newFakeGateway()
	svc := NewPaymentsService(gw, users, fakeCart{}, fakeCoupons{}, "eur")

	_, err := svc.AddPaymentMethod(ctx, userID, "pm_1")
	require.NoError(t, err)

	methods, err := svc.ListPaymentMethods(ctx, userID)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "4242", methods[0].Last4)

	err = svc.RemovePaymentMethod(ctx, userID, "pm_someone_else")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, gw.detached)

	require.NoError(t, svc.RemovePaymentMethod(ctx, userID, "pm_1"))
	assert.Equal(t, []string{"pm_1"}, gw.detached)
}
