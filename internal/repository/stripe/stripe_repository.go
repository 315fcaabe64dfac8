package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"toutaunclicla/domain"
	"toutaunclicla/pkg/metrics"

	"github.com/go-faster/errors"
	"github.com/pobyzaarif/goshortcute"
	"github.com/shopspring/decimal"
)

type StripeConfig struct {
	StripeSecretKey string
	StripeBaseURL   string
	Currency        string
	Timeout         time.Duration
}

// APIError is the error object Stripe returns on non-2xx responses.
type APIError struct {
	StatusCode  int    `json:"-"`
	Type        string `json:"type"`
	Code        string `json:"code"`
	DeclineCode string `json:"decline_code"`
	Message     string `json:"message"`
}

func (e *APIError) Error() string {
	if e.DeclineCode != "" {
		return fmt.Sprintf("stripe %d %s (%s): %s", e.StatusCode, e.Code, e.DeclineCode, e.Message)
	}
	return fmt.Sprintf("stripe %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// OutcomeKnown reports whether Stripe settled the request. 5xx responses and
// idempotency conflicts leave it open: the charge may or may not exist.
func (e *APIError) OutcomeKnown() bool {
	return e.StatusCode < http.StatusInternalServerError && e.StatusCode != http.StatusConflict
}

type StripeRepository struct {
	stripeConfig StripeConfig
	client       *http.Client
	authHeader   string
}

func NewStripeRepository(cfg StripeConfig) *StripeRepository {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}

	return &StripeRepository{
		stripeConfig: cfg,
		client:       &http.Client{Timeout: cfg.Timeout},
		authHeader:   "Basic " + goshortcute.StringtoBase64Encode(cfg.StripeSecretKey+":"),
	}
}

type intentResponse struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	ClientSecret  string            `json:"client_secret"`
	Customer      string            `json:"customer"`
	PaymentMethod string            `json:"payment_method"`
	Metadata      map[string]string `json:"metadata"`
}

type paymentMethodResponse struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Card struct {
		Brand    string `json:"brand"`
		Last4    string `json:"last4"`
		ExpMonth int    `json:"exp_month"`
		ExpYear  int    `json:"exp_year"`
	} `json:"card"`
}

// Authorize creates and confirms a payment intent in one call.
func (r *StripeRepository) Authorize(ctx context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error) {
	req.Confirm = true
	return r.CreateIntent(ctx, req)
}

func (r *StripeRepository) CreateIntent(ctx context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error) {
	currency := req.Currency
	if currency == "" {
		currency = r.stripeConfig.Currency
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(toMinorUnits(req.Amount), 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("automatic_payment_methods[allow_redirects]", "never")
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	if req.CustomerID != "" {
		form.Set("customer", req.CustomerID)
	}
	if req.PaymentMethodID != "" {
		form.Set("payment_method", req.PaymentMethodID)
	}
	if req.Confirm {
		form.Set("confirm", "true")
	}
	for k, v := range req.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	op := "create_intent"
	if req.Confirm {
		op = "authorize"
	}

	var resp intentResponse
	if err := r.do(ctx, op, http.MethodPost, "/v1/payment_intents", form, req.IdempotencyKey, &resp); err != nil {
		return domain.PaymentIntent{}, err
	}

	return resp.toDomain(), nil
}

func (r *StripeRepository) RetrieveIntent(ctx context.Context, intentID string) (domain.PaymentIntent, error) {
	var resp intentResponse
	if err := r.do(ctx, "retrieve_intent", http.MethodGet, "/v1/payment_intents/"+url.PathEscape(intentID), nil, "", &resp); err != nil {
		return domain.PaymentIntent{}, err
	}

	return resp.toDomain(), nil
}

func (r *StripeRepository) Cancel(ctx context.Context, intentID string) error {
	var resp intentResponse
	return r.do(ctx, "cancel_intent", http.MethodPost, "/v1/payment_intents/"+url.PathEscape(intentID)+"/cancel", url.Values{}, "", &resp)
}

// Refund returns the full captured amount of an intent. The refund is keyed on
// the intent so retries never refund twice.
func (r *StripeRepository) Refund(ctx context.Context, intentID string) error {
	form := url.Values{}
	form.Set("payment_intent", intentID)

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	return r.do(ctx, "refund", http.MethodPost, "/v1/refunds", form, "refund-"+intentID, &resp)
}

func (r *StripeRepository) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	var resp struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, "create_customer", http.MethodPost, "/v1/customers", form, "", &resp); err != nil {
		return "", err
	}

	return resp.ID, nil
}

func (r *StripeRepository) ListPaymentMethods(ctx context.Context, customerID string) ([]domain.PaymentMethod, error) {
	path := "/v1/customers/" + url.PathEscape(customerID) + "/payment_methods?type=card"

	var resp struct {
		Data []paymentMethodResponse `json:"data"`
	}
	if err := r.do(ctx, "list_payment_methods", http.MethodGet, path, nil, "", &resp); err != nil {
		return nil, err
	}

	methods := make([]domain.PaymentMethod, 0, len(resp.Data))
	for _, pm := range resp.Data {
		methods = append(methods, pm.toDomain())
	}

	return methods, nil
}

func (r *StripeRepository) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (domain.PaymentMethod, error) {
	form := url.Values{}
	form.Set("customer", customerID)

	var resp paymentMethodResponse
	path := "/v1/payment_methods/" + url.PathEscape(paymentMethodID) + "/attach"
	if err := r.do(ctx, "attach_payment_method", http.MethodPost, path, form, "", &resp); err != nil {
		return domain.PaymentMethod{}, err
	}

	return resp.toDomain(), nil
}

func (r *StripeRepository) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	var resp paymentMethodResponse
	path := "/v1/payment_methods/" + url.PathEscape(paymentMethodID) + "/detach"
	return r.do(ctx, "detach_payment_method", http.MethodPost, path, url.Values{}, "", &resp)
}

func (r *StripeRepository) do(ctx context.Context, op, method, path string, form url.Values, idempotencyKey string, out any) error {
	start := time.Now()
	defer func() {
		metrics.PaymentGatewayLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, r.stripeConfig.StripeBaseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "stripe %s: build request", op)
	}

	req.Header.Add("Authorization", r.authHeader)
	if form != nil {
		req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Add("Idempotency-Key", idempotencyKey)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "stripe %s", op)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "stripe %s: read body", op)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var envelope struct {
			Error APIError `json:"error"`
		}
		_ = json.Unmarshal(resBody, &envelope)
		envelope.Error.StatusCode = res.StatusCode
		return &envelope.Error
	}

	if err := json.Unmarshal(resBody, out); err != nil {
		return errors.Wrapf(err, "stripe %s: decode response", op)
	}

	return nil
}

var minorUnits = decimal.NewFromInt(100)

// toMinorUnits converts a two-decimal amount to cents.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnits).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

func (i intentResponse) toDomain() domain.PaymentIntent {
	return domain.PaymentIntent{
		ID:              i.ID,
		Status:          i.Status,
		Amount:          fromMinorUnits(i.Amount),
		Currency:        i.Currency,
		ClientSecret:    i.ClientSecret,
		CustomerID:      i.Customer,
		PaymentMethodID: i.PaymentMethod,
		Metadata:        i.Metadata,
	}
}

func (p paymentMethodResponse) toDomain() domain.PaymentMethod {
	return domain.PaymentMethod{
		ID:       p.ID,
		Type:     p.Type,
		Brand:    p.Card.Brand,
		Last4:    p.Card.Last4,
		ExpMonth: p.Card.ExpMonth,
		ExpYear:  p.Card.ExpYear,
	}
}
