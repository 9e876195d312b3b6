// Package provider talks to the hosted checkout provider over its JSON:API
// REST interface.
package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const mediaType = "application/vnd.api+json"

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	BaseURL       string
	APIKey        string
	StoreID       string
	VariantID     string
	WebhookSecret string
	RedirectURL   string
	Timeout       time.Duration
}

type Client struct {
	baseURL       string
	apiKey        string
	storeID       string
	variantID     string
	webhookSecret string
	redirectURL   string
	http          *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		storeID:       cfg.StoreID,
		variantID:     cfg.VariantID,
		webhookSecret: cfg.WebhookSecret,
		redirectURL:   cfg.RedirectURL,
		http:          &http.Client{Timeout: cfg.Timeout},
	}
}

type CheckoutRequest struct {
	PaymentID   string
	AmountCents int64
	Description string
	Email       string
}

type Checkout struct {
	ID  string
	URL string
}

// CheckoutStatus is the synchronous view of a checkout session. OrderID is
// empty until the provider has created an order for it.
type CheckoutStatus struct {
	Status  string
	OrderID string
}

type Order struct {
	ID       string
	Status   string
	Total    *int64
	Currency string
}

type resource struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

type document struct {
	Data resource `json:"data"`
}

type collection struct {
	Data []resource `json:"data"`
}

type checkoutAttributes struct {
	URL     string `json:"url"`
	Status  string `json:"status"`
	OrderID flexID `json:"order_id"`
}

// flexID accepts identifiers encoded either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type orderAttributes struct {
	Status   string `json:"status"`
	Total    *int64 `json:"total"`
	Currency string `json:"currency"`
}

func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	payload := map[string]any{
		"data": map[string]any{
			"type": "checkouts",
			"attributes": map[string]any{
				"custom_price": req.AmountCents,
				"checkout_data": map[string]any{
					"email":  req.Email,
					"custom": map[string]string{"pago_id": req.PaymentID},
				},
				"product_options": map[string]any{
					"name":         req.Description,
					"redirect_url": c.redirectURL + "?pago_id=" + url.QueryEscape(req.PaymentID),
				},
			},
			"relationships": map[string]any{
				"store":   map[string]any{"data": map[string]string{"type": "stores", "id": c.storeID}},
				"variant": map[string]any{"data": map[string]string{"type": "variants", "id": c.variantID}},
			},
		},
	}

	var doc document
	if err := c.do(ctx, http.MethodPost, "/checkouts", payload, &doc); err != nil {
		return nil, err
	}

	var attrs checkoutAttributes
	if err := json.Unmarshal(doc.Data.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("decode checkout: %w", err)
	}
	return &Checkout{ID: doc.Data.ID, URL: attrs.URL}, nil
}

func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (*CheckoutStatus, error) {
	var doc document
	if err := c.do(ctx, http.MethodGet, "/checkouts/"+url.PathEscape(checkoutID), nil, &doc); err != nil {
		return nil, err
	}

	var attrs checkoutAttributes
	if err := json.Unmarshal(doc.Data.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("decode checkout: %w", err)
	}
	return &CheckoutStatus{Status: attrs.Status, OrderID: string(attrs.OrderID)}, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var doc document
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &doc); err != nil {
		return nil, err
	}
	return decodeOrder(doc.Data)
}

// FindOrderByCheckoutID returns nil, nil when the checkout has no order yet.
func (c *Client) FindOrderByCheckoutID(ctx context.Context, checkoutID string) (*Order, error) {
	q := url.Values{}
	q.Set("filter[checkout_id]", checkoutID)
	q.Set("page[size]", "1")

	var list collection
	if err := c.do(ctx, http.MethodGet, "/orders?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return nil, nil
	}
	return decodeOrder(list.Data[0])
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 of the raw body.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	if c.webhookSecret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), got)
}

func decodeOrder(r resource) (*Order, error) {
	var attrs orderAttributes
	if err := json.Unmarshal(r.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &Order{
		ID:       r.ID,
		Status:   attrs.Status,
		Total:    attrs.Total,
		Currency: strings.ToUpper(attrs.Currency),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", mediaType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", mediaType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
