package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnavailable возвращается при сетевых сбоях и ответах 5xx провайдера.
// Такие ошибки временные: локальное состояние не меняется до завершения
// запроса, поэтому вызывающий может безопасно повторить попытку.
var ErrUnavailable = errors.New("payment provider unavailable")

// Client клиент REST API Stripe.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Stripe с ограниченным таймаутом запросов.
func NewClient(secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		secretKey:  secretKey,
		apiURL:     "https://api.stripe.com/v1",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Stripe принимает form-encoded тело, вложенные поля задаются
// скобочной нотацией вида metadata[user_uid].
func (c *Client) postForm(ctx context.Context, path string, form url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, result)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// CreateCheckoutSessionRequest параметры создания checkout-сессии.
type CreateCheckoutSessionRequest struct {
	PriceID           string
	ClientReferenceID string // внутренний UID пользователя
	CustomerEmail     string
	SuccessURL        string
	CancelURL         string
}

// CreateCheckoutSession создаёт checkout-сессию подписки и возвращает
// URL для редиректа пользователя.
func (c *Client) CreateCheckoutSession(ctx context.Context, reqParams CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", reqParams.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("client_reference_id", reqParams.ClientReferenceID)
	form.Set("metadata[user_uid]", reqParams.ClientReferenceID)
	form.Set("success_url", reqParams.SuccessURL)
	form.Set("cancel_url", reqParams.CancelURL)
	if reqParams.CustomerEmail != "" {
		form.Set("customer_email", reqParams.CustomerEmail)
	}

	var session CheckoutSession
	if err := c.postForm(ctx, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreatePortalSession создаёт portal-сессию для управления подпиской.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	var session PortalSession
	if err := c.postForm(ctx, "/billing_portal/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSubscription возвращает актуальный снимок подписки.
//
// Webhook-обработчики выводят тариф из этого снимка, а не из тела события:
// провайдер не гарантирует порядок доставки.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	var sub Subscription
	if err := c.get(ctx, "/subscriptions/"+subscriptionID, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
