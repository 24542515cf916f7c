// Package gateway talks to the hosted payment gateway: a form-encoded
// HTTP API where every request is signed with a shared secret.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/config"
	"github.com/tiendazen/payment-service/internal/sign"
)

type HTTPGatewayClient struct {
	baseURL    string
	apiKey     string
	secretKey  string
	currency   string
	confirmURL string
	returnURL  string
	httpClient *http.Client
}

func NewGatewayClient(cfg config.GatewayConfig, commerce config.CommerceConfig) application.GatewayClient {
	return &HTTPGatewayClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		currency:   commerce.Currency,
		confirmURL: strings.TrimRight(commerce.PublicBaseURL, "/") + "/payment/confirm",
		returnURL:  strings.TrimRight(commerce.PublicBaseURL, "/") + "/payment/return",
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPGatewayClient) CreatePayment(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResult, error) {
	fields := map[string]string{
		"apiKey":          c.apiKey,
		"commerceOrder":   req.CommerceOrderID,
		"subject":         req.Subject,
		"amount":          strconv.FormatInt(req.Amount, 10),
		"currency":        c.currency,
		"email":           req.Email,
		"urlConfirmation": c.confirmURL,
		"urlReturn":       c.returnURL,
	}
	if req.Optional != "" {
		fields["optional"] = req.Optional
	}

	endpoint := c.baseURL + "/payment/create"
	var resp createResponse
	if err := c.postForm(ctx, endpoint, fields, &resp); err != nil {
		return nil, err
	}

	// A 2xx without url/token is still a rejection; the session was
	// never created.
	if resp.URL == "" || resp.Token == "" {
		return nil, &RejectionError{Code: resp.Code, Message: resp.Message}
	}

	return &application.CreatePaymentResult{
		RedirectURL:     resp.URL + "?token=" + resp.Token,
		Token:           resp.Token,
		GatewayOrderRef: resp.Order,
	}, nil
}

func (c *HTTPGatewayClient) GetStatus(ctx context.Context, token string) (*application.PaymentStatusResult, error) {
	fields := map[string]string{
		"apiKey": c.apiKey,
		"token":  token,
	}

	endpoint := c.baseURL + "/payment/getStatus"
	var resp statusResponse
	if err := c.get(ctx, endpoint, fields, &resp); err != nil {
		return nil, err
	}

	return &application.PaymentStatusResult{
		Status:        resp.Status,
		CommerceOrder: resp.CommerceOrder,
		Optional:      resp.Optional,
	}, nil
}

func (c *HTTPGatewayClient) postForm(ctx context.Context, endpoint string, fields map[string]string, out any) error {
	form := signedValues(fields, c.secretKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(httpReq, out)
}

func (c *HTTPGatewayClient) get(ctx context.Context, endpoint string, fields map[string]string, out any) error {
	query := signedValues(fields, c.secretKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	return c.do(httpReq, out)
}

func (c *HTTPGatewayClient) do(httpReq *http.Request, out any) error {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding json response: %w", err)
	}
	return nil
}

func signedValues(fields map[string]string, secret string) url.Values {
	values := url.Values{}
	for name, value := range fields {
		values.Set(name, value)
	}
	values.Set(sign.Field, sign.Sign(fields, secret))
	return values
}
