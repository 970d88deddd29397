package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/swiftbank/assist/internal/metrics"
)

const (
	apiVersion       = "v1"
	headerCustomerID = "X-Customer-ID"
	defaultTimeout   = 10 * time.Second
)

// envelope is the uniform BANKMOCK response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client is the HTTP Gateway implementation.
type Client struct {
	http *resty.Client
}

var _ Gateway = (*Client)(nil)

// NewClient creates a gateway client for the given BANKMOCK base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(baseURL + "/api/" + apiVersion)
	client.SetTimeout(timeout)
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		slog.Debug("bank gateway request",
			"method", r.Request.Method,
			"url", r.Request.URL,
			"status", r.StatusCode(),
			"duration", r.Duration(),
		)
		return nil
	})

	return &Client{http: client}
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) get(ctx context.Context, customerID, path string, out any) error {
	var env envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerCustomerID, customerID).
		SetResult(&env).
		SetError(&env).
		Get(path)
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(path, "error").Inc()
		return fmt.Errorf("bank gateway %s: %w", path, err)
	}

	metrics.GatewayRequests.WithLabelValues(path, strconv.Itoa(resp.StatusCode())).Inc()

	if resp.IsError() || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = resp.Status()
		}
		return fmt.Errorf("bank gateway %s: %s", path, msg)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("bank gateway %s: decode data: %w", path, err)
		}
	}
	return nil
}

// GetBalance fetches the current account balance.
func (c *Client) GetBalance(ctx context.Context, customerID string) (*Balance, error) {
	var out Balance
	if err := c.get(ctx, customerID, "/balance", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransactions fetches up to limit recent transactions.
func (c *Client) GetTransactions(ctx context.Context, customerID string, limit int) ([]Transaction, error) {
	var out struct {
		Transactions []Transaction `json:"transactions"`
	}
	path := "/transactions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.get(ctx, customerID, path, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// GetAccount fetches account master details.
func (c *Client) GetAccount(ctx context.Context, customerID string) (*Account, error) {
	var out Account
	if err := c.get(ctx, customerID, "/account", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetChequeStatus fetches the clearing status for a cheque number.
func (c *Client) GetChequeStatus(ctx context.Context, customerID, chequeNumber string) (*Cheque, error) {
	var out Cheque
	if err := c.get(ctx, customerID, "/cheque/"+chequeNumber, &out); err != nil {
		return nil, err
	}
	if out.ChequeNumber == "" {
		out.ChequeNumber = chequeNumber
	}
	return &out, nil
}

// GetCustomerProfile fetches the customer profile record.
func (c *Client) GetCustomerProfile(ctx context.Context, customerID string) (*Customer, error) {
	var out Customer
	if err := c.get(ctx, customerID, "/customer", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
