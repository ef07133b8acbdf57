// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the payment service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetPaymentMethod(ctx context.Context, payerID string) (Method, error) {
	var m Method
	status, err := c.do(ctx, http.MethodGet, "/payers/"+url.PathEscape(payerID)+"/payment-method", nil, &m)
	if err != nil {
		return Method{}, err
	}
	if status == http.StatusNotFound || m.ID == "" {
		return Method{}, ErrNoPaymentMethod
	}
	return m, nil
}

func (c *Client) GetPayoutMethod(ctx context.Context, payeeID string) (PayoutMethod, error) {
	var m PayoutMethod
	status, err := c.do(ctx, http.MethodGet, "/payees/"+url.PathEscape(payeeID)+"/payout-method", nil, &m)
	if err != nil {
		return PayoutMethod{}, err
	}
	if status == http.StatusNotFound || m.ID == "" {
		return PayoutMethod{}, ErrNoPayoutMethod
	}
	return m, nil
}

func (c *Client) AuthorizeConditionalCharge(ctx context.Context, req ChargeRequest) (Authorization, error) {
	var a Authorization
	status, err := c.do(ctx, http.MethodPost, "/authorizations", req, &a)
	if err != nil {
		return Authorization{}, err
	}
	if status == http.StatusNotFound || a.ID == "" {
		return Authorization{}, fmt.Errorf("%w: authorization rejected", ErrUnavailable)
	}
	return a, nil
}

func (c *Client) CancelAuthorization(ctx context.Context, authorizationID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/authorizations/"+url.PathEscape(authorizationID), nil, nil)
	return err
}

// do performs a JSON request. 404 is returned as a status for the caller
// to interpret; any other non-2xx or transport failure is ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: invalid response: %w", ErrUnavailable, err)
		}
	}
	return resp.StatusCode, nil
}
