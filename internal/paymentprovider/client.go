// Package paymentprovider реализует HTTP-клиент платежного провайдера DevCraftor:
// создание hosted payment link с привязкой корреляционного токена в metadata.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Client клиент API DevCraftor.
type Client struct {
	apiKey     string
	apiSecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент DevCraftor с ограниченным таймаутом запросов.
func NewClient(apiKey, apiSecret, apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-API-Secret", c.apiSecret)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreatePaymentLink отправляет запрос на создание hosted payment link.
func (c *Client) CreatePaymentLink(ctx context.Context, reqParams CreatePaymentLinkRequest) (*CreatePaymentLinkResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/v2/partner/payment_links", reqParams)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var linkResp CreatePaymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&linkResp); err != nil {
		return nil, err
	}
	return &linkResp, nil
}
