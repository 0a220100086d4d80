// Package twofactor talks to the 2factor.in SMS OTP API.
package twofactor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vizhaa-backend/apperr"
)

// Provider delivers and checks one-time codes. The code never reaches this
// service; the provider keeps it behind a session id.
type Provider interface {
	SendCode(ctx context.Context, phoneE164, template string) (string, error)
	VerifyCode(ctx context.Context, sessionID, code string) (bool, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type apiResponse struct {
	Status  string `json:"Status"`
	Details string `json:"Details"`
}

func (c *Client) SendCode(ctx context.Context, phoneE164, template string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/SMS/%s/AUTOGEN/%s",
		c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(phoneE164), url.PathEscape(template))

	resp, status, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || resp.Status != "Success" || resp.Details == "" {
		return "", apperr.ErrProvider.Wrap(fmt.Errorf("send failed: status=%d details=%s", status, resp.Details))
	}
	return resp.Details, nil
}

func (c *Client) VerifyCode(ctx context.Context, sessionID, code string) (bool, error) {
	endpoint := fmt.Sprintf("%s/%s/SMS/VERIFY/%s/%s",
		c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(sessionID), url.PathEscape(code))

	resp, status, err := c.get(ctx, endpoint)
	if err != nil {
		return false, err
	}
	if status >= http.StatusInternalServerError {
		return false, apperr.ErrProvider.Wrap(fmt.Errorf("verify failed: status=%d details=%s", status, resp.Details))
	}
	return resp.Status == "Success", nil
}

func (c *Client) get(ctx context.Context, endpoint string) (apiResponse, int, error) {
	var out apiResponse

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return out, 0, apperr.Internal(err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return out, 0, apperr.ErrProviderTimeout.Wrap(err)
		}
		return out, 0, apperr.ErrProvider.Wrap(err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, resp.StatusCode, apperr.ErrProvider.Wrap(fmt.Errorf("decode response: %w", err))
	}
	return out, resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
