// Package payment drives the two-phase, externally-redirected gateway
// protocol: create a transaction and send the browser away, then exchange the
// return token for the confirmed order. Between the two phases the
// application is fully suspended; nothing here assumes the customer ever
// comes back.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var (
	// ErrTokenNotFound: the return arrived without a token, or the gateway
	// does not know it. Terminal; the customer is sent back to retry payment.
	ErrTokenNotFound = errors.New("payment token not found")
	// ErrConfirmationFailed: the gateway rejected the exchange. Terminal for
	// this token; checkout restarts, tokens are never retried with a new
	// create.
	ErrConfirmationFailed = errors.New("payment confirmation failed")
)

// gatewayConfig picks production credentials, test mode if needed.
func gatewayConfig() (storeCode, apiKey, apiURL string, testMode int, err error) {
	storeCode = os.Getenv("GATEWAY_STORE_CODE")
	apiKey = os.Getenv("GATEWAY_API_KEY")
	apiURL = os.Getenv("GATEWAY_API_URL")
	testMode = 0

	mode := strings.ToLower(os.Getenv("GATEWAY_MODE"))
	if mode == "sandbox" || mode == "dev" {
		testMode = 1 // use test mode even on live endpoint
	}

	if storeCode == "" || apiKey == "" || apiURL == "" {
		return "", "", "", 0, fmt.Errorf("gateway configuration missing")
	}
	return storeCode, apiKey, apiURL, testMode, nil
}

// CreateResult is what the storefront needs to send the browser away.
type CreateResult struct {
	RedirectURL string `json:"redirect_url"`
	Token       string `json:"token"`
}

type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createResponse struct {
	URL   string        `json:"url"`
	Token string        `json:"token"`
	Error *gatewayError `json:"error,omitempty"`
}

type commitResponse struct {
	BuyOrder  string        `json:"buy_order"`
	SessionID string        `json:"session_id"`
	Amount    int64         `json:"amount"`
	Status    string        `json:"status"` // e.g. "AUTHORIZED", "FAILED"
	Error     *gatewayError `json:"error,omitempty"`
}

// Client talks to the payment gateway's REST API.
type Client struct {
	http *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{http: httpClient}
}

func (c *Client) post(ctx context.Context, apiURL string, payload any, out any) error {
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return ErrTokenNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway API error (%d): %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return nil
}

// Create requests a gateway transaction for the given amount and buy-order
// reference. The returned URL is where the browser goes; the token comes back
// on the return URL as a query parameter. After this call succeeds the
// application must not assume it runs again until the gateway redirects back.
func (c *Client) Create(ctx context.Context, amount int64, buyOrder, sessionRef, returnURL string) (CreateResult, error) {
	storeCode, apiKey, apiURL, testMode, err := gatewayConfig()
	if err != nil {
		return CreateResult{}, err
	}

	payload := map[string]interface{}{
		"method":  "create",
		"store":   storeCode,
		"api_key": apiKey,
		"transaction": map[string]interface{}{
			"buy_order":  buyOrder,
			"session_id": sessionRef,
			"amount":     amount,
			"test":       testMode,
			"return_url": returnURL,
		},
	}

	var cr createResponse
	if err := c.post(ctx, apiURL, payload, &cr); err != nil {
		return CreateResult{}, err
	}
	if cr.Error != nil {
		return CreateResult{}, fmt.Errorf("gateway error: %s", cr.Error.Message)
	}
	if cr.URL == "" || cr.Token == "" {
		return CreateResult{}, fmt.Errorf("gateway returned empty redirect")
	}
	return CreateResult{RedirectURL: cr.URL, Token: cr.Token}, nil
}

// commit exchanges a token for the transaction outcome. The gateway itself
// treats commit as idempotent per token; the Confirmer on top of this adds
// the local record so replays never touch the gateway twice.
func (c *Client) commit(ctx context.Context, token string) (commitResponse, error) {
	storeCode, apiKey, apiURL, _, err := gatewayConfig()
	if err != nil {
		return commitResponse{}, err
	}

	payload := map[string]interface{}{
		"method":  "commit",
		"store":   storeCode,
		"api_key": apiKey,
		"token":   token,
	}

	var cr commitResponse
	if err := c.post(ctx, apiURL, payload, &cr); err != nil {
		return commitResponse{}, err
	}
	if cr.Error != nil {
		if cr.Error.Code == "token_not_found" {
			return commitResponse{}, ErrTokenNotFound
		}
		return commitResponse{}, fmt.Errorf("%w: %s", ErrConfirmationFailed, cr.Error.Message)
	}
	return cr, nil
}
