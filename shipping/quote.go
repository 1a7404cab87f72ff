package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrNoQuotes = errors.New("no carrier returned a quote")

// QuoteRequest describes the package to move between two coverage codes.
type QuoteRequest struct {
	OriginCode      string  `json:"origin_code"`
	DestinationCode string  `json:"destination_code"`
	WeightKg        float64 `json:"weight_kg"`
	LengthCm        int     `json:"length_cm"`
	WidthCm         int     `json:"width_cm"`
	HeightCm        int     `json:"height_cm"`
}

// Quote is one rate option from one carrier. The caller picks one; the pick
// becomes a frozen Selection.
type Quote struct {
	Carrier string `json:"carrier"`
	Service string `json:"service"`
	Price   int64  `json:"price"`
	ETA     string `json:"eta"`
}

// RateClient is one carrier's rate-quote service.
type RateClient interface {
	Carrier() string
	Quote(ctx context.Context, req QuoteRequest) ([]Quote, error)
}

// HTTPRateClient quotes against a carrier's HTTP rate endpoint.
type HTTPRateClient struct {
	carrier string
	apiURL  string
	client  *http.Client
}

func NewHTTPRateClient(carrier, apiURL string, client *http.Client) *HTTPRateClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPRateClient{carrier: strings.ToLower(carrier), apiURL: apiURL, client: client}
}

// RateClientsFromEnv builds one client per configured carrier, from
// SHIPPING_QUOTE_URL_<CARRIER> env vars.
func RateClientsFromEnv(carriers ...string) []RateClient {
	var clients []RateClient
	for _, carrier := range carriers {
		env := "SHIPPING_QUOTE_URL_" + strings.ToUpper(carrier)
		if apiURL := os.Getenv(env); apiURL != "" {
			clients = append(clients, NewHTTPRateClient(carrier, apiURL, nil))
		}
	}
	return clients
}

func (c *HTTPRateClient) Carrier() string { return c.carrier }

func (c *HTTPRateClient) Quote(ctx context.Context, req QuoteRequest) ([]Quote, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("reach %s: %w", c.carrier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s quote error (%d)", c.carrier, resp.StatusCode)
	}

	var quotes []Quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("parse %s quotes: %w", c.carrier, err)
	}
	for i := range quotes {
		quotes[i].Carrier = c.carrier
	}
	return quotes, nil
}

// QuoteAll fans the request out to every carrier in parallel and returns all
// options found. A carrier that fails is logged and skipped; only when every
// carrier fails is the whole call an error.
func QuoteAll(ctx context.Context, clients []RateClient, req QuoteRequest) ([]Quote, error) {
	if len(clients) == 0 {
		return nil, ErrNoQuotes
	}

	var (
		mu     sync.Mutex
		quotes []Quote
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, client := range clients {
		client := client
		g.Go(func() error {
			got, err := client.Quote(ctx, req)
			if err != nil {
				log.Printf("carrier %s quote failed: %v", client.Carrier(), err)
				return nil // skip, don't fail the fan-out
			}
			mu.Lock()
			quotes = append(quotes, got...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}
	return quotes, nil
}
