package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client confirms a transaction's status directly with the provider. The
// client-side return URL is never trusted; this live call is the source of
// truth for the polling trigger.
type Client interface {
	// GetTransactionStatus polls the provider for the transaction identified
	// by the client-generated reference. Network failures, timeouts and
	// provider 5xx map to ErrGatewayUnavailable.
	GetTransactionStatus(ctx context.Context, clientTxRef string) (*Confirmation, error)
}

// HTTPClient is the production Client over the provider's REST API.
type HTTPClient struct {
	BaseURL    string
	APIToken   string
	HTTPClient *http.Client
}

// NewHTTPClient creates a new HTTPClient with a bounded request timeout.
func NewHTTPClient(baseURL, apiToken string) *HTTPClient {
	return &HTTPClient{
		BaseURL:  baseURL,
		APIToken: apiToken,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Make sure we conform to the interface
var _ Client = (*HTTPClient)(nil)

// GetTransactionStatus polls the provider and normalizes its response.
func (c *HTTPClient) GetTransactionStatus(ctx context.Context, clientTxRef string) (*Confirmation, error) {
	if clientTxRef == "" {
		return nil, fmt.Errorf("empty reference: %w", ErrUnresolvedReference)
	}

	endpoint := fmt.Sprintf("%s/transactions/%s", c.BaseURL, url.PathEscape(clientTxRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("provider returned %d: %w", resp.StatusCode, ErrGatewayUnavailable)
	}
	if resp.StatusCode == http.StatusNotFound {
		// Unknown reference is not approval. Fail closed, not unavailable.
		return &Confirmation{ClientTxRef: clientTxRef, RawStatus: "not_found"}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	conf, err := ParseNotification(body)
	if err != nil {
		return nil, err
	}
	if conf.ClientTxRef == "" {
		conf.ClientTxRef = clientTxRef
	}
	return conf, nil
}
