package chainweb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tellor-io/telliot-kadena/internal/logger"
	"github.com/tellor-io/telliot-kadena/internal/models"
)

// Pact REST endpoints of a Chainweb node.
const (
	EndpointLocal = "local"
	EndpointSend  = "send"
	EndpointPoll  = "poll"
)

const defaultRetries = 3

// DefaultBackoff returns the wait before the given retry attempt: 60s for
// the first, halved for each attempt after the second.
func DefaultBackoff(retryAttempt int) time.Duration {
	const initial = 60 * time.Second
	if retryAttempt <= 1 {
		return initial
	}
	return initial / (1 << (retryAttempt - 2))
}

// Client talks to the Pact API of a single Chainweb endpoint.
type Client struct {
	endpoint   models.ChainwebEndpoint
	httpClient *http.Client

	// Backoff computes the wait before a retry attempt. Defaults to
	// DefaultBackoff.
	Backoff func(retryAttempt int) time.Duration
}

// NewClient creates a client for the given endpoint.
func NewClient(endpoint models.ChainwebEndpoint) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Backoff: DefaultBackoff,
	}
}

// Endpoint returns the endpoint the client is bound to.
func (c *Client) Endpoint() models.ChainwebEndpoint {
	return c.endpoint
}

// BuildURL constructs the full URL for a Pact endpoint kind.
func (c *Client) BuildURL(kind string) string {
	return c.endpoint.URL + kind
}

// Local submits a command to /local and returns its result.
func (c *Client) Local(ctx context.Context, cmd models.SignedCommand) (*models.CommandResult, error) {
	var result models.CommandResult
	if err := c.post(ctx, EndpointLocal, cmd, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Send submits signed commands to /send and returns the request keys.
func (c *Client) Send(ctx context.Context, req models.SendRequest) (*models.SendResponse, error) {
	var result models.SendResponse
	if err := c.post(ctx, EndpointSend, req, &result); err != nil {
		return nil, err
	}
	if len(result.RequestKeys) == 0 {
		return nil, fmt.Errorf("send returned no request keys")
	}
	return &result, nil
}

// Poll queries /poll once for the given request keys. Pending transactions
// are absent from the response.
func (c *Client) Poll(ctx context.Context, req models.PollRequest) (models.PollResponse, error) {
	var result models.PollResponse
	if err := c.post(ctx, EndpointPoll, req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PollReceipt polls for a transaction receipt until the node reports a
// result or the retries are exhausted, and returns the transaction status.
func (c *Client) PollReceipt(ctx context.Context, requestKey string, retries int) (string, error) {
	req := models.PollRequest{RequestKeys: []string{requestKey}}

	for attempt := 1; ; attempt++ {
		response, err := c.Poll(ctx, req)
		if err != nil {
			return "", err
		}
		if result, ok := response[requestKey]; ok {
			status := result.Result.Status
			logger.Info("Link to receipt: %s/tx/%s", c.endpoint.Explorer, requestKey)
			logger.Info("Transaction status: %s", status)
			return status, nil
		}
		if attempt > retries {
			return "", fmt.Errorf("unable to fetch receipt for %s", requestKey)
		}

		logger.Info("Fetching receipt from chainweb for confirmation...")
		if err := c.sleep(ctx, c.Backoff(attempt)); err != nil {
			return "", err
		}
	}
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable reports whether a response status warrants a retry.
func retryable(statusCode int) bool {
	switch statusCode {
	case http.StatusBadRequest,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// post is the core request method: JSON POST with retry on transient errors.
func (c *Client) post(ctx context.Context, kind string, body, result interface{}) error {
	url := c.BuildURL(kind)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling request body: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= defaultRetries+1; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.Backoff(attempt-1)); err != nil {
				return err
			}
		}

		start := time.Now()
		logger.Debug("Starting POST request to %s", url)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("Request failed after (%s) %v: %v", url, time.Since(start), err)
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		logger.Debug("Request to %s completed in %v with status %d", url, time.Since(start), resp.StatusCode)

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(bodyBytes))
			if retryable(resp.StatusCode) {
				logger.Error("%s: HTTP error %d: %s", url, resp.StatusCode, string(bodyBytes))
				continue
			}
			return lastErr
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
		return nil
	}
	return lastErr
}
