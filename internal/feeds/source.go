package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tellor-io/telliot-kadena/internal/logger"
)

// PriceSource fetches the latest spot price of an asset/currency pair from
// one market data provider.
type PriceSource interface {
	Name() string
	FetchPrice(ctx context.Context, asset, currency string) (float64, error)
}

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	},
}

// fetchJSON makes a GET request and decodes the JSON response.
func fetchJSON[T any](ctx context.Context, url string) (*T, error) {
	start := time.Now()
	logger.Debug("Starting request to %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Error("Request failed after (%s) %v: %v", url, time.Since(start), err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Request to %s completed in %v with status %d", url, time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return &result, nil
}
