package feeds

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// krakenPairs maps asset symbols to Kraken pair names (vs USD).
var krakenPairs = map[string]string{
	"btc": "XBTUSD",
	"eth": "ETHUSD",
	"trb": "TRBUSD",
}

// KrakenSource fetches spot prices from the Kraken public ticker API.
type KrakenSource struct {
	BaseURL string
}

// NewKrakenSource creates a source against the public Kraken API.
func NewKrakenSource() *KrakenSource {
	return &KrakenSource{BaseURL: "https://api.kraken.com"}
}

func (s *KrakenSource) Name() string {
	return "kraken"
}

type krakenTicker struct {
	Error  []string `json:"error"`
	Result map[string]struct {
		// c holds [last trade price, lot volume]
		Close []string `json:"c"`
	} `json:"result"`
}

func (s *KrakenSource) FetchPrice(ctx context.Context, asset, currency string) (float64, error) {
	if strings.ToLower(currency) != "usd" {
		return 0, fmt.Errorf("kraken: unsupported currency %q", currency)
	}
	pair, ok := krakenPairs[asset]
	if !ok {
		return 0, fmt.Errorf("kraken: unsupported asset %q", asset)
	}

	url := fmt.Sprintf("%s/0/public/Ticker?pair=%s", s.BaseURL, pair)
	ticker, err := fetchJSON[krakenTicker](ctx, url)
	if err != nil {
		return 0, fmt.Errorf("kraken: %w", err)
	}
	if len(ticker.Error) > 0 {
		return 0, fmt.Errorf("kraken: %s", strings.Join(ticker.Error, "; "))
	}

	// Kraken keys the result by its internal pair name.
	for _, entry := range ticker.Result {
		if len(entry.Close) == 0 {
			break
		}
		price, err := strconv.ParseFloat(entry.Close[0], 64)
		if err != nil {
			return 0, fmt.Errorf("kraken: invalid price %q: %w", entry.Close[0], err)
		}
		return price, nil
	}
	return 0, fmt.Errorf("kraken: no ticker data for %s", pair)
}
