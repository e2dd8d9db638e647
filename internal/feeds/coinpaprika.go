package feeds

import (
	"context"
	"fmt"
	"strings"
)

// coinPaprikaIDs maps asset symbols to CoinPaprika coin ids.
var coinPaprikaIDs = map[string]string{
	"btc": "btc-bitcoin",
	"eth": "eth-ethereum",
	"kda": "kda-kadena",
	"trb": "trb-tellor",
}

// CoinPaprikaSource fetches spot prices from the CoinPaprika tickers API.
type CoinPaprikaSource struct {
	BaseURL string
}

// NewCoinPaprikaSource creates a source against the public CoinPaprika API.
func NewCoinPaprikaSource() *CoinPaprikaSource {
	return &CoinPaprikaSource{BaseURL: "https://api.coinpaprika.com/v1"}
}

func (s *CoinPaprikaSource) Name() string {
	return "coinpaprika"
}

type coinPaprikaTicker struct {
	Quotes map[string]struct {
		Price float64 `json:"price"`
	} `json:"quotes"`
}

func (s *CoinPaprikaSource) FetchPrice(ctx context.Context, asset, currency string) (float64, error) {
	coinID, ok := coinPaprikaIDs[asset]
	if !ok {
		return 0, fmt.Errorf("coinpaprika: unsupported asset %q", asset)
	}

	quote := strings.ToUpper(currency)
	url := fmt.Sprintf("%s/tickers/%s?quotes=%s", s.BaseURL, coinID, quote)
	ticker, err := fetchJSON[coinPaprikaTicker](ctx, url)
	if err != nil {
		return 0, fmt.Errorf("coinpaprika: %w", err)
	}

	q, ok := ticker.Quotes[quote]
	if !ok {
		return 0, fmt.Errorf("coinpaprika: no %s quote for %s in response", quote, asset)
	}
	return q.Price, nil
}
