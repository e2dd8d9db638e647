package feeds

import (
	"context"
	"fmt"
)

// coinGeckoIDs maps asset symbols to CoinGecko coin ids.
var coinGeckoIDs = map[string]string{
	"btc": "bitcoin",
	"eth": "ethereum",
	"kda": "kadena",
	"trb": "tellor",
}

// CoinGeckoSource fetches spot prices from the CoinGecko simple price API.
type CoinGeckoSource struct {
	BaseURL string
}

// NewCoinGeckoSource creates a source against the public CoinGecko API.
func NewCoinGeckoSource() *CoinGeckoSource {
	return &CoinGeckoSource{BaseURL: "https://api.coingecko.com/api/v3"}
}

func (s *CoinGeckoSource) Name() string {
	return "coingecko"
}

func (s *CoinGeckoSource) FetchPrice(ctx context.Context, asset, currency string) (float64, error) {
	coinID, ok := coinGeckoIDs[asset]
	if !ok {
		return 0, fmt.Errorf("coingecko: unsupported asset %q", asset)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", s.BaseURL, coinID, currency)
	response, err := fetchJSON[map[string]map[string]float64](ctx, url)
	if err != nil {
		return 0, fmt.Errorf("coingecko: %w", err)
	}

	price, ok := (*response)[coinID][currency]
	if !ok {
		return 0, fmt.Errorf("coingecko: no price for %s/%s in response", asset, currency)
	}
	return price, nil
}
