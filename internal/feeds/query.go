package feeds

import (
	"fmt"
	"strings"

	"github.com/tellor-io/telliot-kadena/internal/pact"
)

// SpotPrice identifies a spot price oracle query for an asset/currency pair.
type SpotPrice struct {
	Asset    string
	Currency string
}

// NewSpotPrice builds a SpotPrice query, normalizing the pair to lower case.
func NewSpotPrice(asset, currency string) SpotPrice {
	return SpotPrice{
		Asset:    strings.ToLower(asset),
		Currency: strings.ToLower(currency),
	}
}

// Tag returns the catalog tag for the query (e.g. "kda-usd-spot").
func (q SpotPrice) Tag() string {
	return fmt.Sprintf("%s-%s-spot", q.Asset, q.Currency)
}

// Descriptor returns the query descriptor reported on-chain.
func (q SpotPrice) Descriptor() string {
	return fmt.Sprintf("{SpotPrice: [%s,%s]}", q.Asset, q.Currency)
}

// QueryData returns the url-safe base64 encoded descriptor.
func (q SpotPrice) QueryData() string {
	return pact.Base64URLEncodeString(q.Descriptor())
}

// QueryID returns the Blake2b-256 hash of the query data, url-safe base64
// encoded.
func (q SpotPrice) QueryID() string {
	return pact.Hash(q.QueryData())
}
