package feeds

import (
	"fmt"
	"math/rand"
	"sort"
)

// Catalog holds the data feeds the reporter knows how to serve, keyed by
// query tag.
type Catalog struct {
	feeds map[string]*DataFeed
}

// NewCatalog builds the default feed catalog. Kraken lists no KDA pair, so
// the kda-usd-spot feed runs on CoinGecko and CoinPaprika only.
func NewCatalog() *Catalog {
	coingecko := NewCoinGeckoSource()
	coinpaprika := NewCoinPaprikaSource()
	kraken := NewKrakenSource()

	feeds := []*DataFeed{
		NewDataFeed(NewSpotPrice("kda", "usd"), coingecko, coinpaprika),
		NewDataFeed(NewSpotPrice("eth", "usd"), coingecko, coinpaprika, kraken),
		NewDataFeed(NewSpotPrice("trb", "usd"), coingecko, coinpaprika, kraken),
		NewDataFeed(NewSpotPrice("btc", "usd"), coingecko, coinpaprika, kraken),
	}

	byTag := make(map[string]*DataFeed, len(feeds))
	for _, feed := range feeds {
		byTag[feed.Query.Tag()] = feed
	}
	return &Catalog{feeds: byTag}
}

// LookupFeed returns the feed registered under the given query tag.
func (c *Catalog) LookupFeed(tag string) (*DataFeed, error) {
	feed, ok := c.feeds[tag]
	if !ok {
		return nil, fmt.Errorf("unknown query tag %q, known tags: %v", tag, c.Tags())
	}
	return feed, nil
}

// SuggestRandomFeed picks one of the catalog feeds at random. Used when the
// reporter is started without a query tag.
func (c *Catalog) SuggestRandomFeed() *DataFeed {
	tags := c.Tags()
	return c.feeds[tags[rand.Intn(len(tags))]]
}

// Tags lists the known query tags in sorted order.
func (c *Catalog) Tags() []string {
	tags := make([]string, 0, len(c.feeds))
	for tag := range c.feeds {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// BuildSpotFeed assembles an ad hoc spot price feed for an asset/currency
// pair outside the catalog, backed by every source that supports it.
func BuildSpotFeed(asset, currency string) (*DataFeed, error) {
	query := NewSpotPrice(asset, currency)

	var sources []PriceSource
	if _, ok := coinGeckoIDs[query.Asset]; ok {
		sources = append(sources, NewCoinGeckoSource())
	}
	if _, ok := coinPaprikaIDs[query.Asset]; ok {
		sources = append(sources, NewCoinPaprikaSource())
	}
	if _, ok := krakenPairs[query.Asset]; ok && query.Currency == "usd" {
		sources = append(sources, NewKrakenSource())
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no price source supports %s/%s", query.Asset, query.Currency)
	}
	return NewDataFeed(query, sources...), nil
}
