package feeds

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tellor-io/telliot-kadena/internal/logger"
)

// DataFeed pairs a spot price query with the sources answering it.
type DataFeed struct {
	Query   SpotPrice
	Sources []PriceSource

	mu        sync.Mutex
	latest    float64
	latestAt  time.Time
	hasLatest bool
}

// NewDataFeed builds a feed for a query backed by the given sources.
func NewDataFeed(query SpotPrice, sources ...PriceSource) *DataFeed {
	return &DataFeed{Query: query, Sources: sources}
}

// FetchNewDatapoint queries all sources concurrently and stores the median
// of the successful answers as the latest datapoint.
func (f *DataFeed) FetchNewDatapoint(ctx context.Context) (float64, error) {
	if len(f.Sources) == 0 {
		return 0, fmt.Errorf("no sources configured for %s", f.Query.Tag())
	}

	prices := make([]float64, len(f.Sources))
	errs := make([]error, len(f.Sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range f.Sources {
		g.Go(func() error {
			price, err := source.FetchPrice(gctx, f.Query.Asset, f.Query.Currency)
			if err != nil {
				logger.Warn("Source %s failed for %s: %v", source.Name(), f.Query.Tag(), err)
				errs[i] = err
				return nil // a single source failure does not fail the feed
			}
			prices[i] = price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	answered := prices[:0:0]
	for i, price := range prices {
		if errs[i] == nil {
			answered = append(answered, price)
		}
	}
	if len(answered) == 0 {
		return 0, fmt.Errorf("all sources failed for %s", f.Query.Tag())
	}

	price := median(answered)
	f.mu.Lock()
	f.latest = price
	f.latestAt = time.Now()
	f.hasLatest = true
	f.mu.Unlock()

	logger.Debug("Feed %s: %d/%d sources answered, median %g", f.Query.Tag(), len(answered), len(f.Sources), price)
	return price, nil
}

// Latest returns the last fetched datapoint, if any.
func (f *DataFeed) Latest() (float64, time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.latestAt, f.hasLatest
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
