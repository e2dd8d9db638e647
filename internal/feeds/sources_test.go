package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGeckoSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "kadena", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"kadena": {"usd": 0.961782}}`))
	}))
	defer server.Close()

	source := &CoinGeckoSource{BaseURL: server.URL}
	price, err := source.FetchPrice(context.Background(), "kda", "usd")
	require.NoError(t, err)
	assert.Equal(t, 0.961782, price)
}

func TestCoinGeckoSourceErrors(t *testing.T) {
	source := NewCoinGeckoSource()
	_, err := source.FetchPrice(context.Background(), "doge", "usd")
	assert.ErrorContains(t, err, "unsupported asset")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	source = &CoinGeckoSource{BaseURL: server.URL}
	_, err = source.FetchPrice(context.Background(), "kda", "usd")
	assert.ErrorContains(t, err, "no price")
}

func TestCoinPaprikaSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickers/kda-kadena", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("quotes"))
		w.Write([]byte(`{"quotes": {"USD": {"price": 0.97}}}`))
	}))
	defer server.Close()

	source := &CoinPaprikaSource{BaseURL: server.URL}
	price, err := source.FetchPrice(context.Background(), "kda", "usd")
	require.NoError(t, err)
	assert.Equal(t, 0.97, price)
}

func TestKrakenSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/public/Ticker", r.URL.Path)
		assert.Equal(t, "ETHUSD", r.URL.Query().Get("pair"))
		w.Write([]byte(`{"error": [], "result": {"XETHZUSD": {"c": ["1850.42", "0.5"]}}}`))
	}))
	defer server.Close()

	source := &KrakenSource{BaseURL: server.URL}
	price, err := source.FetchPrice(context.Background(), "eth", "usd")
	require.NoError(t, err)
	assert.Equal(t, 1850.42, price)
}

func TestKrakenSourceErrors(t *testing.T) {
	source := NewKrakenSource()

	_, err := source.FetchPrice(context.Background(), "eth", "eur")
	assert.ErrorContains(t, err, "unsupported currency")

	_, err = source.FetchPrice(context.Background(), "kda", "usd")
	assert.ErrorContains(t, err, "unsupported asset")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": ["EQuery:Unknown asset pair"], "result": {}}`))
	}))
	defer server.Close()

	source = &KrakenSource{BaseURL: server.URL}
	_, err = source.FetchPrice(context.Background(), "trb", "usd")
	assert.ErrorContains(t, err, "EQuery")
}

func TestFetchJSONHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	source := &CoinGeckoSource{BaseURL: server.URL}
	_, err := source.FetchPrice(context.Background(), "kda", "usd")
	assert.ErrorContains(t, err, "429")
}
