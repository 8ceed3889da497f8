// Package oracle implements a client for querying USD coin quotes from an
// external price service (CoinGecko-compatible simple-price API).
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"coinvault/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrPriceUnavailable is returned for any non-200 response, missing quote
// field, or transport failure. There is no fallback pricing; callers may
// retry freely since price lookups carry no side effects.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceSource is the ledger engine's view of the oracle.
type PriceSource interface {
	GetPrice(ctx context.Context, coin string) (decimal.Decimal, error)
}

// Client queries the price service over HTTP and caches quotes for a short
// TTL to bound the call rate against the upstream.
type Client struct {
	client  *resty.Client
	baseURL string
	cache   *quoteCache
}

func NewClient(cfg models.OracleConfig) *Client {
	client := resty.New().SetTimeout(cfg.RequestTimeout)
	zap.L().Info("Price oracle client initialized", zap.String("base_url", cfg.BaseURL))
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cache:   newQuoteCache(cfg.QuoteTTL),
	}
}

// GetPrice returns the current USD unit price for a coin.
func (c *Client) GetPrice(ctx context.Context, coin string) (decimal.Decimal, error) {
	coin = strings.ToLower(coin)

	if price, ok := c.cache.get(coin); ok {
		return price, nil
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           coin,
			"vs_currencies": "usd",
		}).
		Get(c.baseURL + "/simple/price")
	if err != nil {
		zap.L().Error("Price quote request failed", zap.String("coin", coin), zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, coin, err)
	}
	if response.StatusCode() != 200 {
		zap.L().Error("Price quote request rejected",
			zap.String("coin", coin),
			zap.Int("status", response.StatusCode()))
		return decimal.Zero, fmt.Errorf("%w: %s: status %d", ErrPriceUnavailable, coin, response.StatusCode())
	}

	var quotes map[string]map[string]json.Number
	if err := json.Unmarshal(response.Body(), &quotes); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: malformed response: %v", ErrPriceUnavailable, coin, err)
	}

	quote, ok := quotes[coin]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s: no usd quote in response", ErrPriceUnavailable, coin)
	}
	price, err := decimal.NewFromString(quote.String())
	if err != nil || !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s: bad quote %q", ErrPriceUnavailable, coin, quote.String())
	}

	c.cache.set(coin, price)
	zap.L().Debug("Fetched price quote",
		zap.String("coin", coin),
		zap.String("usd", price.String()))
	return price, nil
}

// Func adapts a plain function to PriceSource. Used by tests and tooling.
type Func func(ctx context.Context, coin string) (decimal.Decimal, error)

func (f Func) GetPrice(ctx context.Context, coin string) (decimal.Decimal, error) {
	return f(ctx, coin)
}
