package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/polyshadow/engine/internal/store"
)

const (
	// GammaAPIBaseURL is the Polymarket market-discovery endpoint.
	GammaAPIBaseURL = "https://gamma-api.polymarket.com"
	// DataAPIBaseURL is the Polymarket public trade-history endpoint.
	DataAPIBaseURL = "https://data-api.polymarket.com"
	// PoliticsCategory is the tag used to filter markets.
	PoliticsCategory = "politics"

	defaultMarketLimit     = 20
	defaultTradesPerMarket = 50
)

// DataAPITrade represents one trade from the Data API.
type DataAPITrade struct {
	TransactionHash string  `json:"transactionHash"`
	ConditionID     string  `json:"conditionId"`
	ProxyWallet     string  `json:"proxyWallet"`
	Side            string  `json:"side"`
	Outcome         string  `json:"outcome"`
	Price           float64 `json:"price"`
	Size            float64 `json:"size"`
	Timestamp       int64   `json:"timestamp"`
	Name            string  `json:"name"`
}

// Client fetches politics markets and their recent trades.
type Client struct {
	gammaURL        string
	dataURL         string
	http            *http.Client
	marketLimit     int
	tradesPerMarket int
	index           *MarketIndex
}

// NewClient creates a Client. Empty URLs fall back to the public endpoints.
func NewClient(gammaURL, dataURL string, marketLimit, tradesPerMarket int) *Client {
	if gammaURL == "" {
		gammaURL = GammaAPIBaseURL
	}
	if dataURL == "" {
		dataURL = DataAPIBaseURL
	}
	if marketLimit <= 0 {
		marketLimit = defaultMarketLimit
	}
	if tradesPerMarket <= 0 {
		tradesPerMarket = defaultTradesPerMarket
	}

	return &Client{
		gammaURL:        gammaURL,
		dataURL:         dataURL,
		http:            &http.Client{Timeout: 15 * time.Second},
		marketLimit:     marketLimit,
		tradesPerMarket: tradesPerMarket,
		index:           NewMarketIndex(),
	}
}

// Index returns the shared market index, kept current by each fetch cycle.
func (c *Client) Index() *MarketIndex {
	return c.index
}

// FetchRecentPoliticalTrades fetches the top politics markets and their
// recent trades. The same trade may be returned across consecutive calls;
// de-duplication is the caller's responsibility.
func (c *Client) FetchRecentPoliticalTrades(ctx context.Context) ([]store.TradeEvent, error) {
	markets, err := c.fetchPoliticalMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("market discovery: %w", err)
	}
	c.index.Update(markets)

	var events []store.TradeEvent
	for _, market := range markets {
		trades, err := c.fetchMarketTrades(ctx, market.ConditionID)
		if err != nil {
			// One bad market must not abort the batch
			slog.Warn("trades_fetch_failed",
				"market", market.Slug,
				"error", err,
			)
			continue
		}

		prices := market.OutcomePriceMap()
		for _, t := range trades {
			events = append(events, convertTrade(t, market, prices))
		}
	}

	slog.Debug("trades_fetched", "markets", len(markets), "trades", len(events))
	return events, nil
}

// fetchMarketTrades fetches recent trades for one market from the Data API.
func (c *Client) fetchMarketTrades(ctx context.Context, conditionID string) ([]DataAPITrade, error) {
	url := fmt.Sprintf("%s/trades?market=%s&limit=%d", c.dataURL, conditionID, c.tradesPerMarket)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var trades []DataAPITrade
	if err := json.NewDecoder(resp.Body).Decode(&trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}

	return trades, nil
}

// convertTrade builds a TradeEvent from a Data API trade and its market.
func convertTrade(t DataAPITrade, market Market, prices map[string]float64) store.TradeEvent {
	conditionID := t.ConditionID
	if conditionID == "" {
		conditionID = market.ConditionID
	}

	return store.TradeEvent{
		TradeID:        t.TransactionHash,
		MarketID:       conditionID,
		MarketQuestion: market.Question,
		MarketSlug:     market.Slug,
		Category:       PoliticsCategory,
		Outcome:        t.Outcome,
		Side:           t.Side,
		Price:          t.Price,
		CurrentOdds:    outcomePrice(prices, t.Outcome),
		SizeUSD:        t.Price * t.Size,
		Wallet:         t.ProxyWallet,
		TraderName:     t.Name,
		Timestamp:      parseUnixTimestamp(t.Timestamp),
	}
}

// parseUnixTimestamp converts a Unix timestamp in seconds or milliseconds.
func parseUnixTimestamp(ts int64) time.Time {
	if ts <= 0 {
		return time.Now()
	}
	if ts > 1e12 {
		return time.UnixMilli(ts)
	}
	return time.Unix(ts, 0)
}

// parseFloat safely parses a string to float64.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
