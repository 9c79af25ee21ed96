// Package ingest fetches markets and trades from the Polymarket public APIs
// and streams live trade activity over WebSocket.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// Market represents a Polymarket market from the Gamma API.
type Market struct {
	ConditionID   string `json:"conditionId"`
	Question      string `json:"question"`
	Slug          string `json:"slug"`
	Volume        string `json:"volume"`
	Outcomes      string `json:"outcomes"`      // JSON array as string
	OutcomePrices string `json:"outcomePrices"` // JSON array as string
	ClobTokenIDs  string `json:"clobTokenIds"`  // JSON array as string
}

// OutcomePriceMap parses the outcome/price parallel arrays into a map.
func (m Market) OutcomePriceMap() map[string]float64 {
	outcomes := parseListField(m.Outcomes)
	prices := parseListField(m.OutcomePrices)

	result := make(map[string]float64, len(outcomes))
	for i, outcome := range outcomes {
		if i < len(prices) {
			result[outcome] = parseFloat(prices[i])
		}
	}
	return result
}

// outcomePrice resolves the current price for an outcome, tolerating
// case differences between the trade feed and market metadata.
func outcomePrice(prices map[string]float64, outcome string) float64 {
	if p, ok := prices[outcome]; ok {
		return p
	}
	for name, p := range prices {
		if strings.EqualFold(name, outcome) {
			return p
		}
	}
	return 0
}

// parseListField parses a field that may be a JSON array string or comma-separated.
func parseListField(value string) []string {
	if value == "" {
		return nil
	}
	var parsed []string
	if err := json.Unmarshal([]byte(value), &parsed); err == nil {
		return parsed
	}
	return strings.Split(value, ",")
}

// fetchPoliticalMarkets fetches the top open politics markets by volume.
func (c *Client) fetchPoliticalMarkets(ctx context.Context) ([]Market, error) {
	url := fmt.Sprintf("%s/markets?tag=%s&closed=false&order=volume&ascending=false&limit=%d",
		c.gammaURL, PoliticsCategory, c.marketLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var markets []Market
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}

	return markets, nil
}

// MarketIndex maps condition IDs and CLOB token IDs to market metadata,
// shared between the poller and the WebSocket listener.
type MarketIndex struct {
	mu          sync.RWMutex
	byCondition map[string]Market
	byToken     map[string]string // tokenID -> conditionID
}

// NewMarketIndex creates an empty index.
func NewMarketIndex() *MarketIndex {
	return &MarketIndex{
		byCondition: make(map[string]Market),
		byToken:     make(map[string]string),
	}
}

// Update replaces the indexed markets.
func (idx *MarketIndex) Update(markets []Market) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.byCondition = make(map[string]Market, len(markets))
	idx.byToken = make(map[string]string)

	for _, m := range markets {
		idx.byCondition[m.ConditionID] = m
		for _, tokenID := range parseListField(m.ClobTokenIDs) {
			idx.byToken[tokenID] = m.ConditionID
		}
	}
}

// ByCondition looks up a market by condition ID.
func (idx *MarketIndex) ByCondition(conditionID string) (Market, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	m, ok := idx.byCondition[conditionID]
	return m, ok
}

// ByToken looks up a market by CLOB token ID.
func (idx *MarketIndex) ByToken(tokenID string) (Market, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	conditionID, ok := idx.byToken[tokenID]
	if !ok {
		return Market{}, false
	}
	return idx.byCondition[conditionID], true
}

// TokenIDs returns all indexed CLOB token IDs, for WebSocket subscription.
func (idx *MarketIndex) TokenIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := make([]string, 0, len(idx.byToken))
	for id := range idx.byToken {
		ids = append(ids, id)
	}
	return ids
}
