package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/polyshadow/engine/internal/store"
)

// wsMessage is the base envelope of a WebSocket message.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsTrade represents trade data from the market channel. Field names vary
// between event types, so alternates are listed and coalesced.
type wsTrade struct {
	ID              string `json:"id"`
	TradeID         string `json:"trade_id"`
	Market          string `json:"market"`
	AssetID         string `json:"asset_id"`
	Maker           string `json:"maker"`
	MakerAddress    string `json:"maker_address"`
	Taker           string `json:"taker"`
	TakerAddress    string `json:"taker_address"`
	Side            string `json:"side"`
	Size            string `json:"size"`
	Price           string `json:"price"`
	Outcome         string `json:"outcome"`
	Timestamp       string `json:"timestamp"`
	TransactionHash string `json:"transaction_hash"`
}

// parseWSMessage extracts trade events from a raw WebSocket message.
// Non-trade messages return the message type with no events.
func parseWSMessage(data []byte, index *MarketIndex) ([]store.TradeEvent, string, error) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, "", fmt.Errorf("unmarshal message: %w", err)
	}

	if msg.Type != "trade" {
		return nil, msg.Type, nil
	}

	// Payload may be a single trade or an array
	var raw []wsTrade
	if err := json.Unmarshal(msg.Data, &raw); err != nil {
		var single wsTrade
		if err := json.Unmarshal(msg.Data, &single); err != nil {
			return nil, msg.Type, fmt.Errorf("unmarshal trade payload: %w", err)
		}
		raw = []wsTrade{single}
	}

	events := make([]store.TradeEvent, 0, len(raw))
	for _, t := range raw {
		ev, ok := convertWSTrade(t, index)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	return events, msg.Type, nil
}

// convertWSTrade builds a TradeEvent from a WebSocket trade. Trades whose
// market is not in the index (not a tracked politics market) are skipped.
func convertWSTrade(t wsTrade, index *MarketIndex) (store.TradeEvent, bool) {
	market, ok := index.ByCondition(t.Market)
	if !ok {
		market, ok = index.ByToken(t.AssetID)
		if !ok {
			return store.TradeEvent{}, false
		}
	}

	price := parseFloat(t.Price)
	size := parseFloat(t.Size)
	wallet := coalesce(t.TakerAddress, t.Taker, t.MakerAddress, t.Maker)

	tradeID := coalesce(t.TransactionHash, t.TradeID, t.ID)
	if tradeID == "" || wallet == "" {
		return store.TradeEvent{}, false
	}

	return store.TradeEvent{
		TradeID:        tradeID,
		MarketID:       market.ConditionID,
		MarketQuestion: market.Question,
		MarketSlug:     market.Slug,
		Category:       PoliticsCategory,
		Outcome:        t.Outcome,
		Side:           t.Side,
		Price:          price,
		CurrentOdds:    outcomePrice(market.OutcomePriceMap(), t.Outcome),
		SizeUSD:        price * size,
		Wallet:         wallet,
		Timestamp:      parseWSTimestamp(t.Timestamp),
	}, true
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseWSTimestamp handles Unix second/millisecond strings and RFC3339.
func parseWSTimestamp(v string) time.Time {
	if v == "" {
		return time.Now()
	}

	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return parseUnixTimestamp(ts)
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}

	return time.Now()
}
