// internal/market/market.go
package market

import (
	"encoding/json"
	"fmt"
	"time"
)

// Trade is a single execution as reported by the matching engine. The live
// feed names the taker side "side", the REST trade list "aggressor_side".
type Trade struct {
	Timestamp    time.Time `json:"timestamp"`
	TradeID      string    `json:"trade_id,omitempty"`
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"`
	MakerOrderID string    `json:"maker_order_id,omitempty"`
	TakerOrderID string    `json:"taker_order_id,omitempty"`
	Price        float64   `json:"price"`
	Qty          float64   `json:"qty"`
}

func (t *Trade) UnmarshalJSON(b []byte) error {
	type plain Trade
	var raw struct {
		plain
		AggressorSide string `json:"aggressor_side"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = Trade(raw.plain)
	if t.Side == "" {
		t.Side = raw.AggressorSide
	}
	return nil
}

type Level struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// Depth is the aggregated book as served by /book/depth. Bids are ordered
// highest first, asks lowest first.
type Depth struct {
	Bids []Level
	Asks []Level
}

func (d *Depth) UnmarshalJSON(b []byte) error {
	var raw struct {
		Bids [][2]float64 `json:"bids"`
		Asks [][2]float64 `json:"asks"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("depth: %w", err)
	}
	d.Bids = toLevels(raw.Bids)
	d.Asks = toLevels(raw.Asks)
	return nil
}

func toLevels(pairs [][2]float64) []Level {
	levels := make([]Level, 0, len(pairs))
	for _, p := range pairs {
		levels = append(levels, Level{Price: p[0], Qty: p[1]})
	}
	return levels
}
