package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dattu2507/matching-engine-project/internal/market"
)

// CancelErrorText is shown in place of the cancel response when the request
// fails or the engine answers with something that is not JSON.
const CancelErrorText = "Error cancelling order."

// Board is everything the dashboard displays. It is not safe for concurrent
// use; the dashboard only touches it from the update listener.
type Board struct {
	bbo            string
	orderResponse  string
	cancelResponse string
	trades         []market.Trade // newest first
	prices         []float64      // oldest first
	depth          market.Depth
	maxTrades      int
}

func NewBoard(maxTrades int) *Board {
	if maxTrades <= 0 {
		maxTrades = maxHistorySize
	}
	return &Board{maxTrades: maxTrades}
}

// SetBBO shows the top of book as indented JSON.
func (b *Board) SetBBO(raw json.RawMessage) {
	b.bbo = prettyJSON(raw)
}

func (b *Board) BBO() string { return b.bbo }

// PrependTrade puts a live trade at the top of the list.
func (b *Board) PrependTrade(t market.Trade) {
	b.trades = append([]market.Trade{t}, b.trades...)
	if len(b.trades) > b.maxTrades {
		b.trades = b.trades[:b.maxTrades]
	}
	b.addPrice(t.Price)
}

// ReplaceTrades drops the current list and shows trades in the given order.
// trades is oldest first, so only the most recent maxTrades are kept.
func (b *Board) ReplaceTrades(trades []market.Trade) {
	if len(trades) > b.maxTrades {
		trades = trades[len(trades)-b.maxTrades:]
	}
	b.trades = append([]market.Trade(nil), trades...)
	b.prices = b.prices[:0]
	for _, t := range trades {
		b.addPrice(t.Price)
	}
}

func (b *Board) addPrice(p float64) {
	if len(b.prices) >= maxHistorySize {
		b.prices = b.prices[1:]
	}
	b.prices = append(b.prices, p)
}

func (b *Board) Trades() []market.Trade { return b.trades }

// PriceHistory returns trade prices, oldest first.
func (b *Board) PriceHistory() []float64 { return b.prices }

func (b *Board) SetOrderResponse(raw json.RawMessage) {
	b.orderResponse = prettyJSON(raw)
}

func (b *Board) OrderResponse() string { return b.orderResponse }

func (b *Board) SetCancelResponse(raw json.RawMessage) {
	b.cancelResponse = prettyJSON(raw)
}

func (b *Board) SetCancelError() {
	b.cancelResponse = CancelErrorText
}

func (b *Board) CancelResponse() string { return b.cancelResponse }

func (b *Board) SetDepth(d market.Depth) {
	b.depth = d
}

func (b *Board) Depth() market.Depth { return b.depth }

// DepthSummary describes the inside of the book on one line.
func (b *Board) DepthSummary() string {
	bid, ask, err := market.TopOfBook(b.depth)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Bid %s x %s | Ask %s x %s | Spread %.4f%%",
		formatNumber(bid.Price), formatNumber(bid.Qty),
		formatNumber(ask.Price), formatNumber(ask.Qty),
		market.SpreadPercentage(bid.Price, ask.Price),
	)
}

// TradeLine splits a trade into the side, shown emphasised, and the rest of
// the line: "<side> <qty> @ <price>".
func TradeLine(t market.Trade) (side, rest string) {
	return t.Side, fmt.Sprintf(" %s @ %s", formatNumber(t.Qty), formatNumber(t.Price))
}

// formatNumber prints v the way a browser prints a number: shortest
// round-trip digits, exponent form only below 1e-6 or from 1e21 up.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	// Go pads the exponent to two digits: 1e-07 -> 1e-7
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// prettyJSON indents raw with two spaces. Number literals are rewritten by
// formatNumber so 1.0 shows as 1; key order and strings are kept as sent.
func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, normalizeNumbers(raw), "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// normalizeNumbers rewrites every number literal outside of strings.
// Malformed input is returned untouched for json.Indent to reject.
func normalizeNumbers(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c == '"':
			j := i + 1
			for j < len(raw) && raw[j] != '"' {
				if raw[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(raw) {
				return raw
			}
			out = append(out, raw[i:j+1]...)
			i = j + 1
		case c == '-' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(raw) && strings.IndexByte("0123456789.eE+-", raw[j]) >= 0 {
				j++
			}
			v, err := strconv.ParseFloat(string(raw[i:j]), 64)
			if err != nil {
				return raw
			}
			out = append(out, formatNumber(v)...)
			i = j
		default:
			out = append(out, c)
			i++
		}
	}
	return out
}
