package ui

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/dattu2507/matching-engine-project/internal/market"
	"github.com/google/go-cmp/cmp"
)

func TestSetBBOPrettyPrints(t *testing.T) {
	b := NewBoard(10)
	b.SetBBO(json.RawMessage(`{"best_bid":{"price":100.5,"qty":1.0},"best_ask":{"price":101.0,"qty":1.2}}`))

	want := `{
  "best_bid": {
    "price": 100.5,
    "qty": 1
  },
  "best_ask": {
    "price": 101,
    "qty": 1.2
  }
}`
	if b.BBO() != want {
		t.Fatalf("bbo text\n got %s\nwant %s", b.BBO(), want)
	}
}

func TestPrettyJSONNumbers(t *testing.T) {
	raw := json.RawMessage(`{"note":"1.0 -2.50 \"3.0\"","vals":[1.0,-2.50,1e3,1.5E-7,0.0,-0,2e21,100]}`)
	want := `{
  "note": "1.0 -2.50 \"3.0\"",
  "vals": [
    1,
    -2.5,
    1000,
    1.5e-7,
    0,
    0,
    2e+21,
    100
  ]
}`
	if got := prettyJSON(raw); got != want {
		t.Fatalf("pretty json\n got %s\nwant %s", got, want)
	}
}

func TestSetBBOMissingOrInvalid(t *testing.T) {
	b := NewBoard(10)
	b.SetBBO(nil)
	if b.BBO() != "" {
		t.Fatalf("expected empty bbo, got %q", b.BBO())
	}

	b.SetBBO(json.RawMessage(`null`))
	if b.BBO() != "null" {
		t.Fatalf("expected null, got %q", b.BBO())
	}

	b.SetBBO(json.RawMessage(`{broken`))
	if b.BBO() != "{broken" {
		t.Fatalf("expected raw text for invalid JSON, got %q", b.BBO())
	}
}

func TestPrependTrade(t *testing.T) {
	b := NewBoard(10)
	b.PrependTrade(market.Trade{Side: "buy", Qty: 1, Price: 100})
	b.PrependTrade(market.Trade{Side: "sell", Qty: 0.5, Price: 100.25})

	var lines []string
	for _, tr := range b.Trades() {
		side, rest := TradeLine(tr)
		lines = append(lines, side+rest)
	}
	want := []string{"sell 0.5 @ 100.25", "buy 1 @ 100"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("trade lines mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{100, 100.25}, b.PriceHistory()); diff != "" {
		t.Fatalf("price history mismatch (-want +got):\n%s", diff)
	}
}

func TestPrependTradeBounded(t *testing.T) {
	b := NewBoard(3)
	for i := 1; i <= 5; i++ {
		b.PrependTrade(market.Trade{Side: "buy", Qty: float64(i), Price: 1})
	}
	trades := b.Trades()
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	if trades[0].Qty != 5 || trades[2].Qty != 3 {
		t.Fatalf("expected newest trades kept, got %+v", trades)
	}
}

func TestReplaceTrades(t *testing.T) {
	b := NewBoard(10)
	b.PrependTrade(market.Trade{Side: "buy", Qty: 9, Price: 9})

	b.ReplaceTrades([]market.Trade{
		{Side: "sell", Qty: 2, Price: 99},
		{Side: "buy", Qty: 1, Price: 100},
	})

	var lines []string
	for _, tr := range b.Trades() {
		side, rest := TradeLine(tr)
		lines = append(lines, side+rest)
	}
	want := []string{"sell 2 @ 99", "buy 1 @ 100"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("trade lines mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{99, 100}, b.PriceHistory()); diff != "" {
		t.Fatalf("price history mismatch (-want +got):\n%s", diff)
	}

	b.ReplaceTrades(nil)
	if len(b.Trades()) != 0 {
		t.Fatalf("expected empty list, got %+v", b.Trades())
	}
}

func TestReplaceTradesKeepsMostRecent(t *testing.T) {
	b := NewBoard(2)
	b.ReplaceTrades([]market.Trade{
		{Side: "buy", Qty: 1, Price: 100},
		{Side: "sell", Qty: 2, Price: 101},
		{Side: "buy", Qty: 3, Price: 102},
	})

	var qtys []float64
	for _, tr := range b.Trades() {
		qtys = append(qtys, tr.Qty)
	}
	if diff := cmp.Diff([]float64{2, 3}, qtys); diff != "" {
		t.Fatalf("kept trades mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{101, 102}, b.PriceHistory()); diff != "" {
		t.Fatalf("price history mismatch (-want +got):\n%s", diff)
	}
}

func TestPriceHistoryBounded(t *testing.T) {
	b := NewBoard(1)
	for i := 0; i < maxHistorySize+10; i++ {
		b.PrependTrade(market.Trade{Price: float64(i)})
	}
	prices := b.PriceHistory()
	if len(prices) != maxHistorySize {
		t.Fatalf("expected %d prices, got %d", maxHistorySize, len(prices))
	}
	if prices[len(prices)-1] != float64(maxHistorySize+9) {
		t.Fatalf("expected latest price last, got %v", prices[len(prices)-1])
	}
}

func TestResponses(t *testing.T) {
	b := NewBoard(10)
	b.SetOrderResponse(json.RawMessage(`{"order_id":"x","status":"filled"}`))
	if b.OrderResponse() != "{\n  \"order_id\": \"x\",\n  \"status\": \"filled\"\n}" {
		t.Fatalf("unexpected order response %q", b.OrderResponse())
	}

	b.SetCancelResponse(json.RawMessage(`{"message":"Canceled"}`))
	if b.CancelResponse() != "{\n  \"message\": \"Canceled\"\n}" {
		t.Fatalf("unexpected cancel response %q", b.CancelResponse())
	}

	b.SetCancelError()
	if b.CancelResponse() != "Error cancelling order." {
		t.Fatalf("unexpected cancel error text %q", b.CancelResponse())
	}
}

func TestDepthSummary(t *testing.T) {
	b := NewBoard(10)
	if !strings.Contains(b.DepthSummary(), "no bids or asks") {
		t.Fatalf("unexpected empty summary %q", b.DepthSummary())
	}

	b.SetDepth(market.Depth{
		Bids: []market.Level{{Price: 100, Qty: 2}},
		Asks: []market.Level{{Price: 101, Qty: 1.5}},
	})
	want := fmt.Sprintf("Bid 100 x 2 | Ask 101 x 1.5 | Spread %.4f%%", 100.0/101)
	if b.DepthSummary() != want {
		t.Fatalf("summary\n got %q\nwant %q", b.DepthSummary(), want)
	}
}
