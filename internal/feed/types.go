package feed

import "encoding/json"

// Message types pushed by the matching engine on /ws.
const (
	TypeBBO   = "bbo"
	TypeTrade = "trade"
)

// envelope is the common shape of every feed message. Trade fields sit at
// the top level next to "type", so trades are decoded from the whole frame.
type envelope struct {
	Type   string          `json:"type"`
	Symbol string          `json:"symbol"`
	BBO    json.RawMessage `json:"bbo"`
}
