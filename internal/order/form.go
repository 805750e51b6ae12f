package order

import (
	"regexp"
	"strconv"
	"strings"
)

// Form is the order entry form exactly as typed by the user.
type Form struct {
	Side  string
	Type  string
	Price string
	Qty   string
}

// Request is the body of POST /order/submit. Qty and Price are pointers so
// that an empty price, or a value that is not a number, goes out as null.
type Request struct {
	Symbol    string   `json:"symbol"`
	Side      string   `json:"side"`
	Qty       *float64 `json:"qty"`
	OrderType string   `json:"order_type"`
	Price     *float64 `json:"price"`
}

// Request coerces the form fields. Nothing is validated here, the engine
// rejects what it does not accept.
func (f Form) Request(symbol string) Request {
	r := Request{
		Symbol:    symbol,
		Side:      strings.ToLower(f.Side),
		OrderType: strings.ToLower(f.Type),
		Qty:       parseNumber(f.Qty),
	}
	if f.Price != "" {
		r.Price = parseNumber(f.Price)
	}
	return r
}

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseNumber reads the leading number of s, ignoring anything after it,
// so "1.5btc" is 1.5. It returns nil when s does not start with a number.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	m := numberPrefix.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}
