// internal/market/spread.go
package market

import "fmt"

// TopOfBook returns the best bid and best ask of the book.
func TopOfBook(d Depth) (bid, ask Level, err error) {
	if len(d.Bids) == 0 || len(d.Asks) == 0 {
		return Level{}, Level{}, fmt.Errorf("no bids or asks found")
	}

	bid = d.Bids[0]
	ask = d.Asks[0]

	// The engine sends sorted levels, but don't rely on it.
	for _, l := range d.Bids[1:] {
		if l.Price > bid.Price {
			bid = l
		}
	}
	for _, l := range d.Asks[1:] {
		if l.Price < ask.Price {
			ask = l
		}
	}

	return bid, ask, nil
}

func SpreadPercentage(bid, ask float64) float64 {
	if ask == 0 {
		return 0
	}
	return (ask - bid) / ask * 100
}
