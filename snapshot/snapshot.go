package snapshot

import "matchbook/domain/orderbook"

// Level is one aggregated price on a side.
type Level struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Orders   int     `json:"orders"`
}

// Quote is a price that may be absent; Ok is false when it is.
type Quote struct {
	Price float64 `json:"price"`
	Ok    bool    `json:"ok"`
}

// Depth is a point-in-time view of both sides, each listed best price
// first: bids descending, asks ascending.
type Depth struct {
	Seq     uint64  `json:"seq"`
	Bids    []Level `json:"bids"`
	Asks    []Level `json:"asks"`
	BestBid Quote   `json:"best_bid"`
	BestAsk Quote   `json:"best_ask"`
	Spread  Quote   `json:"spread"` // absent unless both sides rest
	// BidQty and AskQty cover the whole side, not only the captured levels.
	BidQty int64 `json:"bid_qty"`
	AskQty int64 `json:"ask_qty"`
}

// Capture copies up to depth levels per side. depth <= 0 captures every
// level. The caller must hold whatever lock guards the book.
func Capture(book *orderbook.OrderBook, depth int) Depth {
	d := Depth{
		Seq:    book.LastSeq(),
		Bids:   collect(book, orderbook.Bid, depth),
		Asks:   collect(book, orderbook.Ask, depth),
		BidQty: book.Depth(orderbook.Bid),
		AskQty: book.Depth(orderbook.Ask),
	}
	d.BestBid.Price, d.BestBid.Ok = book.BestQuote(orderbook.Bid)
	d.BestAsk.Price, d.BestAsk.Ok = book.BestQuote(orderbook.Ask)
	d.Spread.Price, d.Spread.Ok = book.Spread()
	return d
}

func collect(book *orderbook.OrderBook, side orderbook.BookSide, depth int) []Level {
	n := book.Levels(side)
	if depth > 0 && depth < n {
		n = depth
	}
	out := make([]Level, 0, n)
	book.WalkLevels(side, func(lvl *orderbook.PriceLevel) bool {
		out = append(out, Level{Price: lvl.Price, Quantity: lvl.TotalQty, Orders: lvl.OrderCount})
		return len(out) < n
	})
	return out
}

// Empty reports whether neither side has resting quantity.
func (d Depth) Empty() bool {
	return len(d.Bids) == 0 && len(d.Asks) == 0
}
