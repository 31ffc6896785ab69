package orderbook

import (
	"matchbook/infra/memory"
	"matchbook/infra/sequence"
)

// OrderBook is single-writer and deterministic. Callers that share one
// across goroutines must serialise mutators themselves (see service).
type OrderBook struct {
	Bids *RBTree
	Asks *RBTree

	// resting quantity per side, kept in step with the level totals
	bidQty int64
	askQty int64

	seq  *sequence.Sequencer
	pool *memory.Pool[Order]
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		Bids: NewRBTree(Descending),
		Asks: NewRBTree(Ascending),
		seq:  sequence.New(0),
		pool: memory.NewPool(func() *Order { return &Order{} }),
	}
}

// AddOrder rests qty at price on the given side, behind every order
// already queued at that price. It never matches, even if the book ends
// up crossed.
func (b *OrderBook) AddOrder(qty int64, price float64, side BookSide) error {
	if !side.Valid() {
		return invalidArg("unknown book side %d", side)
	}
	if err := validateQty(qty); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	total := b.resting(side)
	if err := validateCapacity(*total, qty); err != nil {
		return err
	}

	o := b.pool.Get()
	o.Qty = qty
	o.Price = price
	o.Side = side
	o.Seq = b.seq.Next()

	b.tree(side).UpsertLevel(price).enqueue(o)
	*total += qty
	return nil
}

// BestQuote returns the best bid (highest) or best ask (lowest).
// ok is false when that side has no resting orders.
func (b *OrderBook) BestQuote(side BookSide) (price float64, ok bool) {
	if !side.Valid() {
		return 0, false
	}
	lvl := b.tree(side).Best()
	if lvl == nil {
		return 0, false
	}
	return lvl.Price, true
}

// Spread is best ask minus best bid; negative when the book is crossed.
func (b *OrderBook) Spread() (float64, bool) {
	bid, okBid := b.BestQuote(Bid)
	ask, okAsk := b.BestQuote(Ask)
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

// Levels returns the number of distinct prices resting on a side.
func (b *OrderBook) Levels(side BookSide) int {
	if !side.Valid() {
		return 0
	}
	return b.tree(side).Size()
}

// Depth returns the total resting quantity on a side.
func (b *OrderBook) Depth(side BookSide) int64 {
	if !side.Valid() {
		return 0
	}
	return *b.resting(side)
}

// WalkLevels visits a side best price first: asks ascending, bids
// descending. Levels must be treated as read-only.
func (b *OrderBook) WalkLevels(side BookSide, fn func(*PriceLevel) bool) {
	if !side.Valid() {
		return
	}
	b.tree(side).Walk(fn)
}

// LastSeq is the arrival sequence of the most recently added order.
func (b *OrderBook) LastSeq() uint64 {
	return b.seq.Current()
}

func (b *OrderBook) resting(side BookSide) *int64 {
	if side == Bid {
		return &b.bidQty
	}
	return &b.askQty
}

func (b *OrderBook) tree(side BookSide) *RBTree {
	if side == Bid {
		return b.Bids
	}
	return b.Asks
}
