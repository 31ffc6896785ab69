package orderbook

// Match is one slice of a fill taken from a single resting order.
type Match struct {
	Price float64
	Qty   int64
	Seq   uint64 // arrival sequence of the resting order
}

// Execution is the aggregate outcome of one HandleOrder call.
type Execution struct {
	Filled   int64
	Notional float64
	Matches  []Match
}

// AvgPrice is Notional/Filled, or 0 when nothing traded.
func (e Execution) AvgPrice() float64 {
	if e.Filled == 0 {
		return 0
	}
	return e.Notional / float64(e.Filled)
}

// HandleOrder consumes an incoming order against the opposite side under
// price-then-time priority. limit is ignored for Market orders. Whatever
// does not fill is dropped; the aggressor never rests.
//
// An empty opposite side is not an error: the result is a zero
// Execution and the book is untouched.
func (b *OrderBook) HandleOrder(typ OrderType, qty int64, side Side, limit float64) (Execution, error) {
	if !typ.Valid() {
		return Execution{}, invalidArg("unknown order type %d", typ)
	}
	if !side.Valid() {
		return Execution{}, invalidArg("unknown order side %d", side)
	}
	if err := validateQty(qty); err != nil {
		return Execution{}, err
	}
	if typ == Limit {
		if err := validatePrice(limit); err != nil {
			return Execution{}, err
		}
	}

	book := b.tree(side.Opposite())
	if book.Size() == 0 {
		return Execution{}, nil
	}

	return b.fill(book, b.resting(side.Opposite()), priceGate(typ, side, limit), qty), nil
}

// priceGate reports whether a level may trade. Levels arrive best first,
// so the first refusal ends the walk.
func priceGate(typ OrderType, side Side, limit float64) func(float64) bool {
	switch {
	case typ == Market:
		return func(float64) bool { return true }
	case side == Buy:
		return func(p float64) bool { return p <= limit }
	default:
		return func(p float64) bool { return p >= limit }
	}
}

// fill walks book in priority order until qty is exhausted, the gate
// refuses a level, or the side runs dry. Consumed orders are released
// and emptied levels deleted before moving on.
func (b *OrderBook) fill(book *RBTree, resting *int64, canTrade func(float64) bool, qty int64) Execution {
	var exec Execution

	for qty > 0 {
		lvl := book.Best()
		if lvl == nil || !canTrade(lvl.Price) {
			break
		}

		for qty > 0 && !lvl.Empty() {
			head := lvl.head
			n := min(qty, head.Qty)

			exec.Filled += n
			exec.Notional += float64(n) * lvl.Price
			exec.Matches = append(exec.Matches, Match{Price: lvl.Price, Qty: n, Seq: head.Seq})
			qty -= n
			*resting -= n

			if done := lvl.fillHead(n); done != nil {
				b.pool.Put(done)
			}
		}

		if lvl.Empty() {
			book.DeleteLevel(lvl.Price)
		}
	}

	return exec
}
