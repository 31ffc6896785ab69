package orderbook

// BookSide names the resting side an order lives on.
type BookSide uint8

// Side is the aggressor side of an incoming order.
type Side uint8

type OrderType uint8

const (
	Bid BookSide = iota
	Ask
)

const (
	Buy Side = iota
	Sell
)

const (
	Market OrderType = iota
	Limit
)

func (s BookSide) Valid() bool { return s == Bid || s == Ask }

func (s BookSide) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

func (s Side) Valid() bool { return s == Buy || s == Sell }

// Opposite returns the book an aggressor on this side trades against.
func (s Side) Opposite() BookSide {
	if s == Buy {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

func (t OrderType) Valid() bool { return t == Market || t == Limit }

func (t OrderType) String() string {
	switch t {
	case Market:
		return "market"
	case Limit:
		return "limit"
	default:
		return "unknown"
	}
}

// Order is a resting unit of interest. It is owned by the price level
// queue it sits in and never outlives a fill that takes it to zero.
type Order struct {
	Qty   int64
	Price float64
	Side  BookSide
	Seq   uint64

	next *Order
	prev *Order
}
