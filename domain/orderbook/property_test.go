package orderbook

import (
	"sort"
	"testing"

	"pgregory.net/rapid"
)

type resting struct {
	qty   int64
	price float64
	seq   uint64
}

// seedBook fills both sides with small random books and returns the
// orders per side in insertion order.
func seedBook(t *rapid.T, b *OrderBook) map[BookSide][]resting {
	out := map[BookSide][]resting{}
	n := rapid.IntRange(0, 40).Draw(t, "orders")
	for i := 0; i < n; i++ {
		side := rapid.SampledFrom([]BookSide{Bid, Ask}).Draw(t, "side")
		qty := rapid.Int64Range(1, 20).Draw(t, "qty")
		price := float64(rapid.IntRange(9900, 9920).Draw(t, "tick")) / 100
		if err := b.AddOrder(qty, price, side); err != nil {
			t.Fatalf("AddOrder: %v", err)
		}
		out[side] = append(out[side], resting{qty: qty, price: price, seq: b.LastSeq()})
	}
	return out
}

// expectedMatches replays price/time priority by brute force.
func expectedMatches(book []resting, typ OrderType, side Side, qty int64, limit float64) []Match {
	sorted := append([]resting(nil), book...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].price != sorted[j].price {
			if side == Buy {
				return sorted[i].price < sorted[j].price
			}
			return sorted[i].price > sorted[j].price
		}
		return sorted[i].seq < sorted[j].seq
	})

	var out []Match
	for _, r := range sorted {
		if qty == 0 {
			break
		}
		if typ == Limit && ((side == Buy && r.price > limit) || (side == Sell && r.price < limit)) {
			break
		}
		n := min(qty, r.qty)
		out = append(out, Match{Price: r.price, Qty: n, Seq: r.seq})
		qty -= n
	}
	return out
}

func checkClean(t *rapid.T, b *OrderBook) {
	for _, side := range []BookSide{Bid, Ask} {
		var depth int64
		b.WalkLevels(side, func(lvl *PriceLevel) bool {
			depth += lvl.TotalQty
			if lvl.Empty() || lvl.OrderCount == 0 {
				t.Fatalf("%s level %v is empty but still present", side, lvl.Price)
			}
			var sum int64
			for o := lvl.head; o != nil; o = o.next {
				if o.Qty <= 0 {
					t.Fatalf("%s order seq=%d rests with qty %d", side, o.Seq, o.Qty)
				}
				sum += o.Qty
			}
			if sum != lvl.TotalQty {
				t.Fatalf("level %v total %d != sum %d", lvl.Price, lvl.TotalQty, sum)
			}
			return true
		})
		if depth != b.Depth(side) {
			t.Fatalf("%s depth %d != sum of levels %d", side, b.Depth(side), depth)
		}
	}
}

func TestProperty_MatchesReferenceModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook()
		seeded := seedBook(t, b)

		typ := rapid.SampledFrom([]OrderType{Market, Limit}).Draw(t, "type")
		side := rapid.SampledFrom([]Side{Buy, Sell}).Draw(t, "aggressor")
		qty := rapid.Int64Range(1, 120).Draw(t, "incoming")
		limit := float64(rapid.IntRange(9895, 9925).Draw(t, "limit")) / 100

		want := expectedMatches(seeded[side.Opposite()], typ, side, qty, limit)
		depthBefore := b.Depth(side.Opposite())
		sameSideBefore := b.Depth(own(side))

		exec, err := b.HandleOrder(typ, qty, side, limit)
		if err != nil {
			t.Fatalf("HandleOrder: %v", err)
		}

		if len(exec.Matches) != len(want) {
			t.Fatalf("got %d matches, want %d", len(exec.Matches), len(want))
		}
		var filled int64
		var notional float64
		for i := range want {
			if exec.Matches[i] != want[i] {
				t.Fatalf("match %d: got %+v, want %+v", i, exec.Matches[i], want[i])
			}
			filled += want[i].Qty
			notional += float64(want[i].Qty) * want[i].Price
		}

		// conservation
		if exec.Filled != filled || exec.Notional != notional {
			t.Fatalf("aggregate (%d, %v), want (%d, %v)", exec.Filled, exec.Notional, filled, notional)
		}
		if exec.Filled > qty {
			t.Fatalf("filled %d exceeds requested %d", exec.Filled, qty)
		}
		if b.Depth(side.Opposite()) != depthBefore-exec.Filled {
			t.Fatalf("opposite depth %d, want %d", b.Depth(side.Opposite()), depthBefore-exec.Filled)
		}
		if b.Depth(own(side)) != sameSideBefore {
			t.Fatal("aggressor's own side must not change")
		}

		checkClean(t, b)
	})
}

func TestProperty_PriceAndTimePriority(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook()
		seedBook(t, b)

		side := rapid.SampledFrom([]Side{Buy, Sell}).Draw(t, "aggressor")
		qty := rapid.Int64Range(1, 200).Draw(t, "incoming")

		exec, err := b.HandleOrder(Market, qty, side, 0)
		if err != nil {
			t.Fatalf("HandleOrder: %v", err)
		}

		for i := 1; i < len(exec.Matches); i++ {
			prev, cur := exec.Matches[i-1], exec.Matches[i]
			worse := (side == Buy && cur.Price < prev.Price) || (side == Sell && cur.Price > prev.Price)
			if worse {
				t.Fatalf("price priority violated: %v then %v", prev.Price, cur.Price)
			}
			if cur.Price == prev.Price && cur.Seq <= prev.Seq {
				t.Fatalf("time priority violated at %v: seq %d then %d", cur.Price, prev.Seq, cur.Seq)
			}
			// a better level is fully consumed before a worse one is touched
			if cur.Price != prev.Price && b.tree(side.Opposite()).FindLevel(prev.Price) != nil {
				t.Fatalf("level %v left resting after walk moved on", prev.Price)
			}
		}
		checkClean(t, b)
	})
}

func TestProperty_LimitNeverCrosses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook()
		seedBook(t, b)

		side := rapid.SampledFrom([]Side{Buy, Sell}).Draw(t, "aggressor")
		qty := rapid.Int64Range(1, 200).Draw(t, "incoming")
		limit := float64(rapid.IntRange(9895, 9925).Draw(t, "limit")) / 100

		exec, err := b.HandleOrder(Limit, qty, side, limit)
		if err != nil {
			t.Fatalf("HandleOrder: %v", err)
		}
		for _, m := range exec.Matches {
			if (side == Buy && m.Price > limit) || (side == Sell && m.Price < limit) {
				t.Fatalf("%s limit %v filled at %v", side, limit, m.Price)
			}
		}
		if exec.Filled < qty {
			// anything left on the opposite side must be out of reach
			if best, ok := b.BestQuote(side.Opposite()); ok {
				if (side == Buy && best <= limit) || (side == Sell && best >= limit) {
					t.Fatalf("walk stopped early: best %v still tradeable at limit %v", best, limit)
				}
			}
		}
	})
}

func TestProperty_EmptyOppositeSideIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewOrderBook()
		side := rapid.SampledFrom([]Side{Buy, Sell}).Draw(t, "aggressor")

		// only the aggressor's own side is populated
		n := rapid.IntRange(0, 10).Draw(t, "own")
		for i := 0; i < n; i++ {
			qty := rapid.Int64Range(1, 20).Draw(t, "qty")
			price := float64(rapid.IntRange(9900, 9920).Draw(t, "tick")) / 100
			if err := b.AddOrder(qty, price, own(side)); err != nil {
				t.Fatalf("AddOrder: %v", err)
			}
		}
		depth, levels := b.Depth(own(side)), b.Levels(own(side))

		for i := 0; i < 3; i++ {
			typ := rapid.SampledFrom([]OrderType{Market, Limit}).Draw(t, "type")
			exec, err := b.HandleOrder(typ, rapid.Int64Range(1, 50).Draw(t, "incoming"), side, 99.1)
			if err != nil {
				t.Fatalf("HandleOrder: %v", err)
			}
			if exec.Filled != 0 || exec.Notional != 0 {
				t.Fatalf("expected (0, 0), got (%d, %v)", exec.Filled, exec.Notional)
			}
		}
		if b.Depth(own(side)) != depth || b.Levels(own(side)) != levels {
			t.Fatal("books changed on an empty-opposite call")
		}
	})
}

// own is the book side an aggressor's own resting orders would sit on.
func own(s Side) BookSide {
	if s == Buy {
		return Bid
	}
	return Ask
}
