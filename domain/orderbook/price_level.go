package orderbook

import "fmt"

// PriceLevel is a FIFO queue at a single price.
type PriceLevel struct {
	Price float64

	head *Order
	tail *Order

	TotalQty   int64
	OrderCount int
}

func (p *PriceLevel) enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalQty += o.Qty
	p.OrderCount++
}

// popHead unlinks the oldest order. Its remaining quantity is taken off
// TotalQty, so a fully consumed order leaves the total unchanged.
func (p *PriceLevel) popHead() *Order {
	o := p.head
	if o == nil {
		return nil
	}

	p.head = o.next
	if p.head != nil {
		p.head.prev = nil
	} else {
		p.tail = nil
	}

	o.next = nil
	o.prev = nil

	p.TotalQty -= o.Qty
	p.OrderCount--

	return o
}

// fillHead takes qty from the head order and returns it, unlinked, once
// it reaches zero.
func (p *PriceLevel) fillHead(qty int64) *Order {
	p.head.Qty -= qty
	p.TotalQty -= qty
	if p.head.Qty == 0 {
		return p.popHead()
	}
	return nil
}

func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// Orders copies the queue in arrival order. Resting orders are pooled,
// so callers only ever see copies.
func (p *PriceLevel) Orders() []Order {
	out := make([]Order, 0, p.OrderCount)
	for n := p.head; n != nil; n = n.next {
		out = append(out, Order{Qty: n.Qty, Price: n.Price, Side: n.Side, Seq: n.Seq})
	}
	return out
}

func (p *PriceLevel) String() string {
	return fmt.Sprintf("PriceLevel{Price=%g, Orders=%d, TotalQty=%d}", p.Price, p.OrderCount, p.TotalQty)
}
