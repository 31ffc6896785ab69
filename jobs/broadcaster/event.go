package broadcaster

import (
	"time"

	"github.com/google/uuid"

	"matchbook/domain/orderbook"
)

// FillReport is the outbound record of one HandleOrder call. Zero fills
// are reported too.
type FillReport struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	Side         string    `json:"side"`
	Requested    int64     `json:"requested"`
	Filled       int64     `json:"filled"`
	Notional     float64   `json:"notional"`
	AvgPrice     float64   `json:"avg_price"`
	Limit        float64   `json:"limit,omitempty"`
	ElapsedNanos int64     `json:"elapsed_nanos"`
	At           time.Time `json:"at"`
}

func NewFillReport(
	typ orderbook.OrderType,
	side orderbook.Side,
	requested int64,
	limit float64,
	exec orderbook.Execution,
	elapsed time.Duration,
	at time.Time,
) FillReport {
	r := FillReport{
		ID:           uuid.New(),
		Type:         typ.String(),
		Side:         side.String(),
		Requested:    requested,
		Filled:       exec.Filled,
		Notional:     exec.Notional,
		AvgPrice:     exec.AvgPrice(),
		ElapsedNanos: elapsed.Nanoseconds(),
		At:           at.UTC(),
	}
	if typ == orderbook.Limit {
		r.Limit = limit
	}
	return r
}

// Key partitions reports by id.
func (r FillReport) Key() []byte {
	return []byte(r.ID.String())
}

func (r FillReport) fields() map[string]any {
	m := map[string]any{
		"id":            r.ID.String(),
		"type":          r.Type,
		"side":          r.Side,
		"requested":     r.Requested,
		"filled":        r.Filled,
		"notional":      r.Notional,
		"avg_price":     r.AvgPrice,
		"elapsed_nanos": r.ElapsedNanos,
		"at":            r.At.Format(time.RFC3339Nano),
	}
	if r.Limit != 0 {
		m["limit"] = r.Limit
	}
	return m
}
