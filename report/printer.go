// Package report renders the book and fill results for a terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"matchbook/domain/orderbook"
	"matchbook/snapshot"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[1;31m"
	ansiGreen  = "\033[1;32m"
	ansiYellow = "\033[33m"

	block = "█"
)

type Printer struct {
	w      io.Writer
	color  bool
	barCap int
}

type Option func(*Printer)

// NoColor strips ANSI escapes.
func NoColor() Option {
	return func(p *Printer) { p.color = false }
}

// BarCap limits a depth bar to n blocks; 0 draws one block per unit.
func BarCap(n int) Option {
	return func(p *Printer) { p.barCap = n }
}

func NewPrinter(w io.Writer, opts ...Option) *Printer {
	p := &Printer{w: w, color: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PrintBook writes asks lowest first, then bids highest first.
func (p *Printer) PrintBook(d snapshot.Depth) error {
	var sb strings.Builder
	sb.WriteString("\n========== Orderbook =========\n\n")

	sb.WriteString("[ASKS]\n")
	for _, lvl := range d.Asks {
		p.writeLevel(&sb, "ASK", ansiRed, lvl)
	}
	sb.WriteString("\n[BIDS]\n")
	for _, lvl := range d.Bids {
		p.writeLevel(&sb, "BID", ansiGreen, lvl)
	}
	sb.WriteString("\n================================\n\n")

	_, err := io.WriteString(p.w, sb.String())
	return err
}

func (p *Printer) writeLevel(sb *strings.Builder, label, color string, lvl snapshot.Level) {
	line := fmt.Sprintf("%s  Price: %s | Qty: %d | %s",
		label, money(decimal.NewFromFloat(lvl.Price)), lvl.Quantity, p.bar(lvl.Quantity))
	sb.WriteString(p.paint(color, line))
	sb.WriteByte('\n')
}

func (p *Printer) bar(qty int64) string {
	n := int(qty)
	if p.barCap > 0 && n > p.barCap {
		return strings.Repeat(block, p.barCap) + "+"
	}
	return strings.Repeat(block, n)
}

// PrintFill writes the one-line summary of an incoming order.
func (p *Printer) PrintFill(exec orderbook.Execution, requested int64, elapsed time.Duration) error {
	total := decimal.NewFromFloat(exec.Notional)
	avg := decimal.Zero
	if exec.Filled > 0 {
		avg = total.Div(decimal.NewFromInt(exec.Filled))
	}

	line := fmt.Sprintf("Filled %d/%d units @ $%s average price. Total cost: $%s. Time taken: %d nano seconds",
		exec.Filled, requested, money(avg), money(total), elapsed.Nanoseconds())

	_, err := io.WriteString(p.w, p.paint(ansiYellow, line)+"\n")
	return err
}

func (p *Printer) paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + ansiReset
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
