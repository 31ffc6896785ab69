// Package orderbook implements the in-memory limit order book and its
// matching walk. Each side is a red-black tree of price levels ordered
// best price first; each level is a FIFO queue of resting orders.
//
// Incoming market and limit orders consume the opposite side under
// price-then-time priority with partial fills. The book is a pure,
// single-writer structure: no I/O, no clocks, no locking.
package orderbook
