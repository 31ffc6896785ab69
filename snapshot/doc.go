// Package snapshot provides read-only depth views of the order book.
//
// A Depth is a plain value copied out of the book: it shares no memory
// with the price levels, so it can be rendered, encoded or handed to
// another goroutine after the caller releases the book.
package snapshot
