// Package service is the only write entry point into the order book.
//
// It serialises access to the single-writer book, times each incoming
// order, records metrics and hands every fill to the reporter. The book
// itself stays free of locks, clocks and I/O.
package service
