// Package memory recycles fixed-shape objects on the matching path.
// The order book draws resting orders from a Pool and hands them back
// the moment a fill takes them to zero, so steady-state matching does
// not churn the garbage collector.
package memory
