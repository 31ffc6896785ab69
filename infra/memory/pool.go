package memory

import "sync"

// Pool is a typed object pool.
type Pool[T any] struct {
	p *sync.Pool
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

// Get returns a zeroed object.
func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

// Put zeroes v before recycling it, so a released object never carries
// state into its next owner.
func (p *Pool[T]) Put(v *T) {
	if v == nil {
		return
	}
	var zero T
	*v = zero
	p.p.Put(v)
}
