// SPDX-License-Identifier: Unlicense OR MIT

// Package texpool pools backend texture names so a Surface's texture
// (re)acquisition on buffer rebind recycles a freed GPU name instead of
// growing the namespace on every attach. It wraps
// github.com/jolestar/go-commons-pool, an object pool library neither this
// domain nor the teacher needed a generic pool for until now — the
// teacher's own go.mod carries it only as an indirect dependency of a tool
// it vendors, never importing it directly itself.
package texpool

import (
	"context"
	"sync"

	commonspool "github.com/jolestar/go-commons-pool"
)

// name is the pooled unit: an integer texture name assigned once by
// Pool's factory and reused for the pool's lifetime. go-commons-pool
// tracks borrowed objects by pointer identity, so Release must hand back
// the exact *name instance Acquire borrowed, not a new value wrapping the
// same int — hence the outstanding map below.
type name struct{ n int }

// Pool hands out uint32 texture names, recycling released ones.
type Pool struct {
	pool *commonspool.ObjectPool

	mu          sync.Mutex
	outstanding map[uint32]*name
}

// New returns an empty Pool. Names are minted lazily, starting at 1 (0 is
// reserved by scene.TextureUploader callers to mean "allocate a new
// texture").
func New() *Pool {
	next := 0
	factory := commonspool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			next++
			return &name{n: next}, nil
		})
	// NewDefaultPoolConfig's MaxTotal/MaxIdle default to 8 with
	// BlockWhenExhausted true and an infinite wait — exactly the suspend
	// this pool must never do (spec.md §5 "no operation suspends").
	// MaxTotal: -1 makes BorrowObject mint a fresh name instead of
	// blocking once every pooled name is outstanding.
	config := commonspool.NewDefaultPoolConfig()
	config.MaxTotal = -1
	return &Pool{
		pool:        commonspool.NewObjectPool(context.Background(), factory, config),
		outstanding: make(map[uint32]*name),
	}
}

// Acquire returns a texture name, reused from a prior Release if one is
// available.
func (p *Pool) Acquire() (uint32, error) {
	obj, err := p.pool.BorrowObject(context.Background())
	if err != nil {
		return 0, err
	}
	n := obj.(*name)
	p.mu.Lock()
	p.outstanding[uint32(n.n)] = n
	p.mu.Unlock()
	return uint32(n.n), nil
}

// Release returns n to the pool for a future Acquire to reuse. Releasing a
// name not currently outstanding is a no-op.
func (p *Pool) Release(n uint32) error {
	p.mu.Lock()
	obj, ok := p.outstanding[n]
	delete(p.outstanding, n)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return p.pool.ReturnObject(context.Background(), obj)
}
