package portalloc

import (
	"sync"

	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

const (
	DefaultBase    = 30000
	DefaultCeiling = 39999
)

// Allocator hands out ports from a wrapping counter. A port is logically
// released when the process holding it stops; wraparound assumes early
// allocations are long gone by then.
type Allocator struct {
	mu      sync.Mutex
	base    int
	ceiling int
	next    int
}

// New creates an allocator over [base, ceiling] that starts at base.
func New(base, ceiling int) *Allocator {
	if base <= 0 {
		base = DefaultBase
	}
	if ceiling < base {
		ceiling = base
	}
	a := &Allocator{base: base, ceiling: ceiling}
	a.Reset()
	return a
}

// NewAllocator creates an allocator for Wire dependency injection
func NewAllocator(cfg *config.RuntimeConfig) *Allocator {
	return New(cfg.PortBase, cfg.PortCeiling)
}

// NextPort returns the next port in the range.
func (a *Allocator) NextPort() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	port := a.next
	a.next++
	if a.next > a.ceiling {
		a.next = a.base
	}
	return port
}

// Reset rewinds the counter to the base port.
func (a *Allocator) Reset() {
	a.mu.Lock()
	a.next = a.base
	a.mu.Unlock()
}

// Range returns the configured bounds.
func (a *Allocator) Range() (base, ceiling int) {
	return a.base, a.ceiling
}

var _ usecase.PortAllocator = (*Allocator)(nil)
