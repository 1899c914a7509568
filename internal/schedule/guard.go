package schedule

import "sync"

// slotGuard is a best-effort in-process lock per slot. It narrows the
// check-then-commit race for booking attempts arriving through the same
// process; it cannot serialize attempts across processes or instances,
// where the provider's calendar write remains the only source of truth.
type slotGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newSlotGuard() *slotGuard {
	return &slotGuard{held: make(map[string]struct{})}
}

// acquire claims the key, reporting false if another in-flight booking for
// the same slot already holds it.
func (g *slotGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return false
	}
	g.held[key] = struct{}{}
	return true
}

func (g *slotGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
}
