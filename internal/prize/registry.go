package prize

import "sync"

// Registry is the ordered list of live prizes. The loader appends from the game goroutine
// while the progress loop iterates over snapshots, so removal during a pass never skips
// or repeats a prize.
type Registry struct {
	mu     sync.Mutex
	prizes []*Prize
}

// Add appends p.
func (r *Registry) Add(p *Prize) {
	r.mu.Lock()
	r.prizes = append(r.prizes, p)
	r.mu.Unlock()
}

// Remove drops p and reports whether it was present.
func (r *Registry) Remove(p *Prize) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, q := range r.prizes {
		if q == p {
			r.prizes = append(r.prizes[:i:i], r.prizes[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the live prizes in insertion order.
func (r *Registry) Snapshot() []*Prize {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Prize(nil), r.prizes...)
}

// Len returns the number of live prizes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prizes)
}
