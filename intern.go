package flagtree

import "sync"

// StringPool interns strings so repeated completion values share storage.
// Pools are owned by whoever creates them; there is no process-wide pool.
type StringPool struct {
	mu     sync.Mutex
	values map[string]string
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{values: make(map[string]string)}
}

// Intern returns the pooled copy of s, adding s if it is new.
func (p *StringPool) Intern(s string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.values[s]; ok {
		return v
	}
	p.values[s] = s
	return s
}

// Len returns the number of distinct strings held.
func (p *StringPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

// Reset drops every pooled string.
func (p *StringPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = make(map[string]string)
}
