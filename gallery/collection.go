package gallery

import (
	"sync"

	"github.com/leeforge/squash/media/compressor"
)

// Collection is the ordered list of processed images. Bundles are appended
// as invocations complete, so the order follows completion, not submission.
type Collection struct {
	mu      sync.RWMutex
	bundles []*compressor.Bundle
}

func NewCollection() *Collection {
	return &Collection{}
}

// Append adds b and returns its index.
func (c *Collection) Append(b *compressor.Bundle) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bundles = append(c.bundles, b)
	return len(c.bundles) - 1
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bundles)
}

// At returns the bundle at i.
func (c *Collection) At(i int) (*compressor.Bundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.bundles) {
		return nil, false
	}
	return c.bundles[i], true
}

// All returns a snapshot of the bundles in order.
func (c *Collection) All() []*compressor.Bundle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*compressor.Bundle, len(c.bundles))
	copy(out, c.bundles)
	return out
}
