package whatsapp

import lru "github.com/hashicorp/golang-lru/v2"

// Deduper suppresses webhook redeliveries. Seen records the message id
// and reports whether it was already processed. The provider delivers
// at-least-once, so without deduplication a redelivered message would be
// answered twice.
type Deduper interface {
	Seen(messageID string) bool
}

// lruDeduper remembers the most recent message ids in a bounded cache.
type lruDeduper struct {
	cache *lru.Cache[string, struct{}]
}

// NewLRUDeduper creates a Deduper over an LRU of the given size.
func NewLRUDeduper(size int) (Deduper, error) {
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &lruDeduper{cache: cache}, nil
}

func (d *lruDeduper) Seen(messageID string) bool {
	if messageID == "" {
		return false
	}
	seen, _ := d.cache.ContainsOrAdd(messageID, struct{}{})
	return seen
}
