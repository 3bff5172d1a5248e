package block

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solidcoredata/tablechain/wire"
)

// Cache bounds the number of decoded blocks kept in memory. The patch
// walk and the truncator's reachability walk both decode blocks by hash
// repeatedly across overlapping chain segments; consulting a shared
// cache means a given hash is read and decoded from disk at most once
// per process lifetime (until evicted).
type Cache struct {
	lru *lru.Cache[wire.Hash, *Block]
}

// NewCache returns a Cache holding up to size decoded blocks.
func NewCache(size int) *Cache {
	c, _ := lru.New[wire.Hash, *Block](size) // only errors on size <= 0
	if c == nil {
		c, _ = lru.New[wire.Hash, *Block](1)
	}
	return &Cache{lru: c}
}

func (c *Cache) get(h wire.Hash) (*Block, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(h)
}

func (c *Cache) add(h wire.Hash, b *Block) {
	if c == nil {
		return
	}
	c.lru.Add(h, b)
}
