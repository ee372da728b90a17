package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"TickerScope/internal/model"
)

// AnalysisCache keeps recent analyses per ticker so repeated API calls
// within the TTL do not refetch from the provider.
type AnalysisCache struct {
	lru *expirable.LRU[string, *model.Analysis]
}

// New creates a cache holding at most size analyses for ttl each.
func New(size int, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{lru: expirable.NewLRU[string, *model.Analysis](size, nil, ttl)}
}

func key(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

func (c *AnalysisCache) Get(symbol string) (*model.Analysis, bool) {
	return c.lru.Get(key(symbol))
}

func (c *AnalysisCache) Add(a *model.Analysis) {
	c.lru.Add(key(a.Symbol), a)
}

func (c *AnalysisCache) Purge()   { c.lru.Purge() }
func (c *AnalysisCache) Len() int { return c.lru.Len() }
