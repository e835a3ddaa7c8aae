package tools

import (
	"context"
	"encoding/json"

	"github.com/user/tripagent/internal/lookupcache"
)

// CachedSearcher serves repeated identical lookups from an LRU cache.
// Failures are never cached.
type CachedSearcher struct {
	next  Searcher
	cache *lookupcache.LRUCache
}

// NewCachedSearcher wraps next with cache
func NewCachedSearcher(next Searcher, cache *lookupcache.LRUCache) *CachedSearcher {
	return &CachedSearcher{next: next, cache: cache}
}

// SearchHotels implements HotelSearcher
func (c *CachedSearcher) SearchHotels(ctx context.Context, in HotelsInput) (*HotelResults, error) {
	var out HotelResults
	hit, key := c.lookup(string(KindHotels), in, &out)
	if hit {
		return &out, nil
	}

	res, err := c.next.SearchHotels(ctx, in)
	if err != nil {
		return nil, err
	}
	c.store(key, string(KindHotels), res)
	return res, nil
}

// SearchFlights implements FlightSearcher
func (c *CachedSearcher) SearchFlights(ctx context.Context, in FlightsInput) (*FlightResults, error) {
	var out FlightResults
	hit, key := c.lookup(string(KindFlights), in, &out)
	if hit {
		return &out, nil
	}

	res, err := c.next.SearchFlights(ctx, in)
	if err != nil {
		return nil, err
	}
	c.store(key, string(KindFlights), res)
	return res, nil
}

func (c *CachedSearcher) lookup(tool string, in interface{}, out interface{}) (bool, string) {
	key, err := lookupcache.Key(tool, in)
	if err != nil {
		return false, ""
	}
	entry, ok := c.cache.Get(key)
	if !ok {
		return false, key
	}
	if err := json.Unmarshal(entry.Payload, out); err != nil {
		c.cache.Delete(key)
		return false, key
	}
	return true, key
}

func (c *CachedSearcher) store(key, tool string, res interface{}) {
	if key == "" {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	c.cache.Put(key, tool, payload)
}
