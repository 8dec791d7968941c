package memory

import (
	"strconv"
	"time"

	"companion-counselling-be/internal/pkg/recommender"

	"github.com/patrickmn/go-cache"
)

// RecommendationCache keeps the scorer's output per user so repeated page
// loads do not start a new process each time.
type RecommendationCache struct {
	cache *cache.Cache
}

func NewRecommendationCache(ttl time.Duration) *RecommendationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RecommendationCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *RecommendationCache) Get(userID uint) ([]recommender.Recommendation, bool) {
	if x, found := c.cache.Get(strconv.FormatUint(uint64(userID), 10)); found {
		return x.([]recommender.Recommendation), true
	}
	return nil, false
}

func (c *RecommendationCache) Set(userID uint, recs []recommender.Recommendation) {
	c.cache.Set(strconv.FormatUint(uint64(userID), 10), recs, cache.DefaultExpiration)
}
