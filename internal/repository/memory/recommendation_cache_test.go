package memory

import (
	"testing"
	"time"

	"companion-counselling-be/internal/pkg/recommender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationCache(t *testing.T) {
	c := NewRecommendationCache(time.Minute)

	_, ok := c.Get(3)
	assert.False(t, ok)

	c.Set(3, []recommender.Recommendation{{ConsultantID: 7, Score: 0.5}})
	got, ok := c.Get(3)
	require.True(t, ok)
	assert.Equal(t, uint(7), got[0].ConsultantID)

	_, ok = c.Get(4)
	assert.False(t, ok)
}

func TestRecommendationCacheExpires(t *testing.T) {
	c := NewRecommendationCache(20 * time.Millisecond)
	c.Set(3, []recommender.Recommendation{{ConsultantID: 7}})

	assert.Eventually(t, func() bool {
		_, ok := c.Get(3)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
