package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedImageClassifier memoizes image ratings by content hash in a bounded,
// time-expiring LRU. Errors are never cached.
type CachedImageClassifier struct {
	next  ImageClassifier
	cache *expirable.LRU[string, SafeSearch]
}

// NewCachedImageClassifier wraps next with an LRU of at most size entries, each
// living for ttl.
func NewCachedImageClassifier(next ImageClassifier, size int, ttl time.Duration) *CachedImageClassifier {
	if size <= 0 {
		size = 1024
	}
	return &CachedImageClassifier{
		next:  next,
		cache: expirable.NewLRU[string, SafeSearch](size, nil, ttl),
	}
}

// Classify returns the cached rating for image or asks the wrapped classifier.
func (c *CachedImageClassifier) Classify(ctx context.Context, image []byte) (SafeSearch, error) {
	sum := sha256.Sum256(image)
	key := hex.EncodeToString(sum[:])

	if rating, ok := c.cache.Get(key); ok {
		return rating, nil
	}
	rating, err := c.next.Classify(ctx, image)
	if err != nil {
		return SafeSearch{}, err
	}
	c.cache.Add(key, rating)
	return rating, nil
}

// Len reports the number of cached ratings.
func (c *CachedImageClassifier) Len() int {
	return c.cache.Len()
}
