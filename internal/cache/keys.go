package cache

import (
	"fmt"
	"time"
)

const (
	suspensionKeyPrefix = "warden:suspension:%d"
	// BannedTermsKey holds the managed banned-term list.
	BannedTermsKey = "warden:banned_terms"
)

const (
	// BannedTermsTTL bounds how stale the cached banned-term list may be.
	BannedTermsTTL = 5 * time.Minute
)

// SuspensionKey is the cache key for a user's suspension status.
func SuspensionKey(userID uint) string {
	return fmt.Sprintf(suspensionKeyPrefix, userID)
}
