package notification

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// DedupGuard tracks which notifications this process has already dispatched.
// Entries expire so memory stays bounded in long-running processes; a
// process restart resets the guard, which is acceptable because the record
// store remains authoritative.
type DedupGuard struct {
	seen *cache.Cache
}

const txKeySeparator = ":"

func NewDedupGuard(ttl time.Duration) *DedupGuard {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &DedupGuard{seen: cache.New(ttl, 10*time.Minute)}
}

// FirstSeen records the notification identifier and reports whether this is
// the first time it was seen. Check and insert are atomic.
func (g *DedupGuard) FirstSeen(notificationID string) bool {
	return g.seen.Add("n"+txKeySeparator+notificationID, struct{}{}, cache.DefaultExpiration) == nil
}

// FirstTransaction records the (transaction, type) composite key and reports
// whether it is new. Multiple notification records describing the same
// transaction event collapse to one delivery.
func (g *DedupGuard) FirstTransaction(transactionID, notificationType string) bool {
	key := "tx" + txKeySeparator + transactionID + txKeySeparator + notificationType
	return g.seen.Add(key, struct{}{}, cache.DefaultExpiration) == nil
}

// Reset clears all tracked identifiers. Intended for tests.
func (g *DedupGuard) Reset() {
	g.seen.Flush()
}
