package notification

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupGuardFirstSeen(t *testing.T) {
	g := NewDedupGuard(time.Hour)

	assert.True(t, g.FirstSeen("n1"))
	assert.False(t, g.FirstSeen("n1"))
	assert.True(t, g.FirstSeen("n2"))
}

func TestDedupGuardTransactionKeyIncludesType(t *testing.T) {
	g := NewDedupGuard(time.Hour)

	assert.True(t, g.FirstTransaction("tx1", "system_notification"))
	assert.False(t, g.FirstTransaction("tx1", "system_notification"))
	assert.True(t, g.FirstTransaction("tx1", "sell_completed"))
	assert.True(t, g.FirstTransaction("tx2", "system_notification"))
}

func TestDedupGuardNamespacesDoNotCollide(t *testing.T) {
	g := NewDedupGuard(time.Hour)

	assert.True(t, g.FirstSeen("abc"))
	assert.True(t, g.FirstTransaction("abc", ""))
}

func TestDedupGuardReset(t *testing.T) {
	g := NewDedupGuard(time.Hour)

	g.FirstSeen("n1")
	g.Reset()

	assert.True(t, g.FirstSeen("n1"))
}

func TestDedupGuardEntriesExpire(t *testing.T) {
	g := NewDedupGuard(20 * time.Millisecond)

	assert.True(t, g.FirstSeen("n1"))
	time.Sleep(40 * time.Millisecond)
	assert.True(t, g.FirstSeen("n1"))
}

func TestDedupGuardConcurrentFirstSeen(t *testing.T) {
	g := NewDedupGuard(time.Hour)

	const goroutines = 32
	var wg sync.WaitGroup
	firsts := make(chan bool, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			firsts <- g.FirstSeen("contended")
		}()
	}
	wg.Wait()
	close(firsts)

	winners := 0
	for first := range firsts {
		if first {
			winners++
		}
	}
	assert.Equal(t, 1, winners, fmt.Sprintf("expected exactly one winner, got %d", winners))
}
