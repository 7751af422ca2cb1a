package fetch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerSupersedesOlderTokens(t *testing.T) {
	var tr Tracker

	first := tr.Next()
	assert.True(t, tr.IsLatest(first))

	second := tr.Next()
	assert.False(t, tr.IsLatest(first))
	assert.ErrorIs(t, tr.Check(first), ErrStale)
	assert.NoError(t, tr.Check(second))
}

func TestTrackerConcurrentTokensAreUnique(t *testing.T) {
	var tr Tracker
	var mu sync.Mutex
	seen := make(map[Token]bool)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := tr.Next()
			mu.Lock()
			seen[tok] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	assert.True(t, tr.IsLatest(Token(50)))
}
