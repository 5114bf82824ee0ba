// internal/services/ordernumber_test.go
package services

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderNumberPattern = regexp.MustCompile(`^CMD-\d{4}-\d{9}$`)

func TestOrderNumberFormat(t *testing.T) {
	gen := NewOrderNumberGenerator()
	number := gen.Next()
	assert.Regexp(t, orderNumberPattern, number)
}

func TestOrderNumberUniquenessTightLoop(t *testing.T) {
	gen := NewOrderNumberGenerator()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		number := gen.Next()
		_, dup := seen[number]
		require.False(t, dup, "duplicate order number %s at iteration %d", number, i)
		seen[number] = struct{}{}
	}
}

func TestOrderNumberUniquenessConcurrent(t *testing.T) {
	gen := NewOrderNumberGenerator()

	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, gen.Next())
			}
			mu.Lock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
