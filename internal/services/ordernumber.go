// internal/services/ordernumber.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// OrderNumberGenerator issues human-readable order numbers of the form
// CMD-<year>-<6-digit timestamp suffix><3-digit tail>. The tail starts at a
// random value each second and counts up; when it wraps, the timestamp
// portion is borrowed forward by one, so numbers issued by one process never
// collide no matter how fast they are requested. A unique index on
// orders.order_number backstops collisions across processes and restarts.
type OrderNumberGenerator struct {
	mu    sync.Mutex
	stamp int64 // unix seconds of the last issued number, may run ahead of the clock
	tail  int64
}

func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{}
}

func (g *OrderNumberGenerator) Next() string {
	return g.next(time.Now())
}

func (g *OrderNumberGenerator) next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	sec := now.Unix()
	if sec <= g.stamp {
		g.tail++
		if g.tail >= 1000 {
			g.stamp++
			g.tail = 0
		}
	} else {
		g.stamp = sec
		n, err := utils.RandomInt(1000)
		if err != nil {
			n = sec % 1000
		}
		g.tail = n
	}

	return fmt.Sprintf("CMD-%d-%06d%03d", now.Year(), g.stamp%1000000, g.tail)
}
