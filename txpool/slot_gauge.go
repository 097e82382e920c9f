package txpool

import (
	"sync/atomic"
)

const (
	highPressureMark = 0.8
)

// Gauge for measuring pool capacity, both in transactions and in bytes.
// Written under the pool mutex, read anywhere.
type slotGauge struct {
	count uint64 // amount of transactions currently occupying the pool
	bytes uint64 // encoded size of those transactions

	maxCount uint64
	maxBytes uint64
}

// read returns the current transaction count and byte total of the gauge.
func (g *slotGauge) read() (uint64, uint64) {
	return atomic.LoadUint64(&g.count), atomic.LoadUint64(&g.bytes)
}

// increase accounts for an admitted entry.
func (g *slotGauge) increase(size uint64) {
	atomic.AddUint64(&g.count, 1)
	atomic.AddUint64(&g.bytes, size)
}

// decrease releases the capacity held by a removed entry.
func (g *slotGauge) decrease(size uint64) {
	atomic.AddUint64(&g.count, ^uint64(0))
	atomic.AddUint64(&g.bytes, ^(size - 1))
}

// fits reports whether one more transaction of the given size stays
// within limits once freedCount entries of freedBytes are gone
func (g *slotGauge) fits(size, freedCount, freedBytes uint64) bool {
	count, bytes := g.read()

	return count-freedCount+1 <= g.maxCount && bytes-freedBytes+size <= g.maxBytes
}

// highPressure checks if either gauge level
// is higher than the highPressureMark (0.8 * max)
func (g *slotGauge) highPressure() bool {
	count, bytes := g.read()

	return count > uint64(highPressureMark*float64(g.maxCount)) ||
		bytes > uint64(highPressureMark*float64(g.maxBytes))
}
