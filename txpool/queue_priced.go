package txpool

import (
	"github.com/google/btree"
)

const pricedQueueDegree = 32

// pricedQueue keeps entries sorted by priority, highest first.
// The pool uses one instance for ready entries and another one over
// every queued entry to find eviction victims.
type pricedQueue struct {
	tree *btree.BTreeG[*Entry]
}

func newPricedQueue() *pricedQueue {
	return &pricedQueue{
		tree: btree.NewG[*Entry](pricedQueueDegree, higherPriority),
	}
}

// push inserts the entry into the queue
func (q *pricedQueue) push(entry *Entry) {
	q.tree.ReplaceOrInsert(entry)
}

// peek returns the highest priority entry
// or nil if the queue is empty.
func (q *pricedQueue) peek() *Entry {
	entry, _ := q.tree.Min()

	return entry
}

// pop removes the highest priority entry from the queue
// or returns nil if the queue is empty.
func (q *pricedQueue) pop() *Entry {
	entry, _ := q.tree.DeleteMin()

	return entry
}

// worst returns the lowest priority entry
func (q *pricedQueue) worst() *Entry {
	entry, _ := q.tree.Max()

	return entry
}

// remove deletes the entry. Returns false if it was not queued
func (q *pricedQueue) remove(entry *Entry) bool {
	_, ok := q.tree.Delete(entry)

	return ok
}

func (q *pricedQueue) has(entry *Entry) bool {
	return q.tree.Has(entry)
}

// ascend visits entries from the highest priority down
// until fn returns false
func (q *pricedQueue) ascend(fn func(*Entry) bool) {
	q.tree.Ascend(fn)
}

// descend visits entries from the lowest priority up
// until fn returns false
func (q *pricedQueue) descend(fn func(*Entry) bool) {
	q.tree.Descend(fn)
}

// length returns the number of entries in the queue.
func (q *pricedQueue) length() int {
	return q.tree.Len()
}
