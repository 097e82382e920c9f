package txpool

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/starkedge/mempool/types"
)

type eventManager struct {
	subscriptions     map[subscriptionID]*eventSubscription
	subscriptionsLock sync.RWMutex
	numSubscriptions  int64
	logger            hclog.Logger
}

func newEventManager(logger hclog.Logger) *eventManager {
	return &eventManager{
		logger:        logger.Named("event-manager"),
		subscriptions: make(map[subscriptionID]*eventSubscription),
	}
}

type subscribeResult struct {
	subscriptionID      subscriptionID
	subscriptionChannel <-chan *Event
}

// subscribe registers a new listener for TxPool events
func (em *eventManager) subscribe(eventTypes []EventType) *subscribeResult {
	em.subscriptionsLock.Lock()
	defer em.subscriptionsLock.Unlock()

	id := subscriptionID(uuid.New().String())
	subscription := newEventSubscription(eventTypes)

	em.subscriptions[id] = subscription
	atomic.AddInt64(&em.numSubscriptions, 1)

	em.logger.Info("Added new subscription", "id", id)

	go subscription.runLoop()

	return &subscribeResult{
		subscriptionID:      id,
		subscriptionChannel: subscription.outputCh,
	}
}

// cancelSubscription stops a subscription for TxPool events
func (em *eventManager) cancelSubscription(id subscriptionID) {
	em.subscriptionsLock.Lock()
	defer em.subscriptionsLock.Unlock()

	if subscription, ok := em.subscriptions[id]; ok {
		subscription.close()
		delete(em.subscriptions, id)
		atomic.AddInt64(&em.numSubscriptions, -1)

		em.logger.Info("Canceled subscription", "id", id)
	}
}

// Close stops the event manager, effectively cancelling all subscriptions
func (em *eventManager) Close() {
	em.subscriptionsLock.Lock()
	defer em.subscriptionsLock.Unlock()

	for id, subscription := range em.subscriptions {
		subscription.close()
		delete(em.subscriptions, id)
	}

	atomic.StoreInt64(&em.numSubscriptions, 0)
}

// signalEvent is a helper method for alerting listeners of a new TxPool event
func (em *eventManager) signalEvent(eventType EventType, txHashes ...types.Hash) {
	if atomic.LoadInt64(&em.numSubscriptions) < 1 {
		// No reason to lock the subscriptions map
		// if no subscriptions exist
		return
	}

	em.subscriptionsLock.RLock()
	defer em.subscriptionsLock.RUnlock()

	for _, txHash := range txHashes {
		for _, subscription := range em.subscriptions {
			subscription.pushEvent(&Event{
				Type:   eventType,
				TxHash: txHash,
			})
		}
	}
}
