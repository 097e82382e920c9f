package txpool

import (
	"sync"
)

type subscriptionID string

type eventSubscription struct {
	// eventTypes is the list of subscribed event types
	eventTypes []EventType

	// outputCh is the update channel for the subscriber
	outputCh chan *Event

	// doneCh indicating that the subscription is terminated
	doneCh chan struct{}

	// notifyCh is used to signal that events are waiting in the store
	notifyCh chan struct{}

	// eventStore is used for temporary concurrent event storage,
	// required in order to preserve the chronological order of events
	eventStore *eventQueue

	closeOnce sync.Once
}

func newEventSubscription(eventTypes []EventType) *eventSubscription {
	return &eventSubscription{
		eventTypes: eventTypes,
		outputCh:   make(chan *Event),
		doneCh:     make(chan struct{}),
		notifyCh:   make(chan struct{}, 1),
		eventStore: &eventQueue{},
	}
}

// eventSupported checks if the event is supported by the subscription
func (es *eventSubscription) eventSupported(eventType EventType) bool {
	for _, supportedType := range es.eventTypes {
		if supportedType == eventType {
			return true
		}
	}

	return false
}

// close stops the event subscription
func (es *eventSubscription) close() {
	es.closeOnce.Do(func() {
		close(es.doneCh)
	})
}

// runLoop forwards stored events to the subscriber until the
// subscription is closed. The output channel is closed on exit
func (es *eventSubscription) runLoop() {
	defer close(es.outputCh)

	for {
		select {
		case <-es.doneCh:
			return
		case <-es.notifyCh:
			for event := es.eventStore.pop(); event != nil; event = es.eventStore.pop() {
				select {
				case es.outputCh <- event:
				case <-es.doneCh:
					return
				}
			}
		}
	}
}

// pushEvent stores the event for the subscriber. [NON-BLOCKING]
func (es *eventSubscription) pushEvent(event *Event) {
	if !es.eventSupported(event.Type) {
		return
	}

	es.eventStore.push(event)

	select {
	case es.notifyCh <- struct{}{}:
	default:
	}
}
