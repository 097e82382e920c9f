package subscribe

import (
	"strings"

	"github.com/starkedge/mempool/txpool"
)

const (
	eventsFlag = "events"
)

var (
	params = &subscribeParams{}
)

type subscribeParams struct {
	eventsRaw []string

	// one bool flag per event type, e.g. --added
	eventSubscriptionMap map[txpool.EventType]*bool

	supportedEvents []string
}

func (sp *subscribeParams) initEventMap() {
	sp.eventSubscriptionMap = make(map[txpool.EventType]*bool)

	for _, eventType := range txpool.AllEventTypes() {
		sp.eventSubscriptionMap[eventType] = new(bool)
	}
}

func eventFlag(eventType txpool.EventType) string {
	return strings.ToLower(eventType.String())
}

// init merges --events into the per-type flags. An empty selection
// subscribes to every event
func (sp *subscribeParams) init() error {
	sp.supportedEvents = make([]string, 0)

	for _, raw := range sp.eventsRaw {
		eventType, err := txpool.ParseEventType(strings.ToUpper(raw))
		if err != nil {
			return err
		}

		*sp.eventSubscriptionMap[eventType] = true
	}

	for _, eventType := range txpool.AllEventTypes() {
		if *sp.eventSubscriptionMap[eventType] {
			sp.supportedEvents = append(sp.supportedEvents, eventType.String())
		}
	}

	return nil
}
