package txpool

import (
	"fmt"

	"github.com/starkedge/mempool/types"
)

// EventType is the kind of change a pool event reports
type EventType int32

const (
	EventAdded EventType = iota
	EventPromoted
	EventDemoted
	EventReplaced
	EventEvicted
	EventExpired
	EventPruned
	EventReserved
	EventReleased
	EventIncluded
	EventDropped
)

var eventTypeNames = map[EventType]string{
	EventAdded:    "ADDED",
	EventPromoted: "PROMOTED",
	EventDemoted:  "DEMOTED",
	EventReplaced: "REPLACED",
	EventEvicted:  "EVICTED",
	EventExpired:  "EXPIRED",
	EventPruned:   "PRUNED",
	EventReserved: "RESERVED",
	EventReleased: "RELEASED",
	EventIncluded: "INCLUDED",
	EventDropped:  "DROPPED",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN(%d)", int32(t))
}

// ParseEventType returns the event type for its name
func ParseEventType(s string) (EventType, error) {
	for t, name := range eventTypeNames {
		if name == s {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown event type: %s", s)
}

// AllEventTypes lists every event the pool emits
func AllEventTypes() []EventType {
	all := make([]EventType, 0, len(eventTypeNames))
	for t := EventAdded; t <= EventDropped; t++ {
		all = append(all, t)
	}

	return all
}

// Event is a single pool state change delivered to subscribers
type Event struct {
	Type   EventType  `json:"type"`
	TxHash types.Hash `json:"tx_hash"`
}
