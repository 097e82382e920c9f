package subscribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkedge/mempool/txpool"
)

func TestSubscribeParams_Init(t *testing.T) {
	t.Parallel()

	t.Run("flags and list", func(t *testing.T) {
		t.Parallel()

		p := &subscribeParams{eventsRaw: []string{"dropped", "ADDED"}}
		p.initEventMap()
		*p.eventSubscriptionMap[txpool.EventPromoted] = true

		require.NoError(t, p.init())
		assert.Equal(t, []string{"ADDED", "PROMOTED", "DROPPED"}, p.supportedEvents)
	})

	t.Run("nothing selected", func(t *testing.T) {
		t.Parallel()

		p := &subscribeParams{}
		p.initEventMap()

		require.NoError(t, p.init())
		assert.Empty(t, p.supportedEvents)
	})

	t.Run("unknown event", func(t *testing.T) {
		t.Parallel()

		p := &subscribeParams{eventsRaw: []string{"mined"}}
		p.initEventMap()

		assert.Error(t, p.init())
	})
}

func TestEventFlag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "added", eventFlag(txpool.EventAdded))
	assert.Equal(t, "included", eventFlag(txpool.EventIncluded))
}
