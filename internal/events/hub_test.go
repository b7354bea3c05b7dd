package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	a, leaveA := h.Subscribe()
	b, leaveB := h.Subscribe()
	defer leaveA()
	defer leaveB()
	require.Equal(t, 2, h.Clients())

	h.Publish("req-1", TypeRunFinished, map[string]int{"added": 3})

	for _, ch := range []<-chan string{a, b} {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
		assert.Equal(t, TypeRunFinished, e.Type)
		assert.Equal(t, 1, e.Version)
		assert.Equal(t, "req-1", e.RequestID)
		assert.JSONEq(t, `{"added":3}`, string(e.Data))
	}
}

func TestHub_SlowClientDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch, leave := h.Subscribe()
	defer leave()

	for i := 0; i < clientBuffer+5; i++ {
		h.Publish("", TypePing, nil)
	}
	assert.Len(t, ch, clientBuffer)
}

func TestHub_LeaveTwiceIsSafe(t *testing.T) {
	h := NewHub()
	ch, leave := h.Subscribe()
	leave()
	leave()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Clients())

	var nilHub *Hub
	nilHub.Publish("", TypePing, nil)
}

func TestMakeEvent_NoData(t *testing.T) {
	var e map[string]any
	require.NoError(t, json.Unmarshal([]byte(MakeEvent("", TypePing, nil)), &e))
	assert.Equal(t, "ping", e["type"])
	_, hasData := e["data"]
	assert.False(t, hasData)
}
