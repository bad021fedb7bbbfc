package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detached returns a client with no connection, for exercising the hub
// without a socket.
func detached(hub *Hub, prefixes ...string) *Client {
	return newClient("c", hub, nil, prefixes)
}

func TestHub_SendNoClients(t *testing.T) {
	assert.NoError(t, NewHub(nil, nil).Send(pose("fist")))
}

func TestHub_SendFiltersByPrefix(t *testing.T) {
	hub := NewHub(nil, nil)
	poses := detached(hub, "/myo/pose")
	everything := detached(hub, "/")
	hub.Register(poses)
	hub.Register(everything)

	require.NoError(t, hub.Send(accel(1, 2, 3)))
	require.NoError(t, hub.Send(pose("wave_in")))

	assert.Len(t, poses.send, 1)
	assert.Len(t, everything.send, 2)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(<-poses.send, &msg))
	assert.Equal(t, TypeEvent, msg.Type)
	assert.Equal(t, "/myo/pose", msg.Payload.(map[string]any)["address"])
}

func TestHub_SlowClientDrops(t *testing.T) {
	hub := NewHub(nil, nil)
	c := detached(hub, "/")
	hub.Register(c)

	for i := 0; i < sendBufferSize+10; i++ {
		require.NoError(t, hub.Send(pose("rest")))
	}
	assert.Len(t, c.send, sendBufferSize)
}

func TestHub_UnregisterTwice(t *testing.T) {
	var counts []int
	hub := NewHub(nil, func(n int) { counts = append(counts, n) })
	c := detached(hub)

	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	assert.Equal(t, []int{1, 0}, counts)
	assert.Equal(t, 0, hub.ClientCount())

	// Sending after disconnect must not panic.
	c.trySend([]byte("x"))
}

func TestClient_Subscriptions(t *testing.T) {
	c := detached(NewHub(nil, nil), "/myo/emg", "")

	assert.True(t, c.isSubscribed("/myo/emg"))
	assert.False(t, c.isSubscribed("/myo/pose"))

	c.subscribe([]string{"/myo/p"})
	assert.True(t, c.isSubscribed("/myo/pose"))

	c.unsubscribe([]string{"/myo/emg"})
	assert.False(t, c.isSubscribed("/myo/emg"))
}

func TestClient_HandleMessage(t *testing.T) {
	c := detached(NewHub(nil, nil))

	c.handleMessage([]byte(`{"type":"subscribe","id":"s","payload":{"addresses":["/myo/sync"]}}`))
	assert.True(t, c.isSubscribed("/myo/sync"))

	var resp WSMessage
	require.NoError(t, json.Unmarshal(<-c.send, &resp))
	assert.Equal(t, TypeResponse, resp.Type)

	c.handleMessage([]byte(`{"type":"subscribe","id":"b","payload":"nope"}`))
	require.NoError(t, json.Unmarshal(<-c.send, &resp))
	assert.Equal(t, TypeError, resp.Type)
	assert.Equal(t, "b", resp.ID)
}
