package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestClient builds a Client with no underlying websocket
// connection; add/remove/Broadcast never touch conn, only
// readPump/writePump do, so this is enough to drive Hub's bookkeeping
// directly.
func newTestClient(h *Hub, id string) *Client {
	return &Client{hub: h, send: make(chan []byte, 8), id: id}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	h := NewHub()

	c1 := newTestClient(h, "c1")
	c2 := newTestClient(h, "c2")
	h.add(c1)
	h.add(c2)

	require.Equal(t, 2, h.ClientCount())

	h.Broadcast([]byte("hello"))

	select {
	case msg := <-c1.send:
		require.Equal(t, []byte("hello"), msg)
	case <-time.After(time.Second):
		t.Fatal("c1 never received broadcast")
	}
	select {
	case msg := <-c2.send:
		require.Equal(t, []byte("hello"), msg)
	case <-time.After(time.Second):
		t.Fatal("c2 never received broadcast")
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub()

	c := newTestClient(h, "c1")
	h.add(c)
	require.Equal(t, 1, h.ClientCount())

	h.remove(c)
	require.Equal(t, 0, h.ClientCount())

	_, ok := <-c.send
	require.False(t, ok)
}

func TestHubBroadcastJSON(t *testing.T) {
	h := NewHub()

	c := newTestClient(h, "c1")
	h.add(c)

	require.NoError(t, h.BroadcastJSON(NewEventMessage("info", "tick")))

	select {
	case msg := <-c.send:
		msgType, err := ParseType(msg)
		require.NoError(t, err)
		require.Equal(t, MsgEvent, msgType)
	case <-time.After(time.Second):
		t.Fatal("client never received broadcast JSON")
	}
}

func TestHubSendToClient(t *testing.T) {
	h := NewHub()

	c1 := newTestClient(h, "c1")
	c2 := newTestClient(h, "c2")
	h.add(c1)
	h.add(c2)

	h.SendToClient("c2", []byte("just for you"))

	select {
	case msg := <-c2.send:
		require.Equal(t, []byte("just for you"), msg)
	case <-time.After(time.Second):
		t.Fatal("c2 never received its message")
	}

	select {
	case msg := <-c1.send:
		t.Fatalf("c1 should not have received a message, got %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSendToClientUnknownIDIsNoop(t *testing.T) {
	h := NewHub()
	require.NotPanics(t, func() { h.SendToClient("ghost", []byte("x")) })
}
