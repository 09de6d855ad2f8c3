package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xdevs-go/kernel/kernel"
)

type fakeInjector struct {
	accepted bool
	err      error
	gotPort  string
	gotE     float64
}

func (f *fakeInjector) InjectRemote(portName string, blobs [][]byte, e float64, deserializer kernel.Deserializer) (bool, error) {
	f.gotPort = portName
	f.gotE = e
	return f.accepted, f.err
}

func TestServerHandleInjectDelegatesAndReplies(t *testing.T) {
	fake := &fakeInjector{accepted: true}
	s := NewServer(fake, JSONCodec{}, nil)

	c := newTestClient(s.hub, "client-1")
	s.hub.add(c)

	req := []byte(`{"type":"inject","requestId":"r1","port":"root.in","values":[],"e":2}`)
	s.handleMessage("client-1", MsgInject, req)

	require.Equal(t, "root.in", fake.gotPort)
	require.Equal(t, float64(2), fake.gotE)

	select {
	case msg := <-c.send:
		msgType, err := ParseType(msg)
		require.NoError(t, err)
		require.Equal(t, MsgInjectResult, msgType)
	case <-time.After(time.Second):
		t.Fatal("client never received inject response")
	}
}

func TestServerHandleUnknownMessageType(t *testing.T) {
	fake := &fakeInjector{}
	s := NewServer(fake, JSONCodec{}, nil)

	c := newTestClient(s.hub, "client-1")
	s.hub.add(c)

	s.handleMessage("client-1", MessageType("bogus"), []byte(`{}`))

	select {
	case msg := <-c.send:
		msgType, err := ParseType(msg)
		require.NoError(t, err)
		require.Equal(t, MsgError, msgType)
	case <-time.After(time.Second):
		t.Fatal("client never received error response")
	}
}

func TestServerHandleInjectMalformedRequest(t *testing.T) {
	fake := &fakeInjector{}
	s := NewServer(fake, JSONCodec{}, nil)

	c := newTestClient(s.hub, "client-1")
	s.hub.add(c)

	s.handleInject("client-1", []byte(`not json`))

	select {
	case msg := <-c.send:
		msgType, err := ParseType(msg)
		require.NoError(t, err)
		require.Equal(t, MsgError, msgType)
	case <-time.After(time.Second):
		t.Fatal("client never received malformed-request error")
	}
	require.Empty(t, fake.gotPort)
}
