package realtime

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(id, channel string) *Client {
	return &Client{
		ID:      id,
		Channel: channel,
		send:    make(chan WSMessage, 4),
		logger:  zap.NewNop(),
	}
}

func TestHub_BroadcastReachesOwnChannelOnly(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	a := newTestClient("a", "General")
	b := newTestClient("b", "General")
	other := newTestClient("c", "Engineering")
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	hub.Broadcast("General", "message", map[string]string{"content": "hi"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "message", msg.Event)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(msg.Data, &payload))
			assert.Equal(t, "hi", payload["content"])
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
	select {
	case <-other.send:
		t.Fatal("other channel received the broadcast")
	default:
	}
}

func TestHub_PublishWithoutRedisFallsBackToLocal(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	a := newTestClient("a", "General")
	hub.Register(a)

	hub.Publish("General", "message", map[string]string{"content": "hi"})

	select {
	case msg := <-a.send:
		assert.Equal(t, "message", msg.Event)
	default:
		t.Fatal("local fallback did not deliver")
	}
}

func TestHub_BroadcastDuringChurn(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			c := newTestClient("c"+strconv.Itoa(i), "General")
			hub.Register(c)
			hub.Unregister(c)
		}
	}()
	for i := 0; i < 200; i++ {
		hub.Broadcast("General", "message", nil)
	}
	<-done
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	a := newTestClient("a", "General")
	hub.Register(a)
	assert.Equal(t, 1, hub.ListenerCount("General"))

	hub.Unregister(a)
	assert.Equal(t, 0, hub.ListenerCount("General"))

	hub.Broadcast("General", "message", nil)
	select {
	case <-a.send:
		t.Fatal("unregistered client received a message")
	default:
	}
}
