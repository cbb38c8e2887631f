package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBrokerDelivers tests that published events reach every subscriber
func TestBrokerDelivers(t *testing.T) {
	broker := NewBroker()
	broker.Start()
	defer broker.Stop()

	sub1 := broker.Subscribe()
	sub2 := broker.Subscribe()
	assert.Equal(t, 2, broker.SubscriberCount())

	Publish(broker, EventSessionLogin, "logged in", map[string]string{"username": "ops"})

	for _, sub := range []Subscriber{sub1, sub2} {
		select {
		case event := <-sub:
			assert.Equal(t, EventSessionLogin, event.Type)
			assert.Equal(t, "ops", event.Metadata["username"])
			assert.NotEmpty(t, event.ID)
			assert.False(t, event.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

// TestBrokerUnsubscribe tests subscription removal
func TestBrokerUnsubscribe(t *testing.T) {
	broker := NewBroker()
	sub := broker.Subscribe()

	broker.Unsubscribe(sub)
	broker.Unsubscribe(sub)
	assert.Equal(t, 0, broker.SubscriberCount())

	_, open := <-sub
	assert.False(t, open)
}

// TestPublishNilPublisher tests that a nil publisher is ignored
func TestPublishNilPublisher(t *testing.T) {
	require.NotPanics(t, func() {
		Publish(nil, EventListLoaded, "", nil)
	})
}

// TestBrokerStopTwice tests that Stop is idempotent and drops later events
func TestBrokerStopTwice(t *testing.T) {
	broker := NewBroker()
	broker.Start()
	broker.Stop()
	broker.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			broker.Publish(&Event{Type: EventListLoaded})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after Stop")
	}
}
