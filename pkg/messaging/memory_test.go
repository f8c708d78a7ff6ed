package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestMemoryBrokerFanOut(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx := context.Background()
	sub1, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)
	sub2, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "events", map[string]string{"k": "v"}))

	assert.JSONEq(t, `{"k":"v"}`, string(receive(t, sub1)))
	assert.JSONEq(t, `{"k":"v"}`, string(receive(t, sub2)))
}

func TestMemoryBrokerChannelIsolation(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx := context.Background()
	other, err := b.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "events", "hello"))

	select {
	case msg := <-other:
		t.Fatalf("unexpected message on other channel: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBrokerUnsubscribeOnContextCancel(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)

	cancel()

	// Channel closes once the subscription is removed.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel never closed")
		}
	}
}

func TestMemoryBrokerPublishAfterClose(t *testing.T) {
	b := NewMemoryBroker()
	require.NoError(t, b.Close())

	assert.Error(t, b.Publish(context.Background(), "events", "msg"))
}
