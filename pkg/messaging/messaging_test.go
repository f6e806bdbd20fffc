package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func TestMemoryBrokerPublishSubscribe(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "events", []byte(`hello`)))
	require.NoError(t, b.Publish(ctx, "other", []byte(`ignored`)))

	select {
	case msg := <-ch:
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}

func TestMemoryBrokerUnsubscribeOnCancel(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestMemoryBrokerClosed(t *testing.T) {
	b := NewMemoryBroker()
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Publish(context.Background(), "events", nil), ErrClosed)
	_, err := b.Subscribe(context.Background(), "events")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestJSONPublisherAndConsume(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan event, 1)
	errs := make(chan error, 1)
	require.NoError(t, Consume(ctx, b, "events", func(e event) error {
		got <- e
		return nil
	}, func(err error) { errs <- err }))

	require.NoError(t, b.Publish(ctx, "events", []byte(`not json`)))
	require.NoError(t, NewJSONPublisher(b).Publish(ctx, "events", event{ID: "1", Type: "patient.created"}))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "failed to decode message")
	case <-time.After(time.Second):
		t.Fatal("decode error not reported")
	}

	select {
	case e := <-got:
		assert.Equal(t, event{ID: "1", Type: "patient.created"}, e)
	case <-time.After(time.Second):
		t.Fatal("message not consumed")
	}
}

func TestJSONPublisherMarshalError(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	err := NewJSONPublisher(b).Publish(context.Background(), "events", make(chan int))
	assert.Error(t, err)
}
