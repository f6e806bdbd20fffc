package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestPublishTripsBreaker(t *testing.T) {
	var states []gobreaker.State
	b := newBroker(unreachableClient(), Config{BreakerFailures: 2, BreakerTimeout: time.Minute}, zap.NewNop(),
		func(s gobreaker.State) { states = append(states, s) })
	defer b.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := b.Publish(ctx, "events", []byte(`{}`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, states)

	err := b.Publish(ctx, "events", []byte(`{}`))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), DefaultConfig("not-a-url"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}

func TestNewRedisBrokerUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisBroker(ctx, DefaultConfig("redis://127.0.0.1:1/0"), zap.NewNop(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
