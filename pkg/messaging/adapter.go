package messaging

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONPublisher encodes messages as JSON before handing them to a Broker.
type JSONPublisher struct {
	broker Broker
}

func NewJSONPublisher(broker Broker) *JSONPublisher {
	return &JSONPublisher{broker: broker}
}

func (p *JSONPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return p.broker.Publish(ctx, channel, payload)
}

// Consume decodes every message on channel into a fresh T and passes it to
// handle until ctx is done. Handler errors are reported through onError and
// do not stop consumption.
func Consume[T any](ctx context.Context, broker Broker, channel string, handle func(T) error, onError func(error)) error {
	ch, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	go func() {
		for raw := range ch {
			var msg T
			if err := json.Unmarshal(raw, &msg); err != nil {
				if onError != nil {
					onError(fmt.Errorf("failed to decode message: %w", err))
				}
				continue
			}
			if err := handle(msg); err != nil && onError != nil {
				onError(err)
			}
		}
	}()

	return nil
}
