package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"stockflow/internal/domain"
)

type RunEventBus struct {
	client  *redis.Client
	channel string
}

func NewRunEventBus(client *redis.Client) *RunEventBus {
	return &RunEventBus{
		client:  client,
		channel: "stockflow:events:run-completed",
	}
}

// PublishRunCompleted broadcasts a finalized run to the network
func (b *RunEventBus) PublishRunCompleted(ctx context.Context, event domain.RunCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, payload).Err()
}

// SubscribeToRunEvents opens a continuous stream of finalized runs, used by
// the dashboard process to refresh without polling the log table.
func (b *RunEventBus) SubscribeToRunEvents(ctx context.Context) (<-chan domain.RunCompletedEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	msgChan := make(chan domain.RunCompletedEvent)

	go func() {
		defer close(msgChan)
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			default:
				msg, err := pubsub.ReceiveMessage(ctx)
				if err == nil {
					var event domain.RunCompletedEvent
					if err := json.Unmarshal([]byte(msg.Payload), &event); err == nil {
						msgChan <- event
					}
				}
			}
		}
	}()

	return msgChan, nil
}
