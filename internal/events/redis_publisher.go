package events

import (
	"context"
	"encoding/json"

	"github.com/redis/rueidis"
)

// RedisPublisher broadcasts domain events on a redis pub/sub channel for
// out-of-process listeners (notification dispatch and the like).
type RedisPublisher struct {
	client  rueidis.Client
	channel string
}

func NewRedisPublisher(client rueidis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
	}
}

func (p *RedisPublisher) TaskCreated(ctx context.Context, event TaskCreatedEvent) error {
	payload, err := json.Marshal(envelope{Type: "task.created", Data: event})
	if err != nil {
		return err
	}

	cmd := p.client.B().Publish().Channel(p.channel).Message(string(payload)).Build()
	return p.client.Do(ctx, cmd).Error()
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
