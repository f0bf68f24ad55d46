package services

import (
	"context"
	"encoding/json"
	"fmt"

	"civictrack/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewIssueChannel is the Redis pub/sub channel carrying new_issue events
// between server instances.
const NewIssueChannel = "civictrack:new_issue"

// Broadcaster announces a freshly created issue to every live viewer.
type Broadcaster interface {
	Publish(ctx context.Context, issue models.Issue) error
}

// LocalBroadcaster serves a single instance and publishes straight to its hub.
type LocalBroadcaster struct {
	hub *Hub
}

func NewLocalBroadcaster(hub *Hub) *LocalBroadcaster {
	return &LocalBroadcaster{hub: hub}
}

func (b *LocalBroadcaster) Publish(_ context.Context, issue models.Issue) error {
	b.hub.Broadcast(issue)
	return nil
}

// RedisBroadcaster routes events through Redis so viewers attached to any
// instance receive them. Run must be active for the local hub to see them.
type RedisBroadcaster struct {
	client  *redis.Client
	hub     *Hub
	channel string
}

func NewRedisBroadcaster(client *redis.Client, hub *Hub) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, hub: hub, channel: NewIssueChannel}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, issue models.Issue) error {
	payload, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("failed to marshal issue: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Run relays channel messages into the local hub until ctx is done.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	log.Info().Str("channel", b.channel).Msg("Listening for new issues on Redis")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var issue models.Issue
			if err := json.Unmarshal([]byte(msg.Payload), &issue); err != nil {
				log.Warn().Err(err).Msg("Discarding malformed new_issue message")
				continue
			}
			b.hub.Broadcast(issue)
		}
	}
}
