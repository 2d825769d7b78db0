package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher fans committed room mutations out over Redis pub/sub, channel
// events:room:<id>. Delivery is best effort; publishers never block a
// request on it.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func channelFor(roomID string) string {
	return fmt.Sprintf("events:room:%s", roomID)
}

func (p *Publisher) Publish(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, channelFor(event.RoomID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *Publisher) PublishHostClaimed(ctx context.Context, roomID, hostAddr string) error {
	return p.Publish(ctx, &Event{
		Type:   EventHostClaimed,
		RoomID: roomID,
		Addr:   hostAddr,
	})
}

func (p *Publisher) PublishHostReleased(ctx context.Context, roomID, hostAddr string) error {
	return p.Publish(ctx, &Event{
		Type:   EventHostReleased,
		RoomID: roomID,
		Addr:   hostAddr,
	})
}

func (p *Publisher) PublishMessagePosted(ctx context.Context, roomID, from, messageID string) error {
	return p.Publish(ctx, &Event{
		Type:   EventMessagePosted,
		RoomID: roomID,
		Addr:   from,
		Data:   map[string]any{"message_id": messageID},
	})
}

func (p *Publisher) PublishMessageSettled(ctx context.Context, roomID, payer, txHash string, amountMicro int64) error {
	return p.Publish(ctx, &Event{
		Type:   EventMessageSettled,
		RoomID: roomID,
		Addr:   payer,
		Data: map[string]any{
			"tx_hash":      txHash,
			"amount_micro": amountMicro,
		},
	})
}

// PublishSettlementFlagged marks an answered prompt whose charge never
// settled, for operators reconciling the ledger against receipts.
func (p *Publisher) PublishSettlementFlagged(ctx context.Context, roomID, payer string, amountMicro int64) error {
	return p.Publish(ctx, &Event{
		Type:   EventSettlementNoted,
		RoomID: roomID,
		Addr:   payer,
		Data: map[string]any{
			"amount_micro": amountMicro,
		},
	})
}

// Subscribe returns a channel of decoded events for a room. Intended for
// operational tooling; the coordination core itself never consumes its own
// notifications.
func (p *Publisher) Subscribe(ctx context.Context, roomID string) (<-chan *Event, func() error) {
	sub := p.client.Subscribe(ctx, channelFor(roomID))
	out := make(chan *Event)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case out <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, sub.Close
}
