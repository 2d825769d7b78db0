package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/promptroom/api/domain/model"
	domainRepo "github.com/promptroom/api/domain/repository"
)

type messageRepository struct {
	client *redis.Client
}

func NewMessageRepository(client *redis.Client) domainRepo.MessageRepository {
	return &messageRepository{client: client}
}

func (r *messageRepository) Append(ctx context.Context, message *model.Message) error {
	keys := model.ResolveRoomKeys(message.RoomID)

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	// Sorted set scored by the writer-assigned timestamp keeps reads in
	// createdAt order without trusting store arrival order.
	err = r.client.ZAdd(ctx, keys.MessagesKey, redis.Z{
		Score:  float64(message.CreatedAt),
		Member: data,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (r *messageRepository) ReadAfter(ctx context.Context, roomID string, after int64, window int64) ([]*model.Message, error) {
	messages, err := r.readTail(ctx, roomID, window)
	if err != nil {
		return nil, err
	}

	filtered := messages[:0]
	for _, msg := range messages {
		if msg.CreatedAt > after {
			filtered = append(filtered, msg)
		}
	}
	return filtered, nil
}

func (r *messageRepository) ReadRecent(ctx context.Context, roomID string, window int64) ([]*model.Message, error) {
	return r.readTail(ctx, roomID, window)
}

func (r *messageRepository) Trim(ctx context.Context, roomID string, keep int64) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	keys := model.ResolveRoomKeys(roomID)

	removed, err := r.client.ZRemRangeByRank(ctx, keys.MessagesKey, 0, -(keep + 1)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to trim messages: %w", err)
	}
	return removed, nil
}

func (r *messageRepository) Rooms(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		rooms  []string
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, "room:*:messages", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan room logs: %w", err)
		}
		for _, key := range keys {
			roomID := strings.TrimSuffix(strings.TrimPrefix(key, "room:"), ":messages")
			rooms = append(rooms, roomID)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return rooms, nil
}

// readTail returns at most the last window entries, ascending by createdAt.
// Corrupt entries are skipped, not fatal.
func (r *messageRepository) readTail(ctx context.Context, roomID string, window int64) ([]*model.Message, error) {
	keys := model.ResolveRoomKeys(roomID)

	results, err := r.client.ZRevRange(ctx, keys.MessagesKey, 0, window-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	messages := make([]*model.Message, 0, len(results))
	for _, data := range results {
		var msg model.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		messages = append(messages, &msg)
	}

	// ZRevRange hands back newest first; stable sort keeps equal
	// timestamps in a deterministic order for a single reader.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt < messages[j].CreatedAt
	})

	return messages, nil
}
