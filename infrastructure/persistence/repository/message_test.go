package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/promptroom/api/domain/model"
	domainRepo "github.com/promptroom/api/domain/repository"
)

func appendTestMessage(t *testing.T, repo domainRepo.MessageRepository, roomID string, createdAt int64, kind model.MessageKind, text string) *model.Message {
	t.Helper()

	msg := &model.Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Kind:      kind,
		From:      "0xguest",
		Text:      text,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Append(context.Background(), msg))
	return msg
}

func Test_Messages_ReadAfterCursorIsExclusive(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewMessageRepository(client)
	ctx := context.Background()

	appendTestMessage(t, repo, "global", 100, model.KindPrompt, "one")
	second := appendTestMessage(t, repo, "global", 200, model.KindPrompt, "two")
	third := appendTestMessage(t, repo, "global", 300, model.KindResponse, "three")

	messages, err := repo.ReadAfter(ctx, "global", 100, 200)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal(second.ID, messages[0].ID)
	req.Equal(third.ID, messages[1].ID)

	// Advancing the cursor to the max seen createdAt never replays ids.
	messages, err = repo.ReadAfter(ctx, "global", 300, 200)
	req.NoError(err)
	req.Empty(messages)
}

func Test_Messages_AscendingOrderFromUnorderedWrites(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewMessageRepository(client)
	ctx := context.Background()

	appendTestMessage(t, repo, "global", 300, model.KindPrompt, "late")
	appendTestMessage(t, repo, "global", 100, model.KindPrompt, "early")
	appendTestMessage(t, repo, "global", 200, model.KindPrompt, "middle")

	messages, err := repo.ReadAfter(ctx, "global", 0, 200)
	req.NoError(err)
	req.Len(messages, 3)
	for i := 1; i < len(messages); i++ {
		req.LessOrEqual(messages[i-1].CreatedAt, messages[i].CreatedAt)
	}
}

func Test_Messages_WindowBoundsRead(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewMessageRepository(client)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		appendTestMessage(t, repo, "global", int64(100+i), model.KindPrompt, fmt.Sprintf("m%d", i))
	}

	// Only the trailing window entries are visible; older ones fall off.
	messages, err := repo.ReadAfter(ctx, "global", 0, 4)
	req.NoError(err)
	req.Len(messages, 4)
	req.EqualValues(106, messages[0].CreatedAt)
	req.EqualValues(109, messages[3].CreatedAt)
}

func Test_Messages_TrimKeepsTrailingEntries(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewMessageRepository(client)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		appendTestMessage(t, repo, "global", int64(100+i), model.KindPrompt, fmt.Sprintf("m%d", i))
	}

	removed, err := repo.Trim(ctx, "global", 4)
	req.NoError(err)
	req.EqualValues(6, removed)

	messages, err := repo.ReadAfter(ctx, "global", 0, 200)
	req.NoError(err)
	req.Len(messages, 4)
	req.EqualValues(106, messages[0].CreatedAt)

	// Trimming again with the same retention is a no-op.
	removed, err = repo.Trim(ctx, "global", 4)
	req.NoError(err)
	req.Zero(removed)
}

func Test_Messages_RoomsListsLogsOnly(t *testing.T) {
	req := require.New(t)
	mr, client := newTestClient(t)
	repo := NewMessageRepository(client)
	ctx := context.Background()

	appendTestMessage(t, repo, "global", 100, model.KindPrompt, "a")
	appendTestMessage(t, repo, "side", 100, model.KindPrompt, "b")
	req.NoError(mr.Set("room:global:host", "{}"))

	rooms, err := repo.Rooms(ctx)
	req.NoError(err)
	req.ElementsMatch([]string{"global", "side"}, rooms)
}

func Test_Messages_CorruptEntriesAreSkipped(t *testing.T) {
	req := require.New(t)
	mr, client := newTestClient(t)
	repo := NewMessageRepository(client)
	ctx := context.Background()

	appendTestMessage(t, repo, "global", 100, model.KindPrompt, "good")

	keys := model.ResolveRoomKeys("global")
	mr.ZAdd(keys.MessagesKey, 150, "{not json")

	messages, err := repo.ReadAfter(ctx, "global", 0, 200)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("good", messages[0].Text)
}
