package repository

import (
	"context"

	"github.com/promptroom/api/domain/model"
)

type MessageRepository interface {
	// Append writes to the tail of the room's log. Entries are immutable
	// once written; only the retention trim ever removes them.
	Append(ctx context.Context, message *model.Message) error

	// ReadAfter returns, from at most the last window entries, those with
	// CreatedAt strictly greater than after, ascending. Entries that fail
	// to deserialize are skipped. A consumer polling slower than the
	// window fills can miss entries; that is a documented property of the
	// bounded read, not something ReadAfter papers over.
	ReadAfter(ctx context.Context, roomID string, after int64, window int64) ([]*model.Message, error)

	// ReadRecent returns up to window trailing entries in ascending order,
	// used to build inference context.
	ReadRecent(ctx context.Context, roomID string, window int64) ([]*model.Message, error)

	// Trim removes everything older than the last keep entries and reports
	// how many were dropped. Reads never see more than the bounded window,
	// so trimming behind it is invisible to consumers.
	Trim(ctx context.Context, roomID string, keep int64) (int64, error)

	// Rooms lists the IDs of rooms that currently hold a message log.
	Rooms(ctx context.Context) ([]string, error)
}
