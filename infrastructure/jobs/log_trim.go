package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/promptroom/api/domain/repository"
	"github.com/promptroom/api/infrastructure/logger"
)

// LogTrimJob periodically drops message-log entries that have fallen behind
// the bounded read window. Rooms keep their recent history; Redis keeps its
// memory.
type LogTrimJob struct {
	messages repository.MessageRepository
	logger   *logger.Logger
	interval time.Duration
	keep     int64
	stopChan chan struct{}
}

func NewLogTrimJob(messages repository.MessageRepository, logger *logger.Logger, interval time.Duration, keep int64) *LogTrimJob {
	return &LogTrimJob{
		messages: messages,
		logger:   logger,
		interval: interval,
		keep:     keep,
		stopChan: make(chan struct{}),
	}
}

func (j *LogTrimJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Log trim job started",
		zap.Duration("interval", j.interval),
		zap.Int64("keep", j.keep),
	)

	j.runTrim(ctx)

	for {
		select {
		case <-ticker.C:
			j.runTrim(ctx)
		case <-j.stopChan:
			j.logger.Info("Log trim job stopped")
			return
		case <-ctx.Done():
			j.logger.Info("Log trim job context cancelled")
			return
		}
	}
}

func (j *LogTrimJob) Stop() {
	close(j.stopChan)
}

func (j *LogTrimJob) runTrim(ctx context.Context) {
	startTime := time.Now()

	rooms, err := j.messages.Rooms(ctx)
	if err != nil {
		j.logger.Error("Log trim job failed to list rooms", zap.Error(err))
		return
	}

	var removed int64
	for _, roomID := range rooms {
		dropped, err := j.messages.Trim(ctx, roomID, j.keep)
		if err != nil {
			j.logger.Error("Log trim job failed",
				zap.Error(err),
				zap.String("roomID", roomID),
			)
			continue
		}
		removed += dropped
	}

	if removed > 0 {
		j.logger.Info("Log trim job completed",
			zap.Int("rooms", len(rooms)),
			zap.Int64("removed", removed),
			zap.Duration("duration", time.Since(startTime)),
		)
	}
}
