package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/filegrid/filegrid-backend/storage"
	"github.com/filegrid/filegrid-backend/store"
)

// Soft-deleted files stay restorable for this long before the purge job
// removes them for good.
const purgeRetention = 30 * 24 * time.Hour

// StartPurgeJob periodically hard-deletes files that were soft-deleted
// longer than the retention window ago, together with their thumbnails.
func StartPurgeJob(files *store.FileStore, thumbs storage.ThumbnailStorage, log *zap.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for range ticker.C {
			purgeExpiredFiles(context.Background(), files, thumbs, log)
		}
	}()
}

func purgeExpiredFiles(ctx context.Context, files *store.FileStore, thumbs storage.ThumbnailStorage, log *zap.Logger) {
	expired, err := files.ListDeletedBefore(ctx, time.Now().Add(-purgeRetention))
	if err != nil {
		log.Error("finding purgeable files failed", zap.Error(err))
		return
	}

	for _, file := range expired {
		if file.ThumbnailKey != nil {
			if err := thumbs.Delete(ctx, *file.ThumbnailKey); err != nil {
				log.Error("thumbnail delete failed",
					zap.String("file", file.UUID),
					zap.String("key", *file.ThumbnailKey),
					zap.Error(err),
				)
				continue
			}
		}
		if err := files.Purge(ctx, file.ID); err != nil {
			log.Error("file purge failed", zap.String("file", file.UUID), zap.Error(err))
			continue
		}
		log.Info("purged deleted file", zap.String("file", file.UUID))
	}
}
