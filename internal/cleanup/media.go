// Package cleanup удаляет вложения, на которые больше не ссылается ни один дизайнерский заказ.
// Такие файлы остаются после замены картинок в Update и после неудачных загрузок.
package cleanup

import (
	"context"
	"time"

	"bakery-service/internal/media"

	"go.uber.org/zap"
)

type RefLister interface {
	MediaRefs(ctx context.Context) ([]string, error)
}

type FileStore interface {
	Files() ([]media.File, error)
	Remove(ref string) error
}

type MediaJanitor struct {
	refs  RefLister
	files FileStore
	// grace защищает файлы, заказ для которых ещё сохраняется
	grace time.Duration
	now   func() time.Time
	log   *zap.Logger
}

func NewMediaJanitor(refs RefLister, files FileStore, grace time.Duration, log *zap.Logger) *MediaJanitor {
	return &MediaJanitor{refs: refs, files: files, grace: grace, now: time.Now, log: log}
}

// CleanupOrphanedMedia возвращает число удалённых файлов
func (j *MediaJanitor) CleanupOrphanedMedia(ctx context.Context) (int, error) {
	// сначала файлы, потом ссылки: файл, загруженный между двумя чтениями, моложе grace
	files, err := j.files.Files()
	if err != nil {
		j.log.Error("failed to list media files", zap.Error(err))
		return 0, err
	}
	refs, err := j.refs.MediaRefs(ctx)
	if err != nil {
		j.log.Error("failed to load media references", zap.Error(err))
		return 0, err
	}
	used := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		used[r] = struct{}{}
	}

	cutoff := j.now().Add(-j.grace)
	removed := 0
	for _, f := range files {
		if _, ok := used[f.Ref]; ok || f.ModTime.After(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := j.files.Remove(f.Ref); err != nil {
			j.log.Warn("failed to remove orphaned media", zap.String("ref", f.Ref), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		j.log.Info("cleaned up orphaned media", zap.Int("count", removed))
	}
	return removed, nil
}
