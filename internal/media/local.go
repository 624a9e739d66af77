// Package media сохраняет вложения дизайнерских заказов на локальный диск.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindDesign Kind = "designs"
	KindPrint  Kind = "prints"
	KindAudio  Kind = "audio"
)

var (
	ErrUnsupportedKind = errors.New("unsupported media kind")
	ErrTooLarge        = errors.New("media file is too large")
	ErrBadReference    = errors.New("invalid media reference")
)

// LocalStore пишет файлы в <dir>/<kind>/<uuid><ext> и отдаёт относительную ссылку "media/<kind>/<file>"
type LocalStore struct {
	dir     string
	prefix  string
	maxSize int64
}

// NewLocalStore: maxSize <= 0 — без ограничения размера
func NewLocalStore(dir string, maxSize int64) (*LocalStore, error) {
	for _, k := range []Kind{KindDesign, KindPrint, KindAudio} {
		if err := os.MkdirAll(filepath.Join(dir, string(k)), 0o755); err != nil {
			return nil, fmt.Errorf("create media dir: %w", err)
		}
	}
	return &LocalStore{dir: dir, prefix: "media", maxSize: maxSize}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(kind Kind, filename string, r io.Reader) (string, error) {
	switch kind {
	case KindDesign, KindPrint, KindAudio:
	default:
		return "", ErrUnsupportedKind
	}

	// имя клиента не используется: только расширение
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(filename)))
	full := filepath.Join(s.dir, string(kind), name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxSize)
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return path.Join(s.prefix, string(kind), name), nil
}

// Remove удаляет файл по ссылке, которую вернул Save. Отсутствующий файл не ошибка.
func (s *LocalStore) Remove(ref string) error {
	rel, ok := strings.CutPrefix(ref, s.prefix+"/")
	if !ok || strings.Contains(rel, "..") {
		return ErrBadReference
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

type File struct {
	Ref     string
	ModTime time.Time
}

// Files перечисляет сохранённые файлы всех видов
func (s *LocalStore) Files() ([]File, error) {
	var out []File
	for _, k := range []Kind{KindDesign, KindPrint, KindAudio} {
		entries, err := os.ReadDir(filepath.Join(s.dir, string(k)))
		if err != nil {
			return nil, fmt.Errorf("read media dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, err
			}
			out = append(out, File{Ref: path.Join(s.prefix, string(k), e.Name()), ModTime: info.ModTime()})
		}
	}
	return out, nil
}
