package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTooLarge はファイルサイズが上限を超えた場合に返却されます。
	ErrTooLarge = errors.New("upload: file too large")
	// ErrUnsupportedType は許可されていない拡張子の場合に返却されます。
	ErrUnsupportedType = errors.New("upload: unsupported file type")
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// DiskStore はアップロードされたファイルをローカルディスクへ保存します。
type DiskStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewDiskStore は保存先ディレクトリを作成して DiskStore を返します。
func NewDiskStore(dir string, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Dir は保存先ディレクトリを返します。
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save は r の内容を一意なファイル名で保存し、そのファイル名を返します。
func (s *DiskStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("upload: create %s: %w", name, err)
	}

	written, copyErr := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("upload: write %s: %w", name, copyErr)
	case written > s.maxBytes:
		_ = os.Remove(path)
		return "", ErrTooLarge
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("upload: close %s: %w", name, closeErr)
	}

	return name, nil
}
