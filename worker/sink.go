package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink 成片的存放位置，返回可以定位该对象的地址
type Sink interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// DirSink 写到本地目录，key 经过清洗不能逃出根目录
type DirSink struct {
	basePath string
}

var _ Sink = (*DirSink)(nil)

func NewDirSink(basePath string) (*DirSink, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("sink: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("sink: ensure base path: %w", err)
	}
	return &DirSink{basePath: basePath}, nil
}

func (s *DirSink) BasePath() string {
	return s.basePath
}

// Put 返回写入文件的完整路径
func (s *DirSink) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("sink: ensure directory: %w", err)
	}

	// 先写临时文件再改名，读者不会看到写了一半的图片
	tmp := fullPath + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("sink: write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("sink: rename: %w", err)
	}
	return fullPath, nil
}

func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("sink: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("sink: invalid key %q", key)
	}
	return cleaned, nil
}
