package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/annel0/arena-maps/internal/mapdata"
)

// FileBlobStore хранит карты файлами <root>/<namespace>/<path>/map.nbt.
// Запись идёт во временный файл того же каталога с последующим переименованием,
// поэтому при сбое прежний файл остаётся целым.
type FileBlobStore struct {
	root string
}

// NewFileBlobStore создаёт файловое хранилище с корнем root
func NewFileBlobStore(root string) (*FileBlobStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог карт %s: %w", root, err)
	}
	return &FileBlobStore{root: root}, nil
}

// Root корневой каталог
func (s *FileBlobStore) Root() string { return s.root }

func (s *FileBlobStore) path(id mapdata.Identifier) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id.ResourcePath(s.root, mapdata.FileExtension), nil
}

// Read читает файл карты
func (s *FileBlobStore) Read(ctx context.Context, id mapdata.Identifier) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, mapdata.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return data, nil
}

// Write атомарно заменяет файл карты
func (s *FileBlobStore) Write(ctx context.Context, id mapdata.Identifier, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(id)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("не удалось создать каталог %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".map-*.tmp")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл в %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("ошибка записи %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("ошибка sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("ошибка закрытия %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("ошибка переименования %s: %w", path, err)
	}
	return nil
}

// Delete удаляет файл карты
func (s *FileBlobStore) Delete(ctx context.Context, id mapdata.Identifier) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, mapdata.ErrNotFound)
		}
		return fmt.Errorf("ошибка удаления %s: %w", path, err)
	}
	return nil
}

// List перечисляет все карты под корнем
func (s *FileBlobStore) List(ctx context.Context) ([]mapdata.Identifier, error) {
	var out []mapdata.Identifier
	fileName := "map." + mapdata.FileExtension

	err := filepath.WalkDir(s.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || d.Name() != fileName {
			return nil
		}
		rel, err := filepath.Rel(s.root, filepath.Dir(p))
		if err != nil {
			return err
		}
		ns, path, ok := splitRel(filepath.ToSlash(rel))
		if !ok {
			return nil
		}
		if id, err := mapdata.NewIdentifier(ns, path); err == nil {
			out = append(out, id)
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ошибка обхода %s: %w", s.root, err)
	}
	sortIdentifiers(out)
	return out, nil
}

// Close ничего не делает
func (s *FileBlobStore) Close() error { return nil }
