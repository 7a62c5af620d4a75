package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/arena-maps/internal/mapdata"
)

// BadgerBlobStore хранит карты в BadgerDB под ключами "map:<namespace>:<path>"
type BadgerBlobStore struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerBlobStore открывает базу в <dataPath>/maps
func NewBadgerBlobStore(dataPath string) (*BadgerBlobStore, error) {
	dbPath := filepath.Join(dataPath, "maps")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerBlobStore{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

var errStoreClosed = errors.New("хранилище закрыто")

// Read возвращает сохранённую карту
func (bs *BadgerBlobStore) Read(ctx context.Context, id mapdata.Identifier) ([]byte, error) {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return nil, errStoreClosed
	}

	var data []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(blobKey(id)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s: %w", id, mapdata.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения карты %s: %w", id, err)
	}
	return data, nil
}

// Write сохраняет карту одной транзакцией
func (bs *BadgerBlobStore) Write(ctx context.Context, id mapdata.Identifier, data []byte) error {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return errStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(blobKey(id)), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка записи карты %s: %w", id, err)
	}
	return nil
}

// Delete удаляет карту
func (bs *BadgerBlobStore) Delete(ctx context.Context, id mapdata.Identifier) error {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return errStoreClosed
	}

	key := []byte(blobKey(id))
	err := bs.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", id, mapdata.ErrNotFound)
		}
		return fmt.Errorf("ошибка удаления карты %s: %w", id, err)
	}
	return nil
}

// List перечисляет карты по префиксу ключей
func (bs *BadgerBlobStore) List(ctx context.Context) ([]mapdata.Identifier, error) {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()

	if !bs.isReady {
		return nil, errStoreClosed
	}

	var out []mapdata.Identifier
	err := bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("map:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if id, ok := parseBlobKey(string(it.Item().Key())); ok {
				out = append(out, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка перечисления карт: %w", err)
	}
	sortIdentifiers(out)
	return out, nil
}

// Close закрывает базу
func (bs *BadgerBlobStore) Close() error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	if !bs.isReady {
		return nil
	}

	bs.isReady = false
	return bs.db.Close()
}
