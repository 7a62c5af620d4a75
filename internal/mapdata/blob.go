package mapdata

import "context"

// BlobStore хранит сериализованные карты по идентификатору.
// Read возвращает ошибку, удовлетворяющую errors.Is(err, ErrNotFound), если карты нет.
// Write заменяет карту целиком: при ошибке прежнее содержимое остаётся нетронутым.
type BlobStore interface {
	Read(ctx context.Context, id Identifier) ([]byte, error)
	Write(ctx context.Context, id Identifier, data []byte) error
	Delete(ctx context.Context, id Identifier) error
	Close() error
}
