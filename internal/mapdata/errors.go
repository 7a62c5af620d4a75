package mapdata

import (
	"errors"
	"fmt"

	"github.com/annel0/arena-maps/internal/voxel"
)

// ErrNotFound возвращается хранилищем, если карты с таким идентификатором нет
var ErrNotFound = errors.New("карта не найдена")

// CorruptChunkError повреждение данных одного чанка
type CorruptChunkError = voxel.CorruptChunkError

// IoError ресурс карты не удалось прочитать или записать. Фатальна.
type IoError struct {
	Op  string
	ID  Identifier
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("ошибка %s карты %s: %v", e.Op, e.ID, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// FormatError поток не содержит корректного контейнера верхнего уровня. Фатальна.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("неверный формат карты: %s: %v", e.Reason, e.Err)
	}
	return "неверный формат карты: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// MalformedKeyError координатный ключ записи имеет неверную длину. Запись пропускается.
type MalformedKeyError struct {
	Section string
	Index   int
	Arity   int
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("%s[%d]: координата из %d элементов вместо 3", e.Section, e.Index, e.Arity)
}

// EntryError запись секции не разобрана и пропущена
type EntryError struct {
	Section string
	Index   int
	Err     error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Section, e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
