package voxel

import "fmt"

// CorruptChunkError сообщает о повреждённых данных одного чанка:
// короткий упакованный массив, ссылка за пределы палитры или сломанная палитра.
type CorruptChunkError struct {
	Reason string
	Err    error
}

func (e *CorruptChunkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("повреждённый чанк: %s: %v", e.Reason, e.Err)
	}
	return "повреждённый чанк: " + e.Reason
}

func (e *CorruptChunkError) Unwrap() error { return e.Err }

func corrupt(format string, args ...any) error {
	return &CorruptChunkError{Reason: fmt.Sprintf(format, args...)}
}
