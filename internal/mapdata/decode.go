package mapdata

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Tnze/go-mc/nbt"

	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/vec"
	"github.com/annel0/arena-maps/internal/voxel"
)

// Decode разбирает контейнер карты.
//
// Повреждение одной записи (чанк, блок, регион) не прерывает загрузку:
// запись пропускается, а ошибка сохраняется в Warnings(). Отсутствие
// обязательных полей или обрезанный поток дают *FormatError.
func Decode[V comparable](id Identifier, data []byte, codec ValueCodec[V]) (*Store[V], error) {
	var root map[string]nbt.RawMessage
	if _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		logging.Debug("Заголовок повреждённой карты %s:\n%s", id, logging.HexDump(data))
		return nil, &FormatError{Reason: "корневой тег не прочитан", Err: err}
	}

	if raw, ok := root[fieldVersion]; ok {
		var version int32
		if err := raw.Unmarshal(&version); err != nil {
			return nil, &FormatError{Reason: "поле version", Err: err}
		}
		if version > FormatVersion {
			return nil, &FormatError{Reason: fmt.Sprintf("неподдерживаемая версия %d", version)}
		}
	}

	rawChunks, ok := root[fieldChunks]
	if !ok {
		return nil, &FormatError{Reason: "нет обязательного поля chunks"}
	}
	rawBounds, ok := root[fieldBounds]
	if !ok {
		return nil, &FormatError{Reason: "нет обязательного поля bounds"}
	}

	var bounds nbtBounds
	if err := rawBounds.Unmarshal(&bounds); err != nil {
		return nil, &FormatError{Reason: "поле bounds", Err: err}
	}
	b, _, valid := bounds.toBounds()
	if !valid {
		return nil, &FormatError{Reason: "поле bounds должно содержать две координаты из 3 элементов"}
	}

	store := New(id, codec.Empty())
	store.SetBounds(b)

	var chunks []nbt.RawMessage
	if err := rawChunks.Unmarshal(&chunks); err != nil {
		return nil, &FormatError{Reason: "поле chunks не является списком", Err: err}
	}
	for i, raw := range chunks {
		if err := store.decodeChunk(i, raw, codec); err != nil {
			store.warn(err)
		}
	}

	if raw, ok := root[fieldBlockEntities]; ok {
		var entries []nbt.RawMessage
		if err := raw.Unmarshal(&entries); err != nil {
			return nil, &FormatError{Reason: "поле block_entities не является списком", Err: err}
		}
		for i, entry := range entries {
			if err := store.decodeBlockEntity(i, entry); err != nil {
				store.warn(err)
			}
		}
	}

	if raw, ok := root[fieldRegions]; ok {
		var entries []nbt.RawMessage
		if err := raw.Unmarshal(&entries); err != nil {
			return nil, &FormatError{Reason: "поле regions не является списком", Err: err}
		}
		for i, entry := range entries {
			if err := store.decodeRegion(i, entry); err != nil {
				store.warn(err)
			}
		}
	}

	for _, w := range store.warnings {
		logging.Warn("⚠️ Карта %s: запись пропущена: %v", id, w)
	}

	return store, nil
}

func (s *Store[V]) decodeChunk(i int, raw nbt.RawMessage, codec ValueCodec[V]) error {
	var entry nbtChunk
	if err := raw.Unmarshal(&entry); err != nil {
		return &EntryError{Section: fieldChunks, Index: i, Err: err}
	}

	key, ok := vec.FromInts32(entry.Pos)
	if !ok {
		return &MalformedKeyError{Section: fieldChunks, Index: i, Arity: len(entry.Pos)}
	}
	if _, dup := s.chunks[key]; dup {
		return &EntryError{Section: fieldChunks, Index: i, Err: fmt.Errorf("повтор чанка %s", key)}
	}

	palette := make([]V, len(entry.Palette))
	for j, name := range entry.Palette {
		v, err := codec.Decode(name)
		if err != nil {
			return &EntryError{Section: fieldChunks, Index: i, Err: fmt.Errorf("палитра[%d] %q: %w", j, name, err)}
		}
		palette[j] = v
	}

	words := make([]uint64, len(entry.BlockStates))
	for j, w := range entry.BlockStates {
		words[j] = uint64(w)
	}

	hint := 0
	if bits := len(words) * 64; bits%voxel.Volume == 0 {
		hint = bits / voxel.Volume
	}

	chunk, err := voxel.DeserializeChunk(s.empty, palette, words, hint)
	if err != nil {
		return &EntryError{Section: fieldChunks, Index: i, Err: err}
	}
	s.chunks[key] = chunk
	return nil
}

func (s *Store[V]) decodeBlockEntity(i int, raw nbt.RawMessage) error {
	var entry nbtBlockEntity
	if err := raw.Unmarshal(&entry); err != nil {
		return &EntryError{Section: fieldBlockEntities, Index: i, Err: err}
	}
	pos, ok := vec.FromInts32(entry.Pos)
	if !ok {
		return &MalformedKeyError{Section: fieldBlockEntities, Index: i, Arity: len(entry.Pos)}
	}
	if entry.Payload == nil {
		entry.Payload = []byte{}
	}
	s.auxiliary[pos] = entry.Payload
	return nil
}

func (s *Store[V]) decodeRegion(i int, raw nbt.RawMessage) error {
	var entry nbtRegion
	if err := raw.Unmarshal(&entry); err != nil {
		return &EntryError{Section: fieldRegions, Index: i, Err: err}
	}
	b, arity, ok := entry.Bounds.toBounds()
	if !ok {
		return &MalformedKeyError{Section: fieldRegions, Index: i, Arity: arity}
	}

	r := Region{Name: entry.Marker, Bounds: b}
	if len(entry.Data) > 0 {
		r.Metadata = make(map[string]string, len(entry.Data))
		for _, kv := range entry.Data {
			r.Metadata[kv.Key] = kv.Value
		}
	}
	s.regions = append(s.regions, r)
	return nil
}

// IsWarning сообщает, относится ли ошибка к пропущенной записи, а не к фатальному сбою
func IsWarning(err error) bool {
	var mk *MalformedKeyError
	var ee *EntryError
	var cc *CorruptChunkError
	return errors.As(err, &mk) || errors.As(err, &ee) || errors.As(err, &cc)
}
