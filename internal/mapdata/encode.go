package mapdata

import (
	"bytes"
	"fmt"

	"github.com/Tnze/go-mc/nbt"
)

// Encode сериализует карту в контейнер.
// Результат детерминирован: чанки по возрастанию координат (x, y, z),
// вспомогательные данные по возрастанию позиции, регионы в порядке хранения,
// метаданные регионов по ключу.
func (s *Store[V]) Encode(codec ValueCodec[V]) ([]byte, error) {
	root := nbtMap{
		Version: FormatVersion,
		Chunks:  make([]nbtChunk, 0, len(s.chunks)),
		Bounds:  boundsToNBT(s.bounds),
	}

	for _, key := range s.ChunkCoords() {
		palette, words := s.chunks[key].Serialize()

		ids := make([]string, len(palette))
		for i, v := range palette {
			id, err := codec.Encode(v)
			if err != nil {
				return nil, fmt.Errorf("кодирование палитры чанка %s: %w", key, err)
			}
			ids[i] = id
		}

		states := make([]int64, len(words))
		for i, w := range words {
			states[i] = int64(w)
		}

		root.Chunks = append(root.Chunks, nbtChunk{
			Pos:         key.Ints32(),
			Palette:     ids,
			BlockStates: states,
		})
	}

	positions := s.AuxiliaryPositions()
	root.BlockEntities = make([]nbtBlockEntity, 0, len(positions))
	for _, pos := range positions {
		root.BlockEntities = append(root.BlockEntities, nbtBlockEntity{
			Pos:     pos.Ints32(),
			Payload: s.auxiliary[pos],
		})
	}

	root.Regions = make([]nbtRegion, 0, len(s.regions))
	for _, r := range s.regions {
		data := make([]nbtMeta, 0, len(r.Metadata))
		for _, k := range r.sortedMetaKeys() {
			data = append(data, nbtMeta{Key: k, Value: r.Metadata[k]})
		}
		root.Regions = append(root.Regions, nbtRegion{
			Marker: r.Name,
			Bounds: boundsToNBT(r.Bounds),
			Data:   data,
		})
	}

	var buf bytes.Buffer
	if err := nbt.NewEncoder(&buf).Encode(root, ""); err != nil {
		return nil, fmt.Errorf("ошибка кодирования NBT: %w", err)
	}
	return buf.Bytes(), nil
}
