package voxel

import "fmt"

const wordBits = 64

// PackedArray хранит фиксированное количество беззнаковых индексов
// одинаковой ширины в массиве uint64. Биты пишутся начиная с младшего,
// элемент может пересекать границу слова.
type PackedArray struct {
	bits  int
	size  int
	mask  uint64
	words []uint64
}

// WordsFor возвращает количество слов, необходимых для n элементов шириной bits
func WordsFor(bits, n int) int {
	return (n*bits + wordBits - 1) / wordBits
}

// NewPackedArray создаёт заполненный нулями массив из size элементов шириной bits
func NewPackedArray(bits, size int) *PackedArray {
	if bits < 1 || bits > wordBits {
		panic(fmt.Sprintf("voxel: недопустимая ширина индекса %d", bits))
	}
	return &PackedArray{
		bits:  bits,
		size:  size,
		mask:  maskFor(bits),
		words: make([]uint64, WordsFor(bits, size)),
	}
}

// UnpackArray оборачивает готовый массив слов. Слова копируются.
// Возвращает ошибку, если слов меньше, чем нужно для size элементов.
func UnpackArray(bits, size int, words []uint64) (*PackedArray, error) {
	if bits < 1 || bits > wordBits {
		return nil, fmt.Errorf("недопустимая ширина индекса %d", bits)
	}
	need := WordsFor(bits, size)
	if len(words) < need {
		return nil, fmt.Errorf("упакованный массив слишком короткий: %d слов, нужно %d", len(words), need)
	}
	a := &PackedArray{
		bits:  bits,
		size:  size,
		mask:  maskFor(bits),
		words: make([]uint64, need),
	}
	copy(a.words, words[:need])
	return a, nil
}

func maskFor(bits int) uint64 {
	if bits == wordBits {
		return ^uint64(0)
	}
	return 1<<uint(bits) - 1
}

// Bits возвращает ширину элемента
func (a *PackedArray) Bits() int { return a.bits }

// Len возвращает количество элементов
func (a *PackedArray) Len() int { return a.size }

// Get читает элемент i
func (a *PackedArray) Get(i int) uint64 {
	bitPos := i * a.bits
	word := bitPos / wordBits
	offset := uint(bitPos % wordBits)

	v := a.words[word] >> offset
	// Хвост элемента лежит в следующем слове
	if int(offset)+a.bits > wordBits {
		v |= a.words[word+1] << (wordBits - offset)
	}
	return v & a.mask
}

// Set записывает элемент i. Значение обрезается до ширины элемента.
func (a *PackedArray) Set(i int, value uint64) {
	value &= a.mask
	bitPos := i * a.bits
	word := bitPos / wordBits
	offset := uint(bitPos % wordBits)

	a.words[word] = a.words[word]&^(a.mask<<offset) | value<<offset
	if int(offset)+a.bits > wordBits {
		spill := wordBits - offset
		a.words[word+1] = a.words[word+1]&^(a.mask>>spill) | value>>spill
	}
}

// Resize перепаковывает массив под новую ширину. Значения не меняются.
func (a *PackedArray) Resize(bits int) {
	if bits == a.bits {
		return
	}
	next := NewPackedArray(bits, a.size)
	for i := 0; i < a.size; i++ {
		next.Set(i, a.Get(i))
	}
	*a = *next
}

// Words возвращает копию упакованных слов
func (a *PackedArray) Words() []uint64 {
	out := make([]uint64, len(a.words))
	copy(out, a.words)
	return out
}
