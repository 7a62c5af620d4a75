package vec

import "fmt"

// ChunkShift сдвиг для перевода абсолютной координаты в координату чанка (16 = 1<<4)
const ChunkShift = 4

// ChunkMask маска для получения локальной координаты внутри чанка
const ChunkMask = 1<<ChunkShift - 1

// Vec3 представляет трехмерный вектор с целочисленными координатами
type Vec3 struct {
	X int
	Y int
	Z int
}

// Origin нулевая точка
var Origin = Vec3{}

// New3 создаёт вектор из трёх координат
func New3(x, y, z int) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// ChunkCoords возвращает координаты чанка, содержащего точку.
// Используется арифметический сдвиг, поэтому отрицательные координаты
// попадают в правильный чанк (-1 >> 4 == -1).
func (v Vec3) ChunkCoords() Vec3 {
	return Vec3{
		X: v.X >> ChunkShift,
		Y: v.Y >> ChunkShift,
		Z: v.Z >> ChunkShift,
	}
}

// LocalInChunk возвращает локальные координаты внутри чанка (0..15)
func (v Vec3) LocalInChunk() Vec3 {
	return Vec3{
		X: v.X & ChunkMask,
		Y: v.Y & ChunkMask,
		Z: v.Z & ChunkMask,
	}
}

// Less задаёт стабильный порядок: сначала X, затем Y, затем Z
func (v Vec3) Less(other Vec3) bool {
	if v.X != other.X {
		return v.X < other.X
	}
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.Z < other.Z
}

// Ints32 возвращает координаты как массив int32 (формат хранения)
func (v Vec3) Ints32() []int32 {
	return []int32{int32(v.X), int32(v.Y), int32(v.Z)}
}

// FromInts32 собирает вектор из массива int32.
// Возвращает false, если длина массива не равна 3.
func FromInts32(a []int32) (Vec3, bool) {
	if len(a) != 3 {
		return Vec3{}, false
	}
	return Vec3{X: int(a[0]), Y: int(a[1]), Z: int(a[2])}, true
}

// String возвращает строковое представление вектора
func (v Vec3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}
