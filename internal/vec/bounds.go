package vec

import "fmt"

// Bounds описывает выровненный по осям параллелепипед.
// Обе вершины включены в объём.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// NewBounds создаёт Bounds из двух произвольных углов, нормализуя их
func NewBounds(a, b Vec3) Bounds {
	return Bounds{
		Min: Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// Single возвращает Bounds из одной точки
func Single(p Vec3) Bounds {
	return Bounds{Min: p, Max: p}
}

// Contains проверяет, попадает ли точка в границы
func (b Bounds) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Offset сдвигает границы на вектор
func (b Bounds) Offset(delta Vec3) Bounds {
	return Bounds{Min: b.Min.Add(delta), Max: b.Max.Add(delta)}
}

// Size возвращает размеры по каждой оси (включительно)
func (b Bounds) Size() Vec3 {
	return Vec3{
		X: b.Max.X - b.Min.X + 1,
		Y: b.Max.Y - b.Min.Y + 1,
		Z: b.Max.Z - b.Min.Z + 1,
	}
}

// Volume возвращает количество точек внутри границ
func (b Bounds) Volume() int {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Union возвращает минимальные границы, содержащие обе области
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		Min: Vec3{X: min(b.Min.X, other.Min.X), Y: min(b.Min.Y, other.Min.Y), Z: min(b.Min.Z, other.Min.Z)},
		Max: Vec3{X: max(b.Max.X, other.Max.X), Y: max(b.Max.Y, other.Max.Y), Z: max(b.Max.Z, other.Max.Z)},
	}
}

// Center возвращает целочисленный центр области
func (b Bounds) Center() Vec3 {
	return Vec3{
		X: b.Min.X + (b.Max.X-b.Min.X)/2,
		Y: b.Min.Y + (b.Max.Y-b.Min.Y)/2,
		Z: b.Min.Z + (b.Max.Z-b.Min.Z)/2,
	}
}

// ForEach обходит все точки области.
// Порядок обхода: Y снаружи, затем Z, X самый внутренний (слой за слоем снизу вверх).
// Если fn возвращает false, обход прекращается.
func (b Bounds) ForEach(fn func(p Vec3) bool) {
	for y := b.Min.Y; y <= b.Max.Y; y++ {
		for z := b.Min.Z; z <= b.Max.Z; z++ {
			for x := b.Min.X; x <= b.Max.X; x++ {
				if !fn(Vec3{X: x, Y: y, Z: z}) {
					return
				}
			}
		}
	}
}

// String возвращает строковое представление границ
func (b Bounds) String() string {
	return fmt.Sprintf("[%s .. %s]", b.Min, b.Max)
}
