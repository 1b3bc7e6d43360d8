package vec

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// ChunkShift – log2 размера чанка
	ChunkShift = 4
	// ChunkSize – сторона чанка в блоках
	ChunkSize = 1 << ChunkShift
	chunkMask = ChunkSize - 1
)

// Vec2 представляет 2D координаты
type Vec2 struct {
	X, Y int
}

// ToChunkCoords преобразует глобальные координаты в координаты чанка.
// Арифметический сдвиг даёт деление с округлением вниз и для отрицательных координат.
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> ChunkShift, Y: v.Y >> ChunkShift}
}

// LocalInChunk возвращает локальные координаты внутри чанка (всегда в [0, ChunkSize))
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: v.X & chunkMask, Y: v.Y & chunkMask}
}

// ChunkOrigin возвращает мировые координаты левого верхнего блока чанка
func (v Vec2) ChunkOrigin() Vec2 {
	return Vec2{X: v.X << ChunkShift, Y: v.Y << ChunkShift}
}

// FromChunkLocal собирает мировые координаты из координат чанка и локальных координат
func FromChunkLocal(chunk, local Vec2) Vec2 {
	origin := chunk.ChunkOrigin()
	return Vec2{X: origin.X + local.X, Y: origin.Y + local.Y}
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// ChebyshevTo возвращает расстояние Чебышёва (max(|dx|, |dy|))
func (v Vec2) ChebyshevTo(other Vec2) int {
	dx := v.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := v.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Key возвращает ключ вида "x,y", используемый в файлах сохранений
func (v Vec2) Key() string {
	return fmt.Sprintf("%d,%d", v.X, v.Y)
}

// ParseKey разбирает ключ вида "x,y"
func ParseKey(key string) (Vec2, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Vec2{}, fmt.Errorf("некорректный ключ координат %q", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Vec2{}, fmt.Errorf("некорректный ключ координат %q: %w", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Vec2{}, fmt.Errorf("некорректный ключ координат %q: %w", key, err)
	}
	return Vec2{X: x, Y: y}, nil
}
