package world

import (
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// ChunkSize – сторона чанка в блоках
const ChunkSize = vec.ChunkSize

// Chunk представляет участок мира размером 16x16 блоков
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	Blocks [ChunkSize][ChunkSize]*Block // Blocks[x][y], локальные координаты

	Changes       map[vec.Vec2]struct{} // Изменённые с последнего сохранения клетки
	ChangeCounter int                   // Счетчик изменений
}

// NewChunk создаёт новый пустой чанк с указанными координатами
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords:  coords,
		Changes: make(map[vec.Vec2]struct{}),
	}
}

// GenerateChunk заполняет чанк, вызывая gen один раз для каждой клетки
func GenerateChunk(coords vec.Vec2, gen func(x, y int) block.BlockID) *Chunk {
	chunk := NewChunk(coords)
	origin := coords.ChunkOrigin()

	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			chunk.Blocks[x][y] = NewBlock(gen(origin.X+x, origin.Y+y))
		}
	}

	return chunk
}

// GetBlock возвращает блок по локальным координатам
func (c *Chunk) GetBlock(local vec.Vec2) *Block {
	if !inChunk(local) {
		return nil
	}
	return c.Blocks[local.X][local.Y]
}

// SetBlock устанавливает блок по локальным координатам и отмечает изменение
func (c *Chunk) SetBlock(local vec.Vec2, b *Block) bool {
	if !inChunk(local) {
		return false
	}

	c.Blocks[local.X][local.Y] = b
	c.Changes[local] = struct{}{}
	c.ChangeCounter++
	return true
}

// HasChanges возвращает true, если в чанке есть изменения
func (c *Chunk) HasChanges() bool {
	return c.ChangeCounter > 0
}

// ClearChanges очищает список изменений
func (c *Chunk) ClearChanges() {
	c.Changes = make(map[vec.Vec2]struct{})
	c.ChangeCounter = 0
}

// ForEach обходит все клетки чанка в порядке x, затем y
func (c *Chunk) ForEach(fn func(local vec.Vec2, b *Block)) {
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			if b := c.Blocks[x][y]; b != nil {
				fn(vec.Vec2{X: x, Y: y}, b)
			}
		}
	}
}

func inChunk(local vec.Vec2) bool {
	return local.X >= 0 && local.X < ChunkSize && local.Y >= 0 && local.Y < ChunkSize
}
