package world

import (
	"math"
	"sort"
	"time"

	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// BlockTypeGenerator определяет тип блока по мировым координатам
type BlockTypeGenerator interface {
	GenerateBlockType(x, y int) block.BlockID
	Seed() int64
}

// StoreObserver получает уведомления о работе хранилища (метрики)
type StoreObserver interface {
	ChunkGenerated(elapsed time.Duration)
	BlockReplaced(id block.BlockID)
}

// ChunkPatcher дорабатывает только что сгенерированный чанк (например, накладывает сохранённые изменения)
type ChunkPatcher interface {
	PatchChunk(chunk *Chunk)
}

// ChunkPatcherFunc – функция-адаптер для ChunkPatcher
type ChunkPatcherFunc func(chunk *Chunk)

// PatchChunk вызывает f(chunk)
func (f ChunkPatcherFunc) PatchChunk(chunk *Chunk) {
	f(chunk)
}

// ChunkStore – ленивое хранилище чанков бесконечного мира.
// Не потокобезопасно: владельцем является игровой цикл.
type ChunkStore struct {
	chunks    map[vec.Vec2]*Chunk
	generator BlockTypeGenerator
	observer  StoreObserver
	patcher   ChunkPatcher
}

// NewChunkStore создаёт пустое хранилище поверх генератора
func NewChunkStore(generator BlockTypeGenerator) *ChunkStore {
	return &ChunkStore{
		chunks:    make(map[vec.Vec2]*Chunk),
		generator: generator,
	}
}

// SetObserver подключает наблюдателя (nil отключает)
func (s *ChunkStore) SetObserver(o StoreObserver) {
	s.observer = o
}

// SetPatcher подключает доработку новых чанков (nil отключает)
func (s *ChunkStore) SetPatcher(p ChunkPatcher) {
	s.patcher = p
}

// Seed возвращает сид генератора мира
func (s *ChunkStore) Seed() int64 {
	return s.generator.Seed()
}

// GetBlock возвращает живой блок по мировым координатам, при необходимости генерируя чанк
func (s *ChunkStore) GetBlock(pos vec.Vec2) *Block {
	chunk := s.ensureChunk(pos.ToChunkCoords())
	return chunk.GetBlock(pos.LocalInChunk())
}

// PeekBlock возвращает блок без генерации; nil, если чанк ещё не создан
func (s *ChunkStore) PeekBlock(pos vec.Vec2) *Block {
	chunk, ok := s.chunks[pos.ToChunkCoords()]
	if !ok {
		return nil
	}
	return chunk.GetBlock(pos.LocalInChunk())
}

// ReplaceBlock ставит новый блок с полной прочностью.
// Возвращает false, если чанк по координатам ещё не создан.
func (s *ChunkStore) ReplaceBlock(pos vec.Vec2, id block.BlockID) bool {
	chunk, ok := s.chunks[pos.ToChunkCoords()]
	if !ok {
		return false
	}
	if !chunk.SetBlock(pos.LocalInChunk(), NewBlock(id)) {
		return false
	}
	if s.observer != nil {
		s.observer.BlockReplaced(id)
	}
	return true
}

// EnsureRegion создаёт все чанки на расстоянии Чебышёва <= radius от чанка точки focal.
// Возвращает количество созданных чанков.
func (s *ChunkStore) EnsureRegion(focal vec.Vec2, radius int) int {
	center := focal.ToChunkCoords()
	created := 0
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			coords := vec.Vec2{X: center.X + dx, Y: center.Y + dy}
			if _, ok := s.chunks[coords]; ok {
				continue
			}
			s.ensureChunk(coords)
			created++
		}
	}
	return created
}

// RadiusForViewport возвращает радиус области чанков, покрывающий видимую
// область width×height клеток плюс один запасной чанк
func RadiusForViewport(width, height int) int {
	half := float64(max(width, height)) / 2
	return int(math.Ceil(half/ChunkSize)) + 1
}

// HasChunk проверяет, создан ли чанк
func (s *ChunkStore) HasChunk(coords vec.Vec2) bool {
	_, ok := s.chunks[coords]
	return ok
}

// Chunk возвращает созданный чанк или nil
func (s *ChunkStore) Chunk(coords vec.Vec2) *Chunk {
	return s.chunks[coords]
}

// LoadChunk устанавливает чанк из сохранения. Клетки, которых нет в
// сохранении, заполняются генератором; список изменений не трогается.
// Возвращает количество догенерированных клеток.
func (s *ChunkStore) LoadChunk(chunk *Chunk) int {
	origin := chunk.Coords.ChunkOrigin()
	filled := 0
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			if chunk.Blocks[x][y] == nil {
				chunk.Blocks[x][y] = NewBlock(s.generator.GenerateBlockType(origin.X+x, origin.Y+y))
				filled++
			}
		}
	}
	s.chunks[chunk.Coords] = chunk
	return filled
}

// Chunks возвращает все созданные чанки, упорядоченные по (X, Y)
func (s *ChunkStore) Chunks() []*Chunk {
	out := make([]*Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coords.X != out[j].Coords.X {
			return out[i].Coords.X < out[j].Coords.X
		}
		return out[i].Coords.Y < out[j].Coords.Y
	})
	return out
}

// Len возвращает число созданных чанков
func (s *ChunkStore) Len() int {
	return len(s.chunks)
}

// QueryBlocks возвращает типы блоков прямоугольника [from, to] включительно,
// строка на каждый y. Недостающие чанки генерируются.
func (s *ChunkStore) QueryBlocks(from, to vec.Vec2) [][]block.BlockID {
	if to.X < from.X || to.Y < from.Y {
		return nil
	}
	rows := make([][]block.BlockID, 0, to.Y-from.Y+1)
	for y := from.Y; y <= to.Y; y++ {
		row := make([]block.BlockID, 0, to.X-from.X+1)
		for x := from.X; x <= to.X; x++ {
			row = append(row, s.BlockType(x, y))
		}
		rows = append(rows, row)
	}
	return rows
}

// BlockType возвращает тип блока по координатам; удобно для текстовых карт
func (s *ChunkStore) BlockType(x, y int) block.BlockID {
	if b := s.GetBlock(vec.Vec2{X: x, Y: y}); b != nil {
		return b.ID
	}
	return block.None
}

func (s *ChunkStore) ensureChunk(coords vec.Vec2) *Chunk {
	if chunk, ok := s.chunks[coords]; ok {
		return chunk
	}

	start := time.Now()
	chunk := GenerateChunk(coords, s.generator.GenerateBlockType)
	if s.patcher != nil {
		s.patcher.PatchChunk(chunk)
	}
	s.chunks[coords] = chunk

	if s.observer != nil {
		s.observer.ChunkGenerated(time.Since(start))
	}
	return chunk
}
