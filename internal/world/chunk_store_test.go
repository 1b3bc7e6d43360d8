package world

import (
	"testing"
	"time"

	"github.com/annel0/minecraft2d/internal/terrain"
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator – простой генератор для тестов хранилища
type stubGenerator struct {
	calls int
}

func (g *stubGenerator) GenerateBlockType(x, y int) block.BlockID {
	g.calls++
	if (x+y)%2 == 0 {
		return block.StoneBlockID
	}
	return block.GrassBlockID
}

func (g *stubGenerator) Seed() int64 { return 99 }

type countingObserver struct {
	generated int
	replaced  []block.BlockID
}

func (o *countingObserver) ChunkGenerated(time.Duration)     { o.generated++ }
func (o *countingObserver) BlockReplaced(id block.BlockID) { o.replaced = append(o.replaced, id) }

func TestChunkStoreSeed42Scenario(t *testing.T) {
	a := NewChunkStore(terrain.MustNewGenerator(42, nil))
	b := NewChunkStore(terrain.MustNewGenerator(42, nil))

	origin := vec.Vec2{}
	ba := a.GetBlock(origin)
	bb := b.GetBlock(origin)
	require.NotNil(t, ba)
	require.NotNil(t, bb)

	assert.Equal(t, ba.ID, bb.ID)
	assert.Equal(t, ba.MaxHealth, bb.MaxHealth)
	assert.Equal(t, ba.CurrentHealth, bb.CurrentHealth)
	assert.Equal(t, int64(42), a.Seed())
}

func TestGetBlockMaterializesOnce(t *testing.T) {
	gen := &stubGenerator{}
	store := NewChunkStore(gen)

	first := store.GetBlock(vec.Vec2{X: -1, Y: -1})
	assert.Equal(t, ChunkSize*ChunkSize, gen.calls)
	assert.True(t, store.HasChunk(vec.Vec2{X: -1, Y: -1}))

	// Повторный запрос возвращает тот же живой блок
	assert.Same(t, first, store.GetBlock(vec.Vec2{X: -1, Y: -1}))
	assert.Equal(t, ChunkSize*ChunkSize, gen.calls)
	assert.Equal(t, 1, store.Len())
}

func TestReplaceBeforeGenerate(t *testing.T) {
	store := NewChunkStore(terrain.MustNewGenerator(42, nil))
	pos := vec.Vec2{X: 1000, Y: 1000}

	assert.False(t, store.ReplaceBlock(pos, block.DirtBlockID))
	assert.Nil(t, store.PeekBlock(pos))

	store.GetBlock(pos)
	require.True(t, store.ReplaceBlock(pos, block.DirtBlockID))

	b := store.GetBlock(pos)
	assert.Equal(t, block.DirtBlockID, b.ID)
	assert.Equal(t, b.MaxHealth, b.CurrentHealth)
	assert.True(t, store.Chunk(pos.ToChunkCoords()).HasChanges())
}

func TestRegenerationIsDeterministic(t *testing.T) {
	gen := terrain.MustNewGenerator(7, nil)
	first := NewChunkStore(gen)
	first.EnsureRegion(vec.Vec2{X: 40, Y: -40}, 1)

	second := NewChunkStore(gen)
	for _, chunk := range first.Chunks() {
		chunk.ForEach(func(local vec.Vec2, b *Block) {
			pos := vec.FromChunkLocal(chunk.Coords, local)
			other := second.GetBlock(pos)
			assert.Equal(t, b.ID, other.ID)
			assert.Equal(t, b.CurrentHealth, other.CurrentHealth)
		})
	}
}

func TestEnsureRegion(t *testing.T) {
	obs := &countingObserver{}
	store := NewChunkStore(&stubGenerator{})
	store.SetObserver(obs)

	created := store.EnsureRegion(vec.Vec2{X: 5, Y: 5}, 2)
	assert.Equal(t, 25, created)
	assert.Equal(t, 25, store.Len())
	assert.Equal(t, 25, obs.generated)

	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 2; dy++ {
			assert.True(t, store.HasChunk(vec.Vec2{X: dx, Y: dy}))
		}
	}
	assert.False(t, store.HasChunk(vec.Vec2{X: 3, Y: 0}))

	// Сдвиг на один чанк создаёт только новую полосу
	created = store.EnsureRegion(vec.Vec2{X: 16, Y: 0}, 2)
	assert.Equal(t, 5, created)
	assert.Equal(t, 30, store.Len())
}

func TestRadiusForViewport(t *testing.T) {
	// Окно 25x19 клеток: пять чанков на сторону, как в исходной игре
	assert.Equal(t, 2, RadiusForViewport(25, 19))
	assert.Equal(t, 1, RadiusForViewport(0, 0))
	assert.Equal(t, 2, RadiusForViewport(32, 10))
	assert.Equal(t, 3, RadiusForViewport(33, 10))
}

func TestLoadChunkAndChunksOrder(t *testing.T) {
	gen := &stubGenerator{}
	store := NewChunkStore(gen)

	saved := NewChunk(vec.Vec2{X: 1, Y: 0})
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			saved.Blocks[x][y] = RestoreBlock(block.CoalBlockID, 2.5)
		}
	}
	store.LoadChunk(saved)
	store.GetBlock(vec.Vec2{X: -5, Y: 3})
	store.GetBlock(vec.Vec2{X: 0, Y: 20})

	assert.Equal(t, 2*ChunkSize*ChunkSize, gen.calls, "загруженный чанк не генерируется")

	b := store.GetBlock(vec.Vec2{X: 17, Y: 4})
	assert.Equal(t, block.CoalBlockID, b.ID)
	assert.Equal(t, 2.5, b.CurrentHealth)

	var order []vec.Vec2
	for _, c := range store.Chunks() {
		order = append(order, c.Coords)
	}
	assert.Equal(t, []vec.Vec2{{X: -1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}}, order)
}

func TestQueryBlocks(t *testing.T) {
	obs := &countingObserver{}
	store := NewChunkStore(&stubGenerator{})
	store.SetObserver(obs)

	rows := store.QueryBlocks(vec.Vec2{X: -1, Y: -1}, vec.Vec2{X: 1, Y: 0})
	require.Len(t, rows, 2)
	assert.Equal(t, []block.BlockID{block.StoneBlockID, block.GrassBlockID, block.StoneBlockID}, rows[0])
	assert.Equal(t, []block.BlockID{block.GrassBlockID, block.StoneBlockID, block.GrassBlockID}, rows[1])
	assert.Equal(t, 4, obs.generated)

	assert.Nil(t, store.QueryBlocks(vec.Vec2{X: 1}, vec.Vec2{X: 0}))

	require.True(t, store.ReplaceBlock(vec.Vec2{}, block.TorchBlockID))
	assert.Equal(t, []block.BlockID{block.TorchBlockID}, obs.replaced)
}

func TestPatcherAppliedToNewChunks(t *testing.T) {
	store := NewChunkStore(&stubGenerator{})
	patched := 0
	store.SetPatcher(ChunkPatcherFunc(func(c *Chunk) {
		patched++
		c.Blocks[0][0] = RestoreBlock(block.DiamondBlockID, 3)
	}))

	b := store.GetBlock(vec.Vec2{X: 32, Y: 32})
	assert.Equal(t, block.DiamondBlockID, b.ID)
	assert.Equal(t, 3.0, b.CurrentHealth)
	assert.False(t, store.Chunk(vec.Vec2{X: 2, Y: 2}).HasChanges(), "наложенные изменения уже сохранены")

	store.LoadChunk(NewChunk(vec.Vec2{X: 9, Y: 9}))
	store.GetBlock(vec.Vec2{X: 33, Y: 33})
	assert.Equal(t, 1, patched)
}

func TestLoadChunkFillsMissingCells(t *testing.T) {
	gen := &stubGenerator{}
	store := NewChunkStore(gen)

	partial := NewChunk(vec.Vec2{X: 0, Y: 0})
	partial.Blocks[0][0] = RestoreBlock(block.GrassBlockID, 1)
	partial.Blocks[3][2] = RestoreBlock(block.WoodBlockID, 0.5)

	filled := store.LoadChunk(partial)
	assert.Equal(t, ChunkSize*ChunkSize-2, filled)
	assert.Equal(t, filled, gen.calls)
	assert.False(t, store.Chunk(vec.Vec2{}).HasChanges())

	// Сохранённые клетки не затираются
	b := store.GetBlock(vec.Vec2{X: 3, Y: 2})
	assert.Equal(t, block.WoodBlockID, b.ID)
	assert.Equal(t, 0.5, b.CurrentHealth)

	// Недостающие совпадают с генератором
	assert.Equal(t, block.StoneBlockID, store.BlockType(5, 5))
	assert.Equal(t, block.GrassBlockID, store.BlockType(5, 6))

	rows := store.QueryBlocks(vec.Vec2{}, vec.Vec2{X: ChunkSize - 1, Y: ChunkSize - 1})
	require.Len(t, rows, ChunkSize)
	for _, row := range rows {
		assert.NotContains(t, row, block.None)
	}
}
