package game

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/annel0/minecraft2d/internal/config"
	"github.com/annel0/minecraft2d/internal/crafting"
	"github.com/annel0/minecraft2d/internal/player"
	"github.com/annel0/minecraft2d/internal/storage"
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := New(Options{Name: "test", Seed: 42, ViewportWidth: 25, ViewportHeight: 19})
	require.NoError(t, err)
	return g
}

// paint заменяет клетки вокруг игрока, чтобы тест не зависел от генерации
func paint(t *testing.T, g *Game, id block.BlockID, cells ...vec.Vec2) {
	t.Helper()
	for _, c := range cells {
		require.True(t, g.Store().ReplaceBlock(c, id))
	}
}

func TestNewEnsuresRegion(t *testing.T) {
	g := newTestGame(t)

	assert.Equal(t, "test", g.Name())
	assert.Equal(t, int64(42), g.Seed())
	assert.Equal(t, 2, g.Radius())
	assert.Equal(t, 25, g.Store().Len())
	assert.Equal(t, vec.Vec2{}, g.Player().Position)
	assert.Equal(t, player.South, g.Player().Orientation)
}

func TestNewUnsavedSeed(t *testing.T) {
	g, err := NewUnsaved(Options{})
	require.NoError(t, err)
	assert.Equal(t, UnsavedName, g.Name())
	assert.GreaterOrEqual(t, g.Seed(), int64(1))
	assert.LessOrEqual(t, g.Seed(), int64(MaxRandomSeed))

	g, err = NewUnsaved(Options{Seed: 7, Name: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), g.Seed())
	assert.Equal(t, UnsavedName, g.Name())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.World.Seed = 11
	cfg.Player.MiningRate = 3

	g, err := New(OptionsFromConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, int64(11), g.Seed())
	assert.Equal(t, 3.0, g.Player().MiningRate)
	assert.Equal(t, 240.0, g.Cycle().Duration())
}

func TestMiningAndPlacementThroughIntents(t *testing.T) {
	g := newTestGame(t)
	below := vec.Vec2{X: 0, Y: 1}
	paint(t, g, block.WoodBlockID, below)

	require.NoError(t, g.HandleIntent(ActionDown()))
	g.Update(1.0)
	target, progress, ok := g.MiningTarget()
	require.True(t, ok)
	assert.Equal(t, below, target)
	assert.InDelta(t, 1.0/1.5, progress, 1e-9)

	g.Update(1.0)
	_, _, ok = g.MiningTarget()
	assert.False(t, ok)
	assert.Equal(t, block.GrassBlockID, g.Store().GetBlock(below).ID)
	assert.Equal(t, 1, g.Player().Inventory.Count(block.WoodBlockID))

	// Отпускание, завершившее добычу, ничего не ставит
	require.NoError(t, g.HandleIntent(ActionUp()))
	assert.Equal(t, block.GrassBlockID, g.Store().GetBlock(below).ID)

	require.NoError(t, g.HandleIntent(ActionDown()))
	require.NoError(t, g.HandleIntent(ActionUp()))
	assert.Equal(t, block.WoodBlockID, g.Store().GetBlock(below).ID)
	assert.Equal(t, 0, g.Player().Inventory.Count(block.WoodBlockID))
}

func TestHeldDirectionMovesAndExtendsRegion(t *testing.T) {
	g := newTestGame(t)
	path := make([]vec.Vec2, 0, 20)
	for x := 1; x <= 20; x++ {
		path = append(path, vec.Vec2{X: x})
	}
	paint(t, g, block.GrassBlockID, path...)

	require.NoError(t, g.HandleIntent(Press(player.East)))
	for i := 0; i < 20; i++ {
		g.Update(0.2)
	}
	require.NoError(t, g.HandleIntent(Release(player.East)))
	g.Update(1.0)

	assert.Equal(t, vec.Vec2{X: 20}, g.Player().Position)
	// Игрок во втором чанке по X: добавлена полоса из пяти чанков
	assert.Equal(t, 30, g.Store().Len())
	assert.True(t, g.Store().HasChunk(vec.Vec2{X: 3, Y: 0}))
}

func TestResizeGrowsRegion(t *testing.T) {
	g := newTestGame(t)
	g.Resize(100, 10)
	assert.Equal(t, 5, g.Radius())
	assert.Equal(t, 121, g.Store().Len())

	g.Resize(-5, -5)
	assert.Equal(t, 1, g.Radius())
}

func TestViewport(t *testing.T) {
	g := newTestGame(t)

	from, to := g.Viewport()
	assert.Equal(t, vec.Vec2{X: -12, Y: -9}, from)
	assert.Equal(t, vec.Vec2{X: 12, Y: 9}, to)

	rows := g.VisibleBlocks()
	require.Len(t, rows, 19)
	assert.Len(t, rows[0], 25)
	assert.Equal(t, g.Store().GetBlock(vec.Vec2{X: -12, Y: -9}).ID, rows[0][0])
}

func TestCraftIntent(t *testing.T) {
	g := newTestGame(t)
	g.Player().Inventory.AddN(block.WoodBlockID, 3)

	require.NoError(t, g.HandleIntent(CraftItem(block.StickBlockID)))
	assert.Equal(t, 1, g.Player().Inventory.Count(block.StickBlockID))
	assert.Equal(t, 0, g.Player().Inventory.Count(block.WoodBlockID))

	err := g.HandleIntent(CraftItem(block.TorchBlockID))
	assert.True(t, errors.Is(err, crafting.ErrMissingIngredient))

	err = g.HandleIntent(CraftItem(block.StoneBlockID))
	assert.True(t, errors.Is(err, crafting.ErrUnknownRecipe))

	assert.Error(t, g.HandleIntent(Intent{Kind: IntentKind(99)}))
}

func TestSlotIntent(t *testing.T) {
	g := newTestGame(t)
	g.Player().Inventory.Add(block.WoodBlockID)
	g.Player().Inventory.Add(block.CoalBlockID)

	require.NoError(t, g.HandleIntent(Slot(1)))
	id, ok := g.Player().Inventory.ActiveType()
	require.True(t, ok)
	assert.Equal(t, block.CoalBlockID, id)
}

func TestDayCycleExposure(t *testing.T) {
	g := newTestGame(t)
	assert.Equal(t, 1.0, g.LightLevel())
	assert.Equal(t, 0, g.DarknessAlpha())

	g.Update(120)
	assert.InDelta(t, 0.5, g.TimeOfDay(), 1e-9)
	assert.InDelta(t, 0.0, g.LightLevel(), 1e-9)
	assert.Equal(t, 220, g.DarknessAlpha())

	g.Update(-10)
	assert.InDelta(t, 0.5, g.TimeOfDay(), 1e-9)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	g := newTestGame(t)
	paint(t, g, block.StoneBlockID, vec.Vec2{X: 0, Y: 1})
	paint(t, g, block.TorchBlockID, vec.Vec2{X: -7, Y: 3})

	// Частично добытый камень
	require.NoError(t, g.HandleIntent(ActionDown()))
	g.Update(1.25)
	g.Player().Inventory.AddN(block.CoalBlockID, 2)
	g.Player().Inventory.Add(block.WoodBlockID)
	require.NoError(t, g.HandleIntent(Slot(1)))
	g.Player().Turn(player.West)

	data, err := storage.EncodeSave(g.Snapshot())
	require.NoError(t, err)
	save, err := storage.DecodeSave(data)
	require.NoError(t, err)

	restored, err := FromSave(save, Options{ViewportWidth: 25, ViewportHeight: 19})
	require.NoError(t, err)

	assert.Equal(t, "test", restored.Name())
	assert.Equal(t, int64(42), restored.Seed())
	assert.Equal(t, player.West, restored.Player().Orientation)
	assert.Equal(t, g.Player().Inventory.Items(), restored.Player().Inventory.Items())
	assert.Equal(t, 1, restored.Player().Inventory.ActiveSlot())
	assert.InDelta(t, 1.25, restored.Cycle().Elapsed(), 1e-9)

	stone := restored.Store().GetBlock(vec.Vec2{X: 0, Y: 1})
	assert.Equal(t, block.StoneBlockID, stone.ID)
	assert.Equal(t, 3.75, stone.CurrentHealth)
	assert.Equal(t, block.TorchBlockID, restored.Store().GetBlock(vec.Vec2{X: -7, Y: 3}).ID)
	assert.Equal(t, g.Store().Len(), restored.Store().Len())
}

func TestFromSaveWithPartialChunk(t *testing.T) {
	save, err := storage.DecodeSave([]byte(`{"world_name":"partial","terrain_seed":42,"player":{},` +
		`"chunks":{"0,0":{"0,0":{"type":"grass","current_health":1},"2,1":{"type":"wood","current_health":0.25}}}}`))
	require.NoError(t, err)

	g, err := FromSave(save, Options{ViewportWidth: 25, ViewportHeight: 19})
	require.NoError(t, err)

	wood := g.Store().GetBlock(vec.Vec2{X: 2, Y: 1})
	assert.Equal(t, block.WoodBlockID, wood.ID)
	assert.Equal(t, 0.25, wood.CurrentHealth)

	// Клетки, которых нет в сохранении, берутся из генератора
	fresh := newTestGame(t)
	require.NotNil(t, g.Store().GetBlock(vec.Vec2{X: 5, Y: 5}))
	assert.Equal(t, fresh.Store().GetBlock(vec.Vec2{X: 5, Y: 5}).ID, g.Store().GetBlock(vec.Vec2{X: 5, Y: 5}).ID)

	for _, row := range g.VisibleBlocks() {
		assert.NotContains(t, row, block.None)
	}
	out, err := NewConsole(g, nil).Execute("map")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestSaveTo(t *testing.T) {
	fs, err := storage.NewFileStorage(filepath.Join(t.TempDir(), "saves"), true)
	require.NoError(t, err)
	defer fs.Close()

	g, err := NewUnsaved(Options{Seed: 5})
	require.NoError(t, err)
	assert.True(t, errors.Is(g.SaveTo(fs, ""), storage.ErrInvalidName))

	require.NoError(t, g.SaveTo(fs, "named"))
	assert.Equal(t, "named", g.Name())

	save, err := fs.Load("named")
	require.NoError(t, err)
	assert.Equal(t, int64(5), save.TerrainSeed)
}

func TestFlushPersistsDeltas(t *testing.T) {
	repo, err := storage.OpenInMemoryChunkRepository()
	require.NoError(t, err)
	defer repo.Close()

	g, err := New(Options{Seed: 9, Repository: repo})
	require.NoError(t, err)
	paint(t, g, block.DiamondBlockID, vec.Vec2{X: 5, Y: 5})

	saved, err := g.Flush()
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	again, err := New(Options{Seed: 9, Repository: repo})
	require.NoError(t, err)
	assert.Equal(t, block.DiamondBlockID, again.Store().GetBlock(vec.Vec2{X: 5, Y: 5}).ID)

	plain := newTestGame(t)
	saved, err = plain.Flush()
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
}
