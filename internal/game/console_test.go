package game

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/annel0/minecraft2d/internal/player"
	"github.com/annel0/minecraft2d/internal/storage"
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleMoveAndBlocked(t *testing.T) {
	g := newTestGame(t)
	paint(t, g, block.GrassBlockID, vec.Vec2{X: 1}, vec.Vec2{X: 2})
	paint(t, g, block.WaterBlockID, vec.Vec2{X: 3})
	c := NewConsole(g, nil)

	out, err := c.Execute("move east 2")
	require.NoError(t, err)
	assert.Equal(t, "позиция 2,0", out)

	out, err = c.Execute("m east 3")
	require.NoError(t, err)
	assert.Contains(t, out, "пройдено 0 из 3")
	assert.Contains(t, out, "water")
	assert.Equal(t, vec.Vec2{X: 2}, g.Player().Position)

	_, err = c.Execute("move up")
	assert.Error(t, err)
	_, err = c.Execute("move east 0")
	assert.Error(t, err)
}

func TestConsoleMineCraftPlace(t *testing.T) {
	g := newTestGame(t)
	c := NewConsole(g, nil)
	below := vec.Vec2{X: 0, Y: 1}

	paint(t, g, block.StoneBlockID, below)
	out, err := c.Execute("mine 1")
	require.NoError(t, err)
	assert.Contains(t, out, "прервана на 20%")
	assert.Equal(t, 5.0, g.Store().GetBlock(below).CurrentHealth)

	paint(t, g, block.WoodBlockID, below)
	for i := 0; i < 3; i++ {
		out, err = c.Execute("mine 2")
		require.NoError(t, err)
		assert.Equal(t, "добыт wood (в инвентаре "+string(rune('1'+i))+")", out)
		if i < 2 {
			paint(t, g, block.WoodBlockID, below)
		}
	}

	out, err = c.Execute("mine")
	require.NoError(t, err)
	assert.Equal(t, "grass нельзя добыть", out)

	out, err = c.Execute("craft stick")
	require.NoError(t, err)
	assert.Equal(t, "создан stick (всего 1)", out)

	out, err = c.Execute("craft")
	require.NoError(t, err)
	assert.Equal(t, "рецепты: stick, torch", out)

	_, err = c.Execute("craft torch")
	assert.Error(t, err)

	out, err = c.Execute("place")
	require.NoError(t, err)
	assert.Equal(t, "поставлен stick", out)
	assert.Equal(t, block.StickBlockID, g.Store().GetBlock(below).ID)

	out, err = c.Execute("place")
	require.NoError(t, err)
	assert.Equal(t, "активный слот пуст", out)
}

func TestConsoleSlotInventoryTurn(t *testing.T) {
	g := newTestGame(t)
	c := NewConsole(g, nil)
	g.Player().Inventory.AddN(block.CoalBlockID, 2)
	g.Player().Inventory.Add(block.StoneBlockID)

	out, err := c.Execute("slot 1")
	require.NoError(t, err)
	assert.Equal(t, "слот 1: stone", out)

	out, err = c.Execute("slot 4")
	require.NoError(t, err)
	assert.Equal(t, "слот 4 пуст", out)

	_, err = c.Execute("slot 5")
	assert.Error(t, err)

	require.NoError(t, g.HandleIntent(Slot(0)))
	out, err = c.Execute("inv")
	require.NoError(t, err)
	assert.Equal(t, "*0 coal x2\n 1 stone x1", out)

	paint(t, g, block.SandBlockID, vec.Vec2{Y: -1})
	out, err = c.Execute("turn north")
	require.NoError(t, err)
	assert.Equal(t, "смотрю на north: sand", out)
	assert.Equal(t, player.North, g.Player().Orientation)
}

func TestConsoleMapStatusWait(t *testing.T) {
	g := newTestGame(t)
	c := NewConsole(g, nil)

	out, err := c.Execute("map")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 19)
	assert.Len(t, lines[0], 25)
	assert.Equal(t, byte('@'), lines[9][12])

	out, err = c.Execute("wait 120")
	require.NoError(t, err)
	assert.Equal(t, "Night, освещённость 0.00", out)

	out, err = c.Execute("status")
	require.NoError(t, err)
	assert.Contains(t, out, `мир "test" seed=42, позиция 0,0`)

	out, err = c.Execute("   ")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = c.Execute("dance")
	assert.Error(t, err)

	_, err = c.Execute("quit")
	assert.True(t, errors.Is(err, ErrQuit))

	out, err = c.Execute("help")
	require.NoError(t, err)
	assert.Contains(t, out, "move")
}

func TestConsoleRejectsNonFiniteTime(t *testing.T) {
	g := newTestGame(t)
	c := NewConsole(g, nil)

	for _, arg := range []string{"Inf", "+Inf", "-inf", "NaN"} {
		_, err := c.Execute("wait " + arg)
		assert.Error(t, err, arg)
		_, err = c.Execute("mine " + arg)
		assert.Error(t, err, arg)
	}
	assert.Equal(t, 0.0, g.Cycle().Elapsed())

	g.Update(math.Inf(1))
	g.Update(math.NaN())
	assert.Equal(t, 0.0, g.Cycle().Elapsed())

	_, err := storage.EncodeSave(g.Snapshot())
	require.NoError(t, err)
}

func TestConsoleSave(t *testing.T) {
	g := newTestGame(t)
	_, err := NewConsole(g, nil).Execute("save")
	assert.Error(t, err)

	fs, err := storage.NewFileStorage(filepath.Join(t.TempDir(), "saves"), false)
	require.NoError(t, err)
	defer fs.Close()

	out, err := NewConsole(g, fs).Execute("save world1")
	require.NoError(t, err)
	assert.Equal(t, `мир "world1" сохранён`, out)
	assert.True(t, fs.Exists("world1"))
}
