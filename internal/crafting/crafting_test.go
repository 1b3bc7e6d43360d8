package crafting

import (
	"errors"
	"testing"

	"github.com/annel0/minecraft2d/internal/player"
	"github.com/annel0/minecraft2d/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirements(t *testing.T) {
	assert.Equal(t, map[block.BlockID]int{block.WoodBlockID: 3}, Requirements(block.StickBlockID))
	assert.Equal(t, map[block.BlockID]int{block.CoalBlockID: 1, block.StickBlockID: 1}, Requirements(block.TorchBlockID))
	assert.Nil(t, Requirements(block.StoneBlockID))
}

func TestRecipesOrdered(t *testing.T) {
	rs := Recipes()
	require.Len(t, rs, 2)
	assert.Equal(t, block.StickBlockID, rs[0].Output)
	assert.Equal(t, block.TorchBlockID, rs[1].Output)

	r, ok := Lookup(block.TorchBlockID)
	require.True(t, ok)
	assert.Equal(t, block.CoalBlockID, r.Grid[1][1])
}

func TestCraftTorchChain(t *testing.T) {
	inv := player.NewInventory()
	inv.AddN(block.WoodBlockID, 3)
	inv.Add(block.CoalBlockID)

	assert.False(t, CanCraft(inv, block.TorchBlockID))
	require.NoError(t, Craft(inv, block.StickBlockID))
	assert.Equal(t, 0, inv.Count(block.WoodBlockID))
	assert.Equal(t, 1, inv.Count(block.StickBlockID))

	require.NoError(t, Craft(inv, block.TorchBlockID))
	assert.Equal(t, 1, inv.Count(block.TorchBlockID))
	assert.Equal(t, 0, inv.Count(block.CoalBlockID))
	assert.Equal(t, 0, inv.Count(block.StickBlockID))
}

func TestCraftErrors(t *testing.T) {
	inv := player.NewInventory()
	inv.AddN(block.WoodBlockID, 2)

	err := Craft(inv, block.StickBlockID)
	assert.True(t, errors.Is(err, ErrMissingIngredient))
	assert.Equal(t, 2, inv.Count(block.WoodBlockID), "при ошибке ничего не списывается")

	err = Craft(inv, block.DiamondBlockID)
	assert.True(t, errors.Is(err, ErrUnknownRecipe))
}
