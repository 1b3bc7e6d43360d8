// Package crafting описывает рецепты 3x3 и крафт из инвентаря игрока.
package crafting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/annel0/minecraft2d/internal/world/block"
)

// Ошибки крафта
var (
	ErrUnknownRecipe     = errors.New("рецепт не найден")
	ErrMissingIngredient = errors.New("недостаточно ингредиентов")
)

// Grid – сетка рецепта, None означает пустую клетку
type Grid [3][3]block.BlockID

// Recipe – рецепт одного предмета
type Recipe struct {
	Output block.BlockID
	Grid   Grid
}

// Inventory – часть инвентаря, нужная для крафта
type Inventory interface {
	Count(id block.BlockID) int
	AddN(id block.BlockID, n int)
	RemoveN(id block.BlockID, n int) bool
}

var recipes = map[block.BlockID]Recipe{
	block.StickBlockID: {
		Output: block.StickBlockID,
		Grid: Grid{
			{block.None, block.WoodBlockID, block.None},
			{block.None, block.WoodBlockID, block.None},
			{block.None, block.WoodBlockID, block.None},
		},
	},
	block.TorchBlockID: {
		Output: block.TorchBlockID,
		Grid: Grid{
			{block.None, block.None, block.None},
			{block.None, block.CoalBlockID, block.None},
			{block.None, block.StickBlockID, block.None},
		},
	},
}

// Recipes возвращает все рецепты, упорядоченные по типу результата
func Recipes() []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Output < out[j].Output })
	return out
}

// Lookup возвращает рецепт предмета
func Lookup(id block.BlockID) (Recipe, bool) {
	r, ok := recipes[id]
	return r, ok
}

// Requirements возвращает количество каждого ингредиента
func (r Recipe) Requirements() map[block.BlockID]int {
	req := make(map[block.BlockID]int)
	for _, row := range r.Grid {
		for _, id := range row {
			if id != block.None {
				req[id]++
			}
		}
	}
	return req
}

// Requirements возвращает ингредиенты предмета или nil, если рецепта нет
func Requirements(id block.BlockID) map[block.BlockID]int {
	r, ok := recipes[id]
	if !ok {
		return nil
	}
	return r.Requirements()
}

// CanCraft проверяет, хватает ли ингредиентов
func CanCraft(inv Inventory, id block.BlockID) bool {
	req := Requirements(id)
	if req == nil {
		return false
	}
	for ing, n := range req {
		if inv.Count(ing) < n {
			return false
		}
	}
	return true
}

// Craft списывает ингредиенты и добавляет один предмет
func Craft(inv Inventory, id block.BlockID) error {
	req := Requirements(id)
	if req == nil {
		return fmt.Errorf("%w: %s", ErrUnknownRecipe, id)
	}
	if !CanCraft(inv, id) {
		return fmt.Errorf("%w для %s", ErrMissingIngredient, id)
	}

	for ing, n := range req {
		inv.RemoveN(ing, n)
	}
	inv.AddN(id, 1)
	return nil
}
