package game

import (
	"fmt"

	"github.com/annel0/minecraft2d/internal/player"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// IntentKind – вид действия игрока
type IntentKind uint8

const (
	PressDirection IntentKind = iota
	ReleaseDirection
	PressAction
	ReleaseAction
	SelectSlot
	Craft
)

var intentNames = [...]string{
	PressDirection:   "press_direction",
	ReleaseDirection: "release_direction",
	PressAction:      "press_action",
	ReleaseAction:    "release_action",
	SelectSlot:       "select_slot",
	Craft:            "craft",
}

func (k IntentKind) String() string {
	if int(k) < len(intentNames) {
		return intentNames[k]
	}
	return fmt.Sprintf("intent(%d)", k)
}

// Intent – абстрактное действие игрока, не зависящее от устройства ввода
type Intent struct {
	Kind      IntentKind
	Direction player.Orientation // PressDirection, ReleaseDirection
	Slot      int                // SelectSlot
	Item      block.BlockID      // Craft
}

func Press(dir player.Orientation) Intent   { return Intent{Kind: PressDirection, Direction: dir} }
func Release(dir player.Orientation) Intent { return Intent{Kind: ReleaseDirection, Direction: dir} }
func ActionDown() Intent                    { return Intent{Kind: PressAction} }
func ActionUp() Intent                      { return Intent{Kind: ReleaseAction} }
func Slot(slot int) Intent                  { return Intent{Kind: SelectSlot, Slot: slot} }
func CraftItem(id block.BlockID) Intent     { return Intent{Kind: Craft, Item: id} }
