package player

import (
	"fmt"

	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// Значения по умолчанию
const (
	DefaultMiningRate    = 1.0 // Урон в секунду
	DefaultMovementSpeed = 6.0 // Клеток в секунду
)

// Orientation – направление взгляда игрока
type Orientation uint8

const (
	South Orientation = iota
	North
	East
	West
)

// Порядок приоритета при одновременно зажатых направлениях
var movementPriority = [...]Orientation{North, South, West, East}

var orientationNames = [...]string{
	South: "south",
	North: "north",
	East:  "east",
	West:  "west",
}

func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return fmt.Sprintf("orientation(%d)", uint8(o))
}

// Delta возвращает единичный вектор направления
func (o Orientation) Delta() vec.Vec2 {
	switch o {
	case North:
		return vec.Vec2{X: 0, Y: -1}
	case South:
		return vec.Vec2{X: 0, Y: 1}
	case East:
		return vec.Vec2{X: 1, Y: 0}
	case West:
		return vec.Vec2{X: -1, Y: 0}
	}
	return vec.Vec2{}
}

// ParseOrientation разбирает строковое значение направления
func ParseOrientation(s string) (Orientation, error) {
	for i, name := range orientationNames {
		if name == s {
			return Orientation(i), nil
		}
	}
	return South, fmt.Errorf("неизвестное направление %q", s)
}

// MarshalText сериализует направление строкой
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText разбирает направление из строки
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Observer получает уведомления о добыче и установке блоков
type Observer interface {
	BlockMined(id block.BlockID)
	BlockPlaced(id block.BlockID)
}

// Player – игрок: позиция, направление, инвентарь и добыча
type Player struct {
	Position    vec.Vec2
	Orientation Orientation
	Inventory   *Inventory
	Mining      MiningSession

	MiningRate    float64
	MovementSpeed float64

	held          map[Orientation]bool // Зажатые клавиши направлений
	movementTimer float64
	observer      Observer
}

// New создаёт игрока в указанной позиции, лицом на юг
func New(pos vec.Vec2) *Player {
	return &Player{
		Position:      pos,
		Orientation:   South,
		Inventory:     NewInventory(),
		MiningRate:    DefaultMiningRate,
		MovementSpeed: DefaultMovementSpeed,
		held:          make(map[Orientation]bool),
	}
}

// SetObserver подключает наблюдателя (nil отключает)
func (p *Player) SetObserver(o Observer) {
	p.observer = o
}

// Facing возвращает клетку перед игроком
func (p *Player) Facing() vec.Vec2 {
	return p.Position.Add(p.Orientation.Delta())
}

// PressDirection отмечает зажатое направление и сразу поворачивает игрока
func (p *Player) PressDirection(dir Orientation) {
	p.held[dir] = true
	p.Turn(dir)
}

// ReleaseDirection снимает зажатое направление
func (p *Player) ReleaseDirection(dir Orientation) {
	delete(p.held, dir)
}

// Turn поворачивает игрока. Смена направления сбрасывает таймер движения.
func (p *Player) Turn(dir Orientation) {
	if p.Orientation != dir {
		p.Orientation = dir
		p.movementTimer = 0
	}
}

// TryMove пытается сделать шаг в направлении dir. Активная добыча прерывается
// до проверки клетки. Непроходимая клетка оставляет позицию без изменений.
func (p *Player) TryMove(w World, dir Orientation) bool {
	if p.Mining.Active() {
		p.Mining.Stop(w)
	}

	target := p.Position.Add(dir.Delta())
	b := w.GetBlock(target)
	if b == nil || !b.Walkable() {
		return false
	}

	p.Position = target
	return true
}

// BeginMining начинает добычу клетки перед игроком
func (p *Player) BeginMining(w World) bool {
	return p.Mining.Start(w, p.Facing())
}

// ReleaseAction обрабатывает отпускание клавиши действия: прерывает добычу
// либо ставит блок. Отпускание, завершившее добычу, блок не ставит.
func (p *Player) ReleaseAction(w World) {
	justCompleted := p.Mining.ConsumeJustCompleted()

	switch {
	case p.Mining.Active():
		p.Mining.Stop(w)
	case !justCompleted:
		p.PlaceBlock(w)
	}
}

// PlaceBlock ставит блок из активного слота на проходимую клетку перед игроком
func (p *Player) PlaceBlock(w World) bool {
	id, ok := p.Inventory.ActiveType()
	if !ok || !p.Inventory.Has(id) {
		return false
	}

	target := p.Facing()
	b := w.GetBlock(target)
	if b == nil || !b.Walkable() {
		return false
	}

	if !w.ReplaceBlock(target, id) {
		return false
	}
	p.Inventory.Remove(id)

	if p.observer != nil {
		p.observer.BlockPlaced(id)
	}
	return true
}

// SelectSlot выбирает слот быстрого доступа
func (p *Player) SelectSlot(slot int) {
	p.Inventory.SetActiveSlot(slot)
}

// Update продвигает движение и добычу на dt секунд
func (p *Player) Update(dt float64, w World) {
	if len(p.held) > 0 {
		p.processMovement(dt, w)
	}

	if p.Mining.Active() {
		if mined, done := p.Mining.Tick(w, p.Inventory, p.MiningRate*dt); done && p.observer != nil {
			p.observer.BlockMined(mined)
		}
	}
}

func (p *Player) processMovement(dt float64, w World) {
	if p.MovementSpeed <= 0 {
		return
	}

	p.movementTimer += dt
	if p.movementTimer < 1.0/p.MovementSpeed {
		return
	}

	dir, ok := p.heldDirection()
	if !ok || dir != p.Orientation {
		return
	}
	if p.TryMove(w, dir) {
		p.movementTimer = 0
	}
}

func (p *Player) heldDirection() (Orientation, bool) {
	for _, dir := range movementPriority {
		if p.held[dir] {
			return dir, true
		}
	}
	return South, false
}
