package player

import (
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// World – часть мира, нужная игроку. Реализуется *world.ChunkStore.
type World interface {
	GetBlock(pos vec.Vec2) *world.Block
	ReplaceBlock(pos vec.Vec2, id block.BlockID) bool
}

// MiningSession – автомат добычи: Idle или Mining(target).
// Цель имеет смысл только в активном состоянии.
type MiningSession struct {
	active        bool
	target        vec.Vec2
	justCompleted bool
}

// Active возвращает true во время добычи
func (m *MiningSession) Active() bool {
	return m.active
}

// Target возвращает цель добычи
func (m *MiningSession) Target() (vec.Vec2, bool) {
	return m.target, m.active
}

// Start начинает добычу блока target. Отсутствующий или недобываемый блок
// молча игнорируется.
func (m *MiningSession) Start(w World, target vec.Vec2) bool {
	b := w.GetBlock(target)
	if b == nil || !b.Minable() {
		return false
	}
	m.active = true
	m.target = target
	return true
}

// Tick применяет урон к цели. При разрушении блока добыча завершается,
// возвращаются тип добытого блока и true.
func (m *MiningSession) Tick(w World, inv *Inventory, damage float64) (block.BlockID, bool) {
	if !m.active {
		return block.None, false
	}

	b := w.GetBlock(m.target)
	if b == nil || !b.Minable() {
		m.Stop(w)
		return block.None, false
	}

	if !b.TakeDamage(damage) {
		return block.None, false
	}

	mined := b.ID
	m.complete(w, inv, b)
	return mined, true
}

// Stop прерывает добычу и восстанавливает прочность цели
func (m *MiningSession) Stop(w World) {
	if m.active {
		if b := w.GetBlock(m.target); b != nil {
			b.ResetHealth()
		}
	}
	m.clear()
}

// Progress возвращает долю добытого для полосы прогресса
func (m *MiningSession) Progress(w World) float64 {
	if !m.active {
		return 0
	}
	if b := w.GetBlock(m.target); b != nil {
		return b.Progress()
	}
	return 0
}

// JustCompleted сообщает, что последняя добыча завершилась разрушением блока
func (m *MiningSession) JustCompleted() bool {
	return m.justCompleted
}

// ConsumeJustCompleted возвращает и сбрасывает флаг завершения
func (m *MiningSession) ConsumeJustCompleted() bool {
	v := m.justCompleted
	m.justCompleted = false
	return v
}

func (m *MiningSession) complete(w World, inv *Inventory, b *world.Block) {
	props := b.Properties()
	if props.MiningResult != block.None {
		inv.Add(props.MiningResult)
	}
	w.ReplaceBlock(m.target, props.Replacement)

	m.clear()
	m.justCompleted = true
}

func (m *MiningSession) clear() {
	m.active = false
	m.target = vec.Vec2{}
}
