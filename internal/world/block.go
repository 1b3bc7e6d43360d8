package world

import (
	"math"

	"github.com/annel0/minecraft2d/internal/world/block"
)

// Block представляет собой блок в игровом мире вместе с состоянием добычи
type Block struct {
	ID            block.BlockID // Идентификатор типа блока
	MaxHealth     float64       // Прочность, определяется типом при создании
	CurrentHealth float64       // Текущая прочность, уменьшается при добыче
}

// NewBlock создаёт новый блок с полной прочностью
func NewBlock(id block.BlockID) *Block {
	health := 1.0
	if props, ok := block.Get(id); ok {
		health = props.MiningDifficulty
	}
	return &Block{
		ID:            id,
		MaxHealth:     health,
		CurrentHealth: health,
	}
}

// RestoreBlock восстанавливает блок из сохранения с сохранённой прочностью.
// Прочность из сохранения авторитетна и не выводится заново из типа.
func RestoreBlock(id block.BlockID, currentHealth float64) *Block {
	b := NewBlock(id)
	b.CurrentHealth = currentHealth
	return b
}

// Properties возвращает статические свойства типа блока
func (b *Block) Properties() block.Properties {
	props, _ := block.Get(b.ID)
	return props
}

// Walkable возвращает true, если игрок может стоять на блоке
func (b *Block) Walkable() bool {
	return b.Properties().Walkable
}

// Minable возвращает true, если блок можно добывать
func (b *Block) Minable() bool {
	return b.Properties().Minable
}

// TakeDamage применяет урон от добычи. Возвращает true, если блок разрушен.
// Недобываемые и уже разрушенные блоки игнорируют урон,
// поэтому true возвращается ровно один раз. Прочность не опускается ниже нуля.
func (b *Block) TakeDamage(amount float64) bool {
	if !b.Minable() || b.CurrentHealth <= 0 || !(amount > 0) {
		return false
	}

	b.CurrentHealth -= amount
	if b.CurrentHealth <= 0 {
		b.CurrentHealth = 0
		return true
	}
	return false
}

// ResetHealth восстанавливает полную прочность (при прерывании добычи)
func (b *Block) ResetHealth() {
	b.CurrentHealth = b.MaxHealth
}

// Health возвращает прочность, ограниченную диапазоном [0, MaxHealth]
func (b *Block) Health() float64 {
	return math.Max(0, math.Min(b.MaxHealth, b.CurrentHealth))
}

// Progress возвращает долю добытого (0 – целый блок, 1 – разрушен)
func (b *Block) Progress() float64 {
	if b.MaxHealth <= 0 {
		return 0
	}
	return 1 - b.Health()/b.MaxHealth
}

// Clone создаёт копию блока
func (b *Block) Clone() *Block {
	c := *b
	return &c
}
