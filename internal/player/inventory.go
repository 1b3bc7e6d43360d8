package player

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/annel0/minecraft2d/internal/world/block"
)

// HotbarSlots – число слотов быстрого доступа
const HotbarSlots = 5

// Item – стопка предметов одного типа
type Item struct {
	Type  block.BlockID `json:"type"`
	Count int           `json:"count"`
}

// Inventory хранит предметы игрока в порядке первого появления
type Inventory struct {
	counts     map[block.BlockID]int
	order      []block.BlockID
	activeSlot int
}

// NewInventory создаёт пустой инвентарь
func NewInventory() *Inventory {
	return &Inventory{counts: make(map[block.BlockID]int)}
}

// Add добавляет один предмет
func (inv *Inventory) Add(id block.BlockID) {
	inv.AddN(id, 1)
}

// AddN добавляет n предметов; n <= 0 игнорируется
func (inv *Inventory) AddN(id block.BlockID, n int) {
	if n <= 0 || id == block.None {
		return
	}
	if _, ok := inv.counts[id]; !ok {
		inv.order = append(inv.order, id)
	}
	inv.counts[id] += n
}

// Remove забирает один предмет. Тип исчезает из порядка, когда счётчик доходит до нуля.
func (inv *Inventory) Remove(id block.BlockID) bool {
	return inv.RemoveN(id, 1)
}

// RemoveN забирает n предметов, если их достаточно
func (inv *Inventory) RemoveN(id block.BlockID, n int) bool {
	if n <= 0 || inv.counts[id] < n {
		return false
	}
	inv.counts[id] -= n
	if inv.counts[id] == 0 {
		delete(inv.counts, id)
		for i, t := range inv.order {
			if t == id {
				inv.order = append(inv.order[:i], inv.order[i+1:]...)
				break
			}
		}
	}
	return true
}

// Has проверяет наличие хотя бы одного предмета
func (inv *Inventory) Has(id block.BlockID) bool {
	return inv.counts[id] > 0
}

// Count возвращает количество предметов типа
func (inv *Inventory) Count(id block.BlockID) int {
	return inv.counts[id]
}

// Len возвращает число различных типов
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// Items возвращает все стопки в порядке появления
func (inv *Inventory) Items() []Item {
	return inv.Top(len(inv.order))
}

// Top возвращает первые n стопок
func (inv *Inventory) Top(n int) []Item {
	if n > len(inv.order) {
		n = len(inv.order)
	}
	if n <= 0 {
		return nil
	}
	items := make([]Item, 0, n)
	for _, id := range inv.order[:n] {
		items = append(items, Item{Type: id, Count: inv.counts[id]})
	}
	return items
}

// ActiveSlot возвращает номер активного слота
func (inv *Inventory) ActiveSlot() int {
	return inv.activeSlot
}

// SetActiveSlot выбирает слот. Пустой слот допустим: ActiveType вернёт false.
func (inv *Inventory) SetActiveSlot(slot int) {
	inv.activeSlot = slot
}

// ActiveType возвращает тип в активном слоте
func (inv *Inventory) ActiveType() (block.BlockID, bool) {
	top := inv.Top(HotbarSlots)
	if inv.activeSlot < 0 || inv.activeSlot >= len(top) {
		return block.None, false
	}
	return top[inv.activeSlot].Type, true
}

// MarshalJSON пишет объект {"wood": 3, ...} с сохранением порядка
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range inv.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", inv.counts[id])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON читает объект {"wood": 3, ...}, сохраняя порядок ключей.
// Активный слот не входит в объект и не меняется.
func (inv *Inventory) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("инвентарь: ожидался объект, получено %v", tok)
	}

	inv.counts = make(map[block.BlockID]int)
	inv.order = nil

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		id, err := block.Parse(name)
		if err != nil {
			return fmt.Errorf("инвентарь: %w", err)
		}

		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("инвентарь: количество %s: %w", name, err)
		}
		inv.AddN(id, count)
	}

	_, err = dec.Token()
	return err
}
