package block

import "fmt"

// BlockID представляет идентификатор типа блока
type BlockID uint8

// Константы ID блоков. Порядок фиксирован: ID используются как индекс таблицы свойств.
const (
	None BlockID = iota // Отсутствие блока (нет результата добычи / нет замены)

	// Базовый ландшафт
	GrassBlockID
	DirtBlockID
	SandBlockID
	WaterBlockID
	StoneBlockID

	// Особенности ландшафта
	WoodBlockID
	CoalBlockID
	LavaBlockID
	DiamondBlockID

	// Предметы крафта
	StickBlockID
	TorchBlockID

	blockCount // всегда последний
)

// Color – ключ цвета для слоя отрисовки
type Color struct {
	R, G, B uint8
}

// Properties – статические свойства типа блока
type Properties struct {
	Name             string  // Строковое значение, используемое в сохранениях
	Walkable         bool    // Может ли игрок стоять на клетке
	Minable          bool    // Накапливает ли блок урон от добычи
	MiningDifficulty float64 // Прочность в единицах урона (секунд при скорости 1.0)
	MiningResult     BlockID // Предмет в инвентарь после разрушения (None – ничего)
	Replacement      BlockID // Тип клетки после разрушения (None – для недобываемых)
	Color            Color
}

// Цвета из оригинальной палитры игры
var (
	colorGreen      = Color{0, 255, 0}
	colorDarkBrown  = Color{101, 67, 33}
	colorLightBrown = Color{205, 133, 63}
	colorSand       = Color{238, 203, 173}
	colorBlue       = Color{0, 0, 255}
	colorBrightBlue = Color{0, 191, 255}
	colorGray       = Color{128, 128, 128}
	colorBlack      = Color{0, 0, 0}
	colorRed        = Color{255, 0, 0}
	colorBrown      = Color{139, 69, 19}
	colorYellow     = Color{255, 200, 0}
	colorWhite      = Color{255, 255, 255}
)

// Сложность по умолчанию для недобываемых блоков
const defaultDifficulty = 1.0

var registry = [blockCount]Properties{
	None:           {Name: "none", MiningDifficulty: defaultDifficulty, Color: colorWhite},
	GrassBlockID:   {Name: "grass", Walkable: true, MiningDifficulty: defaultDifficulty, Color: colorGreen},
	DirtBlockID:    {Name: "dirt", Walkable: true, MiningDifficulty: defaultDifficulty, Color: colorDarkBrown},
	SandBlockID:    {Name: "sand", Walkable: true, MiningDifficulty: defaultDifficulty, Color: colorSand},
	WaterBlockID:   {Name: "water", MiningDifficulty: defaultDifficulty, Color: colorBlue},
	StoneBlockID:   {Name: "stone", Minable: true, MiningDifficulty: 5.0, MiningResult: StoneBlockID, Replacement: DirtBlockID, Color: colorGray},
	WoodBlockID:    {Name: "wood", Minable: true, MiningDifficulty: 1.5, MiningResult: WoodBlockID, Replacement: GrassBlockID, Color: colorLightBrown},
	CoalBlockID:    {Name: "coal", Minable: true, MiningDifficulty: 4.0, MiningResult: CoalBlockID, Replacement: DirtBlockID, Color: colorBlack},
	LavaBlockID:    {Name: "lava", MiningDifficulty: defaultDifficulty, Color: colorRed},
	DiamondBlockID: {Name: "diamond", Minable: true, MiningDifficulty: 8.0, MiningResult: DiamondBlockID, Replacement: DirtBlockID, Color: colorBrightBlue},
	StickBlockID:   {Name: "stick", MiningDifficulty: defaultDifficulty, Color: colorBrown},
	TorchBlockID:   {Name: "torch", MiningDifficulty: defaultDifficulty, Color: colorYellow},
}

var byName = func() map[string]BlockID {
	m := make(map[string]BlockID, blockCount)
	for id := BlockID(1); id < blockCount; id++ {
		m[registry[id].Name] = id
	}
	return m
}()

// Get возвращает свойства для указанного ID
func Get(id BlockID) (Properties, bool) {
	if !IsValidBlockID(id) {
		return Properties{}, false
	}
	return registry[id], true
}

// MustGet возвращает свойства или паникует для неизвестного ID
func MustGet(id BlockID) Properties {
	p, ok := Get(id)
	if !ok {
		panic(fmt.Sprintf("неизвестный тип блока %d", id))
	}
	return p
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	return id > None && id < blockCount
}

// All возвращает все типы блоков в порядке ID
func All() []BlockID {
	ids := make([]BlockID, 0, blockCount-1)
	for id := BlockID(1); id < blockCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Parse возвращает ID по строковому значению ("grass", "stone", ...)
func Parse(name string) (BlockID, error) {
	id, ok := byName[name]
	if !ok {
		return None, fmt.Errorf("неизвестный тип блока %q", name)
	}
	return id, nil
}

// String возвращает строковое значение типа
func (id BlockID) String() string {
	if id < blockCount {
		return registry[id].Name
	}
	return fmt.Sprintf("block(%d)", uint8(id))
}

// MarshalText сериализует тип блока как его строковое значение (JSON, YAML)
func (id BlockID) MarshalText() ([]byte, error) {
	if !IsValidBlockID(id) {
		return nil, fmt.Errorf("неизвестный тип блока %d", id)
	}
	return []byte(registry[id].Name), nil
}

// UnmarshalText разбирает строковое значение типа блока
func (id *BlockID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
