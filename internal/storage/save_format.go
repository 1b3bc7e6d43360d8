package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/annel0/minecraft2d/internal/player"
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world"
	"github.com/annel0/minecraft2d/internal/world/block"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultSeed используется, если в сохранении нет terrain_seed
const DefaultSeed int64 = 42

// Ошибки хранилища
var (
	ErrWorldNotFound = errors.New("мир не найден")
	ErrInvalidSave   = errors.New("некорректное сохранение")
	ErrInvalidName   = errors.New("некорректное имя мира")
)

// BlockRecord – сохранённое состояние клетки
type BlockRecord struct {
	Type          block.BlockID `json:"type"`
	CurrentHealth float64       `json:"current_health"`
}

// ChunkRecord – клетки чанка по ключу "lx,ly"
type ChunkRecord map[string]BlockRecord

// PlayerRecord – сохранённое состояние игрока
type PlayerRecord struct {
	WorldX      int                `json:"world_x"`
	WorldY      int                `json:"world_y"`
	Orientation player.Orientation `json:"orientation"`
	Inventory   *player.Inventory  `json:"inventory"`
	ActiveSlot  int                `json:"active_slot"`
}

// WorldSave – файл сохранения мира
type WorldSave struct {
	WorldName   string                 `json:"world_name"`
	Player      PlayerRecord           `json:"player"`
	Chunks      map[string]ChunkRecord `json:"chunks"` // Ключ "cx,cy"
	TerrainSeed int64                  `json:"terrain_seed"`
	DayTime     *float64               `json:"day_time,omitempty"`
}

// NewWorldSave создаёт сохранение со значениями по умолчанию
func NewWorldSave(name string) *WorldSave {
	return &WorldSave{
		WorldName: name,
		Player: PlayerRecord{
			Orientation: player.North,
			Inventory:   player.NewInventory(),
		},
		Chunks:      make(map[string]ChunkRecord),
		TerrainSeed: DefaultSeed,
	}
}

// EncodeChunk переводит чанк в формат сохранения
func EncodeChunk(chunk *world.Chunk) ChunkRecord {
	rec := make(ChunkRecord, world.ChunkSize*world.ChunkSize)
	chunk.ForEach(func(local vec.Vec2, b *world.Block) {
		rec[local.Key()] = BlockRecord{Type: b.ID, CurrentHealth: b.CurrentHealth}
	})
	return rec
}

// DecodeChunk восстанавливает чанк с сохранённой прочностью блоков
func DecodeChunk(coords vec.Vec2, rec ChunkRecord) (*world.Chunk, error) {
	chunk := world.NewChunk(coords)
	for key, br := range rec {
		local, err := vec.ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("чанк %s: %w", coords.Key(), err)
		}
		if local.X < 0 || local.X >= world.ChunkSize || local.Y < 0 || local.Y >= world.ChunkSize {
			return nil, fmt.Errorf("чанк %s: координаты %s вне чанка", coords.Key(), key)
		}
		chunk.Blocks[local.X][local.Y] = world.RestoreBlock(br.Type, br.CurrentHealth)
	}
	return chunk, nil
}

// PutChunks записывает все чанки хранилища в сохранение
func (s *WorldSave) PutChunks(chunks []*world.Chunk) {
	if s.Chunks == nil {
		s.Chunks = make(map[string]ChunkRecord, len(chunks))
	}
	for _, c := range chunks {
		s.Chunks[c.Coords.Key()] = EncodeChunk(c)
	}
}

// DecodeChunks возвращает чанки сохранения, упорядоченные по ключу
func (s *WorldSave) DecodeChunks() ([]*world.Chunk, error) {
	keys := make([]string, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*world.Chunk, 0, len(keys))
	for _, key := range keys {
		coords, err := vec.ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: ключ чанка: %v", ErrInvalidSave, err)
		}
		chunk, err := DecodeChunk(coords, s.Chunks[key])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
		}
		out = append(out, chunk)
	}
	return out, nil
}

// Схема файла сохранения
const saveSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["world_name", "player", "chunks"],
  "properties": {
    "world_name": {"type": "string", "minLength": 1},
    "terrain_seed": {"type": "integer"},
    "day_time": {"type": "number", "minimum": 0},
    "player": {
      "type": "object",
      "properties": {
        "world_x": {"type": "integer"},
        "world_y": {"type": "integer"},
        "orientation": {"enum": ["north", "south", "east", "west"]},
        "inventory": {
          "type": "object",
          "additionalProperties": {"type": "integer", "minimum": 0}
        },
        "active_slot": {"type": "integer", "minimum": 0}
      }
    },
    "chunks": {
      "type": "object",
      "propertyNames": {"pattern": "^-?[0-9]+,-?[0-9]+$"},
      "additionalProperties": {
        "type": "object",
        "propertyNames": {"pattern": "^[0-9]+,[0-9]+$"},
        "additionalProperties": {
          "type": "object",
          "required": ["type", "current_health"],
          "properties": {
            "type": {"type": "string"},
            "current_health": {"type": "number"}
          }
        }
      }
    }
  }
}`

var compiledSaveSchema = jsonschema.MustCompileString("save.schema.json", saveSchema)

// ValidateSave проверяет JSON сохранения по схеме
func ValidateSave(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if err := compiledSaveSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	return nil
}

// DecodeSave проверяет и разбирает JSON сохранения
func DecodeSave(data []byte) (*WorldSave, error) {
	if err := ValidateSave(data); err != nil {
		return nil, err
	}

	save := NewWorldSave("")
	if err := json.Unmarshal(data, save); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if save.Player.Inventory == nil {
		save.Player.Inventory = player.NewInventory()
	}
	return save, nil
}

// EncodeSave сериализует сохранение с отступами
func EncodeSave(save *WorldSave) ([]byte, error) {
	data, err := json.MarshalIndent(save, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации сохранения: %w", err)
	}
	return data, nil
}
