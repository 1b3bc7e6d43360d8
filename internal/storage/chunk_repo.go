package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annel0/minecraft2d/internal/logging"
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// ChunkDelta содержит изменённые клетки чанка
type ChunkDelta struct {
	Coords vec.Vec2    `json:"coords"`
	Blocks ChunkRecord `json:"blocks"` // Ключ "lx,ly"
}

// ChunkRepository хранит дельты изменённых чанков в BadgerDB.
// Чанки без изменений не сохраняются: они восстанавливаются генератором.
type ChunkRepository struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenChunkRepository открывает базу в dataPath/chunks
func OpenChunkRepository(dataPath string) (*ChunkRepository, error) {
	opts := badger.DefaultOptions(filepath.Join(dataPath, "chunks"))
	opts.Logger = nil // Отключаем логирование BadgerDB
	return newChunkRepository(opts)
}

// OpenInMemoryChunkRepository открывает базу в памяти (тесты, инспектор)
func OpenInMemoryChunkRepository() (*ChunkRepository, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return newChunkRepository(opts)
}

func newChunkRepository(opts badger.Options) (*ChunkRepository, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания zstd кодера: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("ошибка создания zstd декодера: %w", err)
	}

	return &ChunkRepository{
		db:      db,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close закрывает хранилище данных
func (r *ChunkRepository) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isReady {
		return nil
	}

	r.isReady = false
	r.decoder.Close()
	r.encoder.Close()
	return r.db.Close()
}

// SaveChunk дописывает изменения чанка к сохранённой дельте и очищает список изменений
func (r *ChunkRepository) SaveChunk(seed int64, chunk *world.Chunk) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	// Если нет изменений, пропускаем
	if !chunk.HasChanges() {
		return nil
	}

	key := chunkKey(seed, chunk.Coords)
	err := r.db.Update(func(txn *badger.Txn) error {
		delta, err := r.get(txn, key, chunk.Coords)
		if err != nil {
			return err
		}

		for local := range chunk.Changes {
			if b := chunk.GetBlock(local); b != nil {
				delta.Blocks[local.Key()] = BlockRecord{Type: b.ID, CurrentHealth: b.CurrentHealth}
			}
		}

		data, err := json.Marshal(delta)
		if err != nil {
			return fmt.Errorf("ошибка сериализации дельты: %w", err)
		}
		return txn.Set(key, r.encoder.EncodeAll(data, nil))
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	chunk.ClearChanges()
	return nil
}

// SaveAll сохраняет все изменённые чанки хранилища. Возвращает число сохранённых.
func (r *ChunkRepository) SaveAll(store *world.ChunkStore) (int, error) {
	saved := 0
	for _, chunk := range store.Chunks() {
		if !chunk.HasChanges() {
			continue
		}
		if err := r.SaveChunk(store.Seed(), chunk); err != nil {
			return saved, err
		}
		saved++
	}
	if saved > 0 {
		logging.Debug("Сохранено %d изменённых чанков", saved)
	}
	return saved, nil
}

// LoadChunk загружает дельту чанка. Отсутствующая дельта возвращается пустой.
func (r *ChunkRepository) LoadChunk(seed int64, coords vec.Vec2) (*ChunkDelta, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var delta *ChunkDelta
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		delta, err = r.get(txn, chunkKey(seed, coords), coords)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return delta, nil
}

// ApplyDelta применяет дельту к чанку, не отмечая клетки изменёнными
func ApplyDelta(chunk *world.Chunk, delta *ChunkDelta) error {
	if delta == nil || len(delta.Blocks) == 0 {
		return nil
	}

	restored, err := DecodeChunk(chunk.Coords, delta.Blocks)
	if err != nil {
		return err
	}
	restored.ForEach(func(local vec.Vec2, b *world.Block) {
		chunk.Blocks[local.X][local.Y] = b
	})
	return nil
}

// Patcher возвращает обработчик, накладывающий сохранённые дельты на новые чанки
func (r *ChunkRepository) Patcher(seed int64) world.ChunkPatcher {
	return world.ChunkPatcherFunc(func(chunk *world.Chunk) {
		delta, err := r.LoadChunk(seed, chunk.Coords)
		if err != nil {
			logging.Error("Не удалось загрузить дельту чанка %s: %v", chunk.Coords.Key(), err)
			return
		}
		if err := ApplyDelta(chunk, delta); err != nil {
			logging.Error("Не удалось применить дельту чанка %s: %v", chunk.Coords.Key(), err)
		}
	})
}

func (r *ChunkRepository) get(txn *badger.Txn, key []byte, coords vec.Vec2) (*ChunkDelta, error) {
	empty := &ChunkDelta{Coords: coords, Blocks: make(ChunkRecord)}

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}

	var raw []byte
	if err := item.Value(func(val []byte) error {
		raw, err = r.decoder.DecodeAll(val, nil)
		return err
	}); err != nil {
		return nil, fmt.Errorf("ошибка распаковки дельты %s: %w", key, err)
	}

	var delta ChunkDelta
	if err := json.Unmarshal(raw, &delta); err != nil {
		return nil, fmt.Errorf("ошибка десериализации дельты: %w", err)
	}
	if delta.Blocks == nil {
		delta.Blocks = make(ChunkRecord)
	}
	return &delta, nil
}

func chunkKey(seed int64, coords vec.Vec2) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d:%d", seed, coords.X, coords.Y))
}
