package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/minecraft2d/internal/logging"
	"github.com/klauspost/compress/zstd"
)

// Расширения файлов сохранений
const (
	jsonExt = ".json"
	zstdExt = ".json.zst"
)

// FileStorage хранит сохранения миров в директории: <name>.json или <name>.json.zst
type FileStorage struct {
	dir      string
	compress bool

	mu      sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStorage создаёт хранилище и директорию сохранений.
// При compress=true новые сохранения пишутся сжатыми zstd.
func NewFileStorage(dir string, compress bool) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd кодера: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("ошибка создания zstd декодера: %w", err)
	}

	return &FileStorage{
		dir:      dir,
		compress: compress,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Close освобождает ресурсы кодеков
func (fs *FileStorage) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.decoder.Close()
	return fs.encoder.Close()
}

// Dir возвращает директорию сохранений
func (fs *FileStorage) Dir() string {
	return fs.dir
}

// Save записывает сохранение. Файл другого формата с тем же именем удаляется.
func (fs *FileStorage) Save(save *WorldSave) error {
	if err := validateName(save.WorldName); err != nil {
		return err
	}

	data, err := EncodeSave(save)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path, stale := fs.path(save.WorldName, jsonExt), fs.path(save.WorldName, zstdExt)
	if fs.compress {
		data = fs.encoder.EncodeAll(data, nil)
		path, stale = stale, path
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("не удалось записать сохранение %s: %w", save.WorldName, err)
	}
	if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Не удалось удалить старое сохранение %s: %v", stale, err)
	}

	logging.Info("Мир %s сохранён (%d чанков)", save.WorldName, len(save.Chunks))
	return nil
}

// Load читает и проверяет сохранение
func (fs *FileStorage) Load(name string) (*WorldSave, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	data, err := fs.read(name)
	fs.mu.Unlock()
	if err != nil {
		return nil, err
	}

	save, err := DecodeSave(data)
	if err != nil {
		return nil, fmt.Errorf("мир %s: %w", name, err)
	}

	logging.Info("Мир %s загружен (%d чанков, сид %d)", name, len(save.Chunks), save.TerrainSeed)
	return save, nil
}

// List возвращает имена сохранённых миров по алфавиту
func (fs *FileStorage) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать директорию %s: %w", fs.dir, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := worldName(e.Name())
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Exists проверяет наличие сохранения
func (fs *FileStorage) Exists(name string) bool {
	if validateName(name) != nil {
		return false
	}
	for _, ext := range []string{zstdExt, jsonExt} {
		if _, err := os.Stat(fs.path(name, ext)); err == nil {
			return true
		}
	}
	return false
}

// Delete удаляет сохранение. Возвращает false, если его не было.
func (fs *FileStorage) Delete(name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	deleted := false
	for _, ext := range []string{zstdExt, jsonExt} {
		err := os.Remove(fs.path(name, ext))
		switch {
		case err == nil:
			deleted = true
		case !errors.Is(err, os.ErrNotExist):
			return deleted, fmt.Errorf("не удалось удалить сохранение %s: %w", name, err)
		}
	}
	if deleted {
		logging.Info("Мир %s удалён", name)
	}
	return deleted, nil
}

func (fs *FileStorage) read(name string) ([]byte, error) {
	data, err := os.ReadFile(fs.path(name, zstdExt))
	if err == nil {
		plain, err := fs.decoder.DecodeAll(data, nil)
		if err != nil {
			logging.Debug("Повреждённое сжатое сохранение %s:\n%s", name, logging.HexDump(data))
			return nil, fmt.Errorf("%w: распаковка %s: %v", ErrInvalidSave, name, err)
		}
		return plain, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("не удалось прочитать сохранение %s: %w", name, err)
	}

	data, err = os.ReadFile(fs.path(name, jsonExt))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать сохранение %s: %w", name, err)
	}
	return data, nil
}

func (fs *FileStorage) path(name, ext string) string {
	return filepath.Join(fs.dir, name+ext)
}

func worldName(filename string) (string, bool) {
	for _, ext := range []string{zstdExt, jsonExt} {
		if strings.HasSuffix(filename, ext) {
			return strings.TrimSuffix(filename, ext), true
		}
	}
	return "", false
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// writeFileAtomic пишет во временный файл и переименовывает его
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".save-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
