package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Player      PlayerConfig      `yaml:"player"`
	DayCycle    DayCycleConfig    `yaml:"daycycle"`
	Storage     StorageConfig     `yaml:"storage"`
	Terrain     TerrainConfig     `yaml:"terrain"`
	DebugServer DebugServerConfig `yaml:"debug_server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type WorldConfig struct {
	Seed           int64 `yaml:"seed"`            // 0 – случайный сид
	ViewportWidth  int   `yaml:"viewport_width"`  // В клетках
	ViewportHeight int   `yaml:"viewport_height"` // В клетках
}

type PlayerConfig struct {
	MiningRate    float64 `yaml:"mining_rate"`
	MovementSpeed float64 `yaml:"movement_speed"` // Клеток в секунду
}

type DayCycleConfig struct {
	DaySeconds   float64 `yaml:"day_seconds"`
	NightSeconds float64 `yaml:"night_seconds"`
}

type StorageConfig struct {
	SavesDir    string `yaml:"saves_dir"`
	ChunkDBPath string `yaml:"chunk_db_path"` // Пусто – дельты чанков не ведутся
	Compress    bool   `yaml:"compress"`
}

type TerrainConfig struct {
	Path string `yaml:"path"` // YAML с параметрами генерации; пусто – встроенные
}

type DebugServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Tracing bool   `yaml:"tracing"`
	OTLP    string `yaml:"otlp_endpoint"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			ViewportWidth:  25,
			ViewportHeight: 19,
		},
		Player: PlayerConfig{
			MiningRate:    1.0,
			MovementSpeed: 6.0,
		},
		DayCycle: DayCycleConfig{
			DaySeconds:   120,
			NightSeconds: 120,
		},
		Storage: StorageConfig{
			SavesDir: "saves",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// GetPort возвращает порт отладочного сервера с поддержкой fallback значений
func (d *DebugServerConfig) GetPort() int {
	return getPortWithEnvFallback(d.Port, "GAME_DEBUG_PORT", 8088)
}

// GetSavesDir возвращает каталог сохранений: config -> env -> default
func (s *StorageConfig) GetSavesDir() string {
	return getStringWithEnvFallback(s.SavesDir, "GAME_SAVES_DIR", "saves")
}

// GetChunkDBPath возвращает путь базы дельт чанков; пустая строка отключает её
func (s *StorageConfig) GetChunkDBPath() string {
	return getStringWithEnvFallback(s.ChunkDBPath, "GAME_CHUNK_DB", "")
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

func getStringWithEnvFallback(value, envVar, defaultValue string) string {
	if value != "" {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultValue
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV GAME_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	if cfg.World.ViewportWidth < 0 || cfg.World.ViewportHeight < 0 {
		return nil, fmt.Errorf("размер окна не может быть отрицательным: %dx%d",
			cfg.World.ViewportWidth, cfg.World.ViewportHeight)
	}

	return cfg, nil
}
