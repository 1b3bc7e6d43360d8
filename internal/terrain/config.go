package terrain

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/annel0/minecraft2d/internal/noise"
	"github.com/annel0/minecraft2d/internal/world/block"
	"gopkg.in/yaml.v3"
)

// Соли каналов шума относительно сида мира
const (
	SaltLarge    int64 = 0
	SaltMedium   int64 = 100
	SaltSmall    int64 = 200
	SaltFeature  int64 = 1000
	SaltLavaPool int64 = 2000
)

// BaseLayer – слой базового ландшафта. Значение шума ниже Threshold даёт этот тип.
type BaseLayer struct {
	Type             block.BlockID `yaml:"type"`
	Threshold        float64       `yaml:"threshold"`
	TargetPercentage float64       `yaml:"target_percentage"`
	Description      string        `yaml:"description,omitempty"`
}

// FeatureRule – правило, заменяющее базовый тип особенностью (руда, дерево, лава)
type FeatureRule struct {
	Type             block.BlockID   `yaml:"type"`
	BaseTypes        []block.BlockID `yaml:"base_types"`   // На каких базовых типах может появиться
	SpawnChance      float64         `yaml:"spawn_chance"` // Вероятность [0,1]
	NoiseThreshold   float64         `yaml:"noise_threshold"`
	RequiresDeep     bool            `yaml:"requires_deep"`
	Pool             bool            `yaml:"pool"` // Дополнительная проверка крупного шума (озёра лавы)
	TargetPercentage float64         `yaml:"target_percentage"`
	Description      string          `yaml:"description,omitempty"`
}

// AppliesTo проверяет, может ли правило сработать на базовом типе
func (r FeatureRule) AppliesTo(base block.BlockID) bool {
	for _, t := range r.BaseTypes {
		if t == base {
			return true
		}
	}
	return false
}

// ScaleLayer – один масштаб базового шума с весом
type ScaleLayer struct {
	noise.Params `yaml:",inline"`
	Weight       float64 `yaml:"weight"`
}

// NoiseConfig – параметры шума генератора
type NoiseConfig struct {
	Large  ScaleLayer `yaml:"large_scale"`  // Континенты, океаны
	Medium ScaleLayer `yaml:"medium_scale"` // Биомы, регионы
	Small  ScaleLayer `yaml:"small_scale"`  // Локальные детали

	Feature  noise.Params `yaml:"feature"`   // Канал размещения особенностей
	LavaPool noise.Params `yaml:"lava_pool"` // Крупный канал формы озёр лавы

	StretchMin        float64 `yaml:"stretch_min"` // Эмпирический диапазон нормализованного 2D шума
	StretchMax        float64 `yaml:"stretch_max"`
	DeepThreshold     float64 `yaml:"deep_threshold"` // Порог «глубоко под землёй»
	LavaPoolThreshold float64 `yaml:"lava_pool_threshold"`

	// Смещение координат, чтобы стартовая область не попадала на плоский участок у нуля
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

// Config – полная конфигурация генерации ландшафта
type Config struct {
	BaseLayers   []BaseLayer   `yaml:"base_layers"`   // По возрастанию порога
	FeatureRules []FeatureRule `yaml:"feature_rules"` // Порядок значим: первое сработавшее правило побеждает
	Noise        NoiseConfig   `yaml:"noise"`
}

// DefaultConfig возвращает стандартную конфигурацию мира
func DefaultConfig() *Config {
	return &Config{
		BaseLayers: []BaseLayer{
			{Type: block.WaterBlockID, Threshold: 0.25, TargetPercentage: 25, Description: "Water in low-lying areas"},
			{Type: block.SandBlockID, Threshold: 0.35, TargetPercentage: 10, Description: "Sand beaches around water"},
			{Type: block.GrassBlockID, Threshold: 0.70, TargetPercentage: 35, Description: "Grass fields and plains"},
			{Type: block.StoneBlockID, Threshold: 0.84, TargetPercentage: 14, Description: "Stone mountains and hills"},
		},
		FeatureRules: []FeatureRule{
			{
				Type:             block.WoodBlockID,
				BaseTypes:        []block.BlockID{block.GrassBlockID, block.DirtBlockID},
				SpawnChance:      0.75,
				NoiseThreshold:   0.3,
				TargetPercentage: 10,
				Description:      "Trees on grass/dirt",
			},
			{
				Type:             block.LavaBlockID,
				BaseTypes:        []block.BlockID{block.StoneBlockID},
				SpawnChance:      0.80,
				NoiseThreshold:   0.4,
				RequiresDeep:     true,
				Pool:             true,
				TargetPercentage: 5,
				Description:      "Lava in deep areas",
			},
			{
				Type:             block.DiamondBlockID,
				BaseTypes:        []block.BlockID{block.StoneBlockID},
				SpawnChance:      0.30,
				NoiseThreshold:   0.6,
				RequiresDeep:     true,
				TargetPercentage: 1,
				Description:      "Rare diamonds deep underground",
			},
			{
				Type:           block.CoalBlockID,
				BaseTypes:      []block.BlockID{block.StoneBlockID},
				SpawnChance:    0.15,
				NoiseThreshold: 0.2,
				Description:    "Coal in stone areas",
			},
		},
		Noise: NoiseConfig{
			Large:  ScaleLayer{Params: noise.Params{Scale: 0.002, Octaves: 3, Persistence: 0.5, Lacunarity: 2.0, Salt: SaltLarge}, Weight: 0.5},
			Medium: ScaleLayer{Params: noise.Params{Scale: 0.01, Octaves: 4, Persistence: 0.6, Lacunarity: 2.0, Salt: SaltMedium}, Weight: 0.3},
			Small:  ScaleLayer{Params: noise.Params{Scale: 0.05, Octaves: 2, Persistence: 0.3, Lacunarity: 2.0, Salt: SaltSmall}, Weight: 0.2},

			Feature:  noise.Params{Scale: 0.05, Octaves: 3, Persistence: 0.6, Lacunarity: 2.0, Salt: SaltFeature},
			LavaPool: noise.Params{Scale: 0.025, Octaves: 2, Persistence: 0.4, Lacunarity: 2.0, Salt: SaltLavaPool},

			StretchMin:        0.35,
			StretchMax:        0.65,
			DeepThreshold:     0.84,
			LavaPoolThreshold: 0.2,

			OffsetX: 10007,
			OffsetY: 10009,
		},
	}
}

// Clone возвращает глубокую копию конфигурации
func (c *Config) Clone() *Config {
	out := *c
	out.BaseLayers = append([]BaseLayer(nil), c.BaseLayers...)
	out.FeatureRules = make([]FeatureRule, len(c.FeatureRules))
	for i, r := range c.FeatureRules {
		r.BaseTypes = append([]block.BlockID(nil), r.BaseTypes...)
		out.FeatureRules[i] = r
	}
	return &out
}

// ValidationError возвращается для некорректной конфигурации
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("конфигурация ландшафта некорректна: %s", strings.Join(e.Issues, "; "))
}

// Validate проверяет конфигурацию и возвращает список проблем
func (c *Config) Validate() []string {
	var issues []string

	if len(c.BaseLayers) == 0 {
		issues = append(issues, "не задано ни одного базового слоя")
	}

	// Пороги базовых слоёв строго возрастают и лежат в [0,1]
	for i, layer := range c.BaseLayers {
		if !block.IsValidBlockID(layer.Type) {
			issues = append(issues, fmt.Sprintf("базовый слой %d: неизвестный тип блока", i))
		}
		if !isProbability(layer.Threshold) {
			issues = append(issues, fmt.Sprintf("базовый слой %s: порог %.3f вне [0,1]", layer.Type, layer.Threshold))
		}
		if i > 0 && layer.Threshold <= c.BaseLayers[i-1].Threshold {
			issues = append(issues, fmt.Sprintf("пороги базовых слоёв должны возрастать: %s -> %s",
				c.BaseLayers[i-1].Type, layer.Type))
		}
	}

	// Правила ссылаются только на известные базовые типы (dirt – особый случай: результат добычи камня)
	known := make(map[block.BlockID]bool, len(c.BaseLayers)+1)
	for _, layer := range c.BaseLayers {
		known[layer.Type] = true
	}
	known[block.DirtBlockID] = true

	for _, rule := range c.FeatureRules {
		if !block.IsValidBlockID(rule.Type) {
			issues = append(issues, "правило с неизвестным типом блока")
			continue
		}
		if len(rule.BaseTypes) == 0 {
			issues = append(issues, fmt.Sprintf("правило %s: не заданы базовые типы", rule.Type))
		}
		for _, base := range rule.BaseTypes {
			if !known[base] {
				issues = append(issues, fmt.Sprintf("правило %s ссылается на неизвестный базовый тип %s", rule.Type, base))
			}
		}
		if !isProbability(rule.SpawnChance) {
			issues = append(issues, fmt.Sprintf("правило %s: шанс %.3f вне [0,1]", rule.Type, rule.SpawnChance))
		}
		if rule.NoiseThreshold < -1 || rule.NoiseThreshold > 1 {
			issues = append(issues, fmt.Sprintf("правило %s: порог шума %.3f вне [-1,1]", rule.Type, rule.NoiseThreshold))
		}
	}

	// Целевые проценты не превышают 100
	totalBase := 0.0
	for _, layer := range c.BaseLayers {
		totalBase += layer.TargetPercentage
	}
	totalFeature := 0.0
	for _, rule := range c.FeatureRules {
		totalFeature += rule.TargetPercentage
	}
	if totalBase > 100 {
		issues = append(issues, fmt.Sprintf("сумма целевых процентов базовых слоёв %.1f%% превышает 100%%", totalBase))
	}
	if totalBase+totalFeature > 100 {
		issues = append(issues, fmt.Sprintf("сумма всех целевых процентов %.1f%% превышает 100%%", totalBase+totalFeature))
	}

	// Параметры шума
	n := c.Noise
	weights := n.Large.Weight + n.Medium.Weight + n.Small.Weight
	if math.Abs(weights-1.0) > 1e-9 {
		issues = append(issues, fmt.Sprintf("веса масштабов шума дают в сумме %.3f, ожидается 1.0", weights))
	}
	if n.StretchMax <= n.StretchMin {
		issues = append(issues, "stretch_max должен быть больше stretch_min")
	}
	if !isProbability(n.DeepThreshold) {
		issues = append(issues, fmt.Sprintf("deep_threshold %.3f вне [0,1]", n.DeepThreshold))
	}
	if n.LavaPoolThreshold < -1 || n.LavaPoolThreshold > 1 {
		issues = append(issues, fmt.Sprintf("lava_pool_threshold %.3f вне [-1,1]", n.LavaPoolThreshold))
	}

	return issues
}

// Check возвращает *ValidationError, если конфигурация некорректна
func (c *Config) Check() error {
	if issues := c.Validate(); len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// TargetDistribution возвращает целевые проценты для всех типов
func (c *Config) TargetDistribution() map[block.BlockID]float64 {
	dist := make(map[block.BlockID]float64)
	for _, layer := range c.BaseLayers {
		dist[layer.Type] = layer.TargetPercentage
	}
	for _, rule := range c.FeatureRules {
		if rule.TargetPercentage > 0 {
			dist[rule.Type] = rule.TargetPercentage
		}
	}
	return dist
}

// BaseLayerFor возвращает базовый слой по типу
func (c *Config) BaseLayerFor(id block.BlockID) (*BaseLayer, bool) {
	for i := range c.BaseLayers {
		if c.BaseLayers[i].Type == id {
			return &c.BaseLayers[i], true
		}
	}
	return nil, false
}

// FeatureRuleFor возвращает правило по типу
func (c *Config) FeatureRuleFor(id block.BlockID) (*FeatureRule, bool) {
	for i := range c.FeatureRules {
		if c.FeatureRules[i].Type == id {
			return &c.FeatureRules[i], true
		}
	}
	return nil, false
}

// Summary – краткая сводка конфигурации
type Summary struct {
	BaseLayers         int                       `json:"base_layers"`
	FeatureRules       int                       `json:"feature_rules"`
	TargetDistribution map[block.BlockID]float64 `json:"target_distribution"`
	ValidationIssues   []string                  `json:"validation_issues"`
}

// Summary возвращает сводку конфигурации
func (c *Config) Summary() Summary {
	return Summary{
		BaseLayers:         len(c.BaseLayers),
		FeatureRules:       len(c.FeatureRules),
		TargetDistribution: c.TargetDistribution(),
		ValidationIssues:   c.Validate(),
	}
}

// LoadConfig читает YAML файл конфигурации ландшафта.
// Поля, отсутствующие в файле, берутся из DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию ландшафта %s: %w", path, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig разбирает YAML поверх DefaultConfig без проверки корректности
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации ландшафта: %w", err)
	}
	return cfg, nil
}

// SaveConfig записывает конфигурацию в YAML файл
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("ошибка сериализации конфигурации ландшафта: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать конфигурацию ландшафта %s: %w", path, err)
	}
	return nil
}

func isProbability(v float64) bool {
	return v >= 0 && v <= 1
}
