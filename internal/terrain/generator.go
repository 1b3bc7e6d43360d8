package terrain

import (
	"github.com/annel0/minecraft2d/internal/noise"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// Generator определяет итоговый тип блока клетки: базовый ландшафт
// плюс особенности по упорядоченному списку правил.
type Generator struct {
	seed       int64
	cfg        *Config
	field      *noise.Field
	classifier *Classifier
	feature    *noise.Channel
	lavaPool   *noise.Channel
}

// NewGenerator создаёт генератор. Некорректная конфигурация отклоняется
// с *ValidationError; cfg == nil означает DefaultConfig.
func NewGenerator(seed int64, cfg *Config) (*Generator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	// Генератор владеет своей копией: внешние изменения не должны менять мир
	cfg = cfg.Clone()
	field := noise.NewField(seed)

	return &Generator{
		seed:       seed,
		cfg:        cfg,
		field:      field,
		classifier: NewClassifier(field, cfg),
		feature:    field.Channel(cfg.Noise.Feature),
		lavaPool:   field.Channel(cfg.Noise.LavaPool),
	}, nil
}

// MustNewGenerator создаёт генератор или паникует
func MustNewGenerator(seed int64, cfg *Config) *Generator {
	g, err := NewGenerator(seed, cfg)
	if err != nil {
		panic(err)
	}
	return g
}

// Seed возвращает сид мира
func (g *Generator) Seed() int64 {
	return g.seed
}

// Config возвращает копию конфигурации генератора
func (g *Generator) Config() *Config {
	return g.cfg.Clone()
}

// Classifier возвращает классификатор базового ландшафта
func (g *Generator) Classifier() *Classifier {
	return g.classifier
}

// FeatureNoise возвращает значение канала особенностей в [-1, 1]
func (g *Generator) FeatureNoise(x, y int) float64 {
	fx, fy := g.offset(x, y)
	return g.feature.Sample(fx, fy)
}

// ShouldPlaceLavaPool проверяет крупный канал формы озёр лавы
func (g *Generator) ShouldPlaceLavaPool(x, y int) bool {
	if !g.classifier.IsDeepUnderground(x, y) {
		return false
	}
	fx, fy := g.offset(x, y)
	return g.lavaPool.Sample(fx, fy) > g.cfg.Noise.LavaPoolThreshold
}

// GenerateBlockType возвращает итоговый тип блока клетки.
// Результат зависит только от сида, конфигурации и координат.
func (g *Generator) GenerateBlockType(x, y int) block.BlockID {
	base, deep := g.classifier.Sample(x, y)
	featureNoise := g.FeatureNoise(x, y)
	rnd := newCellRandom(x, y, g.seed)

	for _, rule := range g.cfg.FeatureRules {
		if !rule.AppliesTo(base) {
			continue
		}
		if rule.RequiresDeep && !deep {
			continue
		}
		// Число из потока берётся только после прохождения порога шума
		if featureNoise <= rule.NoiseThreshold || rnd.Float64() >= rule.SpawnChance {
			continue
		}
		if rule.Pool && !g.ShouldPlaceLavaPool(x, y) {
			continue
		}
		return rule.Type
	}

	return base
}

func (g *Generator) offset(x, y int) (float64, float64) {
	return float64(x) + g.cfg.Noise.OffsetX, float64(y) + g.cfg.Noise.OffsetY
}
