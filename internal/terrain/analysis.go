package terrain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/annel0/minecraft2d/internal/world/block"
)

// Distribution – статистика типов блоков по области
type Distribution struct {
	Counts map[block.BlockID]int `json:"counts"`
	Total  int                   `json:"total"`
}

// Percentage возвращает долю типа в процентах
func (d Distribution) Percentage(id block.BlockID) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Counts[id]) * 100 / float64(d.Total)
}

// Percentages возвращает проценты всех встреченных типов
func (d Distribution) Percentages() map[block.BlockID]float64 {
	out := make(map[block.BlockID]float64, len(d.Counts))
	for id := range d.Counts {
		out[id] = d.Percentage(id)
	}
	return out
}

// Analyze считает распределение типов в прямоугольнике width×height от (originX, originY)
func Analyze(g *Generator, originX, originY, width, height int) Distribution {
	dist := Distribution{Counts: make(map[block.BlockID]int)}
	for y := originY; y < originY+height; y++ {
		for x := originX; x < originX+width; x++ {
			dist.Counts[g.GenerateBlockType(x, y)]++
			dist.Total++
		}
	}
	return dist
}

// AnalyzeSeeds усредняет распределение по нескольким сидам подряд, начиная с seed
func AnalyzeSeeds(cfg *Config, seed int64, iterations, width, height int) (Distribution, error) {
	total := Distribution{Counts: make(map[block.BlockID]int)}
	for i := 0; i < iterations; i++ {
		g, err := NewGenerator(seed+int64(i), cfg)
		if err != nil {
			return Distribution{}, err
		}
		d := Analyze(g, 0, 0, width, height)
		for id, n := range d.Counts {
			total.Counts[id] += n
		}
		total.Total += d.Total
	}
	return total, nil
}

// Deviation – отклонение фактического процента от целевого
type Deviation struct {
	Type   block.BlockID `json:"type"`
	Target float64       `json:"target"`
	Actual float64       `json:"actual"`
}

// Diff возвращает Actual - Target
func (d Deviation) Diff() float64 {
	return d.Actual - d.Target
}

// Compare сопоставляет распределение с целевыми процентами конфигурации
func Compare(cfg *Config, dist Distribution) []Deviation {
	targets := cfg.TargetDistribution()
	out := make([]Deviation, 0, len(targets))
	for id, target := range targets {
		out = append(out, Deviation{Type: id, Target: target, Actual: dist.Percentage(id)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Параметры эвристики подстройки порогов
const (
	adjustmentFactor   = 0.05
	adjustmentMinDiff  = 2.0
	adjustmentMinLimit = 0.1
	adjustmentMaxLimit = 0.9
)

// AutoAdjustThresholds сдвигает пороги базовых слоёв к целевому распределению.
// Возвращает список слоёв, порог которых изменился.
func AutoAdjustThresholds(cfg *Config, dist Distribution) []block.BlockID {
	var changed []block.BlockID
	for i := range cfg.BaseLayers {
		layer := &cfg.BaseLayers[i]
		if layer.TargetPercentage <= 0 {
			continue
		}
		if _, seen := dist.Counts[layer.Type]; !seen {
			continue
		}

		diff := dist.Percentage(layer.Type) - layer.TargetPercentage
		if math.Abs(diff) <= adjustmentMinDiff {
			continue
		}

		// Слишком много типа – порог растёт, слишком мало – падает
		layer.Threshold += adjustmentFactor * (diff / layer.TargetPercentage)
		layer.Threshold = math.Max(adjustmentMinLimit, math.Min(adjustmentMaxLimit, layer.Threshold))
		changed = append(changed, layer.Type)
	}
	return changed
}

var asciiGlyphs = map[block.BlockID]byte{
	block.GrassBlockID:   '.',
	block.DirtBlockID:    ',',
	block.SandBlockID:    ':',
	block.WaterBlockID:   '~',
	block.StoneBlockID:   '#',
	block.WoodBlockID:    'T',
	block.CoalBlockID:    'c',
	block.LavaBlockID:    'L',
	block.DiamondBlockID: 'D',
}

// Glyph возвращает символ типа блока для текстовой карты
func Glyph(id block.BlockID) byte {
	if g, ok := asciiGlyphs[id]; ok {
		return g
	}
	return '?'
}

// RenderASCII рисует текстовую карту области, строка на каждый y
func RenderASCII(lookup func(x, y int) block.BlockID, originX, originY, width, height int) string {
	var sb strings.Builder
	sb.Grow((width + 1) * height)
	for y := originY; y < originY+height; y++ {
		for x := originX; x < originX+width; x++ {
			sb.WriteByte(Glyph(lookup(x, y)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Legend возвращает легенду символов карты
func Legend() string {
	parts := make([]string, 0, len(asciiGlyphs))
	for _, id := range block.All() {
		if g, ok := asciiGlyphs[id]; ok {
			parts = append(parts, fmt.Sprintf("%c=%s", g, id))
		}
	}
	return strings.Join(parts, " ")
}
