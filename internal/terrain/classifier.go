package terrain

import (
	"math"

	"github.com/annel0/minecraft2d/internal/noise"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// Classifier определяет базовый тип ландшафта по порогам значения шума.
// ClassifyBase и IsDeepUnderground считают одно и то же значение Value,
// поэтому для одной клетки их ответы всегда согласованы.
type Classifier struct {
	cfg    *Config
	large  *noise.Channel
	medium *noise.Channel
	small  *noise.Channel
}

// NewClassifier создаёт классификатор для поля шума и конфигурации
func NewClassifier(field *noise.Field, cfg *Config) *Classifier {
	return &Classifier{
		cfg:    cfg,
		large:  field.Channel(cfg.Noise.Large.Params),
		medium: field.Channel(cfg.Noise.Medium.Params),
		small:  field.Channel(cfg.Noise.Small.Params),
	}
}

// Value возвращает растянутое значение базового шума в [0, 1]
func (c *Classifier) Value(x, y int) float64 {
	n := c.cfg.Noise
	fx := float64(x) + n.OffsetX
	fy := float64(y) + n.OffsetY

	combined := n.Large.Weight*c.large.Sample(fx, fy) +
		n.Medium.Weight*c.medium.Sample(fx, fy) +
		n.Small.Weight*c.small.Sample(fx, fy)

	normalized := noise.Normalize(combined)

	// Нормализованный 2D шум не заполняет [0,1] равномерно – растягиваем
	// эмпирический диапазон, иначе крайние биомы почти не встречаются
	stretched := (normalized - n.StretchMin) / (n.StretchMax - n.StretchMin)
	return math.Max(0, math.Min(1, stretched))
}

// ClassifyBase возвращает базовый тип ландшафта для клетки
func (c *Classifier) ClassifyBase(x, y int) block.BlockID {
	return c.classifyValue(c.Value(x, y))
}

// IsDeepUnderground возвращает true для клеток на уровне глубокого камня и выше
func (c *Classifier) IsDeepUnderground(x, y int) bool {
	return c.Value(x, y) >= c.cfg.Noise.DeepThreshold
}

// Sample возвращает базовый тип и признак глубины за один расчёт шума
func (c *Classifier) Sample(x, y int) (base block.BlockID, deep bool) {
	v := c.Value(x, y)
	return c.classifyValue(v), v >= c.cfg.Noise.DeepThreshold
}

func (c *Classifier) classifyValue(v float64) block.BlockID {
	layers := c.cfg.BaseLayers
	for _, layer := range layers {
		if v < layer.Threshold {
			return layer.Type
		}
	}
	if len(layers) == 0 {
		return block.StoneBlockID
	}
	return layers[len(layers)-1].Type
}
