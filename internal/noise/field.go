package noise

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Params описывает один канал шума
type Params struct {
	Scale       float64 `yaml:"scale"`       // Множитель координат (частота)
	Octaves     int     `yaml:"octaves"`     // Количество октав
	Persistence float64 `yaml:"persistence"` // Затухание амплитуды между октавами
	Lacunarity  float64 `yaml:"lacunarity"`  // Рост частоты между октавами
	Salt        int64   `yaml:"salt"`        // Добавка к сиду мира
}

// Field – детерминированное поле когерентного шума, зависящее только от сида мира.
// Разные каналы получают свой сид (seed + salt), поэтому их значения не коррелируют.
type Field struct {
	seed int64
}

// NewField создаёт поле шума для сида мира
func NewField(seed int64) *Field {
	return &Field{seed: seed}
}

// Seed возвращает сид мира
func (f *Field) Seed() int64 {
	return f.seed
}

// Channel – подготовленный канал шума с фиксированными параметрами
type Channel struct {
	params    Params
	gen       *perlin.Perlin
	amplitude float64 // Сумма амплитуд всех октав для нормализации в [-1, 1]
}

// Channel создаёт канал с указанными параметрами
func (f *Field) Channel(p Params) *Channel {
	octaves := p.Octaves
	if octaves < 1 {
		octaves = 1
	}
	persistence := p.Persistence
	if persistence <= 0 {
		persistence = 0.5
	}
	lacunarity := p.Lacunarity
	if lacunarity <= 0 {
		lacunarity = 2.0
	}
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}

	// go-perlin делит вклад октавы на alpha^i, поэтому alpha = 1/persistence
	alpha := 1.0 / persistence
	gen := perlin.NewPerlin(alpha, lacunarity, int32(octaves), f.seed+p.Salt)

	amplitude := 0.0
	amp := 1.0
	for i := 0; i < octaves; i++ {
		amplitude += amp
		amp *= persistence
	}

	return &Channel{
		params:    Params{Scale: scale, Octaves: octaves, Persistence: persistence, Lacunarity: lacunarity, Salt: p.Salt},
		gen:       gen,
		amplitude: amplitude,
	}
}

// Params возвращает нормализованные параметры канала
func (c *Channel) Params() Params {
	return c.params
}

// Sample возвращает значение шума в точке (x, y) в диапазоне [-1, 1].
// Координаты умножаются на Scale канала.
func (c *Channel) Sample(x, y float64) float64 {
	v := c.gen.Noise2D(x*c.params.Scale, y*c.params.Scale) / c.amplitude
	return clamp(v, -1, 1)
}

// Sample – прямая форма: разовый запрос к каналу без масштабирования координат
func (f *Field) Sample(x, y float64, octaves int, persistence, lacunarity float64, salt int64) float64 {
	ch := f.Channel(Params{Scale: 1, Octaves: octaves, Persistence: persistence, Lacunarity: lacunarity, Salt: salt})
	return ch.Sample(x, y)
}

// Normalize переводит значение из [-1, 1] в [0, 1]
func Normalize(v float64) float64 {
	return (v + 1.0) / 2.0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
