// Package daycycle отвечает за смену дня и ночи и уровень освещённости.
package daycycle

import "math"

// Значения по умолчанию
const (
	DefaultDayDuration   = 120.0 // секунд
	DefaultNightDuration = 120.0 // секунд
	MaxDarkness          = 220   // Максимальная непрозрачность затемнения (0-255)
)

// Phase – часть суток
type Phase uint8

const (
	Afternoon Phase = iota
	Evening
	Night
	Dawn
)

func (p Phase) String() string {
	switch p {
	case Afternoon:
		return "Afternoon"
	case Evening:
		return "Evening"
	case Night:
		return "Night"
	case Dawn:
		return "Dawn"
	}
	return "Unknown"
}

// Cycle – цикл суток. Время 0 – полдень, 0.5 – полночь.
type Cycle struct {
	dayDuration   float64
	nightDuration float64
	elapsed       float64
}

// New создаёт цикл с заданной длительностью дня и ночи.
// Неположительные значения заменяются значениями по умолчанию.
func New(day, night float64) *Cycle {
	if day <= 0 {
		day = DefaultDayDuration
	}
	if night <= 0 {
		night = DefaultNightDuration
	}
	return &Cycle{dayDuration: day, nightDuration: night}
}

// Default создаёт цикл 120 + 120 секунд
func Default() *Cycle {
	return New(DefaultDayDuration, DefaultNightDuration)
}

// Update продвигает время на dt секунд; отрицательные и бесконечные dt игнорируются
func (c *Cycle) Update(dt float64) {
	if dt > 0 && !math.IsInf(dt, 1) {
		c.elapsed += dt
	}
}

// Elapsed возвращает прошедшее время в секундах (сохраняется как day_time)
func (c *Cycle) Elapsed() float64 {
	return c.elapsed
}

// SetElapsed восстанавливает время из сохранения
func (c *Cycle) SetElapsed(seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	c.elapsed = math.Max(0, seconds)
}

// Duration возвращает длительность полного цикла
func (c *Cycle) Duration() float64 {
	return c.dayDuration + c.nightDuration
}

// TimeOfDay возвращает позицию в цикле [0, 1)
func (c *Cycle) TimeOfDay() float64 {
	t := math.Mod(c.elapsed/c.Duration(), 1.0)
	if t < 0 {
		t += 1
	}
	return t
}

// LightLevel возвращает освещённость: 1 в полдень, 0 в полночь
func (c *Cycle) LightLevel() float64 {
	return (math.Cos(c.TimeOfDay()*2*math.Pi) + 1) / 2
}

// DarknessAlpha возвращает непрозрачность затемнения для слоя отрисовки
func (c *Cycle) DarknessAlpha() int {
	alpha := int(MaxDarkness * (1.0 - c.LightLevel()))
	if alpha < 0 {
		return 0
	}
	if alpha > MaxDarkness {
		return MaxDarkness
	}
	return alpha
}

// Phase возвращает часть суток
func (c *Cycle) Phase() Phase {
	t := c.TimeOfDay()
	switch {
	case t < 0.25:
		return Afternoon
	case t < 0.5:
		return Evening
	case t < 0.75:
		return Night
	default:
		return Dawn
	}
}

// IsDaytime возвращает true при освещённости больше половины
func (c *Cycle) IsDaytime() bool {
	return c.LightLevel() > 0.5
}
