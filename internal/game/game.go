package game

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/minecraft2d/internal/config"
	"github.com/annel0/minecraft2d/internal/crafting"
	"github.com/annel0/minecraft2d/internal/daycycle"
	"github.com/annel0/minecraft2d/internal/logging"
	"github.com/annel0/minecraft2d/internal/player"
	"github.com/annel0/minecraft2d/internal/storage"
	"github.com/annel0/minecraft2d/internal/terrain"
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// MaxRandomSeed – верхняя граница случайного сида нового мира
const MaxRandomSeed = 1_000_000

// UnsavedName – имя ещё не сохранённого мира
const UnsavedName = "unsaved"

// Observer получает события хранилища и игрока (например, метрики)
type Observer interface {
	world.StoreObserver
	player.Observer
}

// Options – параметры создания игры
type Options struct {
	Name           string
	Seed           int64
	Terrain        *terrain.Config // nil – конфигурация по умолчанию
	ViewportWidth  int             // В клетках
	ViewportHeight int
	MiningRate     float64 // 0 – значение по умолчанию
	MovementSpeed  float64
	DaySeconds     float64
	NightSeconds   float64
	Observer       Observer
	Repository     *storage.ChunkRepository // nil – дельты чанков не ведутся
}

// OptionsFromConfig собирает параметры игры из конфигурации приложения
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Seed:           cfg.World.Seed,
		ViewportWidth:  cfg.World.ViewportWidth,
		ViewportHeight: cfg.World.ViewportHeight,
		MiningRate:     cfg.Player.MiningRate,
		MovementSpeed:  cfg.Player.MovementSpeed,
		DaySeconds:     cfg.DayCycle.DaySeconds,
		NightSeconds:   cfg.DayCycle.NightSeconds,
	}
}

// Game владеет миром, игроком и циклом дня. Вызывается из одного игрового цикла.
type Game struct {
	name      string
	generator *terrain.Generator
	store     *world.ChunkStore
	player    *player.Player
	cycle     *daycycle.Cycle
	repo      *storage.ChunkRepository

	viewportWidth  int
	viewportHeight int
	radius         int
}

// New создаёт новую игру с сидом opts.Seed; игрок появляется в (0, 0)
func New(opts Options) (*Game, error) {
	generator, err := terrain.NewGenerator(opts.Seed, opts.Terrain)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания генератора мира: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = UnsavedName
	}

	g := &Game{
		name:      name,
		generator: generator,
		store:     world.NewChunkStore(generator),
		player:    player.New(vec.Vec2{}),
		cycle:     daycycle.New(opts.DaySeconds, opts.NightSeconds),
		repo:      opts.Repository,
	}
	if opts.MiningRate > 0 {
		g.player.MiningRate = opts.MiningRate
	}
	if opts.MovementSpeed > 0 {
		g.player.MovementSpeed = opts.MovementSpeed
	}
	if opts.Observer != nil {
		g.store.SetObserver(opts.Observer)
		g.player.SetObserver(opts.Observer)
	}
	if g.repo != nil {
		g.store.SetPatcher(g.repo.Patcher(generator.Seed()))
	}

	g.Resize(opts.ViewportWidth, opts.ViewportHeight)
	logging.Info("Мир %q создан (seed=%d, радиус=%d)", g.name, generator.Seed(), g.radius)
	return g, nil
}

// NewUnsaved создаёт безымянный мир. Нулевой сид заменяется случайным из [1, MaxRandomSeed].
func NewUnsaved(opts Options) (*Game, error) {
	if opts.Seed == 0 {
		opts.Seed = RandomSeed()
	}
	opts.Name = UnsavedName
	return New(opts)
}

// RandomSeed возвращает случайный сид из [1, MaxRandomSeed]
func RandomSeed() int64 {
	return rand.Int63n(MaxRandomSeed) + 1
}

// FromSave восстанавливает игру из сохранения. Сид берётся из сохранения.
func FromSave(save *storage.WorldSave, opts Options) (*Game, error) {
	chunks, err := save.DecodeChunks()
	if err != nil {
		return nil, err
	}

	opts.Name = save.WorldName
	opts.Seed = save.TerrainSeed
	g, err := New(opts)
	if err != nil {
		return nil, err
	}

	// Чанки из сохранения замещают сгенерированные
	for _, chunk := range chunks {
		if filled := g.store.LoadChunk(chunk); filled > 0 {
			logging.Warn("Чанк %s сохранён не полностью, догенерировано %d клеток", chunk.Coords.Key(), filled)
		}
	}

	rec := save.Player
	g.player.Position = vec.Vec2{X: rec.WorldX, Y: rec.WorldY}
	g.player.Orientation = rec.Orientation
	if rec.Inventory != nil {
		for _, item := range rec.Inventory.Items() {
			g.player.Inventory.AddN(item.Type, item.Count)
		}
	}
	g.player.SelectSlot(rec.ActiveSlot)

	if save.DayTime != nil {
		g.cycle.SetElapsed(*save.DayTime)
	}

	g.ensureRegion()
	logging.Info("Мир %q загружен: %d чанков, игрок в %s", g.name, len(chunks), g.player.Position.Key())
	return g, nil
}

// Snapshot возвращает сохранение текущего состояния
func (g *Game) Snapshot() *storage.WorldSave {
	save := storage.NewWorldSave(g.name)
	save.TerrainSeed = g.generator.Seed()

	save.Player.WorldX = g.player.Position.X
	save.Player.WorldY = g.player.Position.Y
	save.Player.Orientation = g.player.Orientation
	for _, item := range g.player.Inventory.Items() {
		save.Player.Inventory.AddN(item.Type, item.Count)
	}
	save.Player.ActiveSlot = g.player.Inventory.ActiveSlot()

	dayTime := g.cycle.Elapsed()
	save.DayTime = &dayTime

	save.PutChunks(g.store.Chunks())
	return save
}

// SaveTo сохраняет мир под именем name (пустое – текущее имя)
func (g *Game) SaveTo(fs *storage.FileStorage, name string) error {
	if name != "" {
		g.name = name
	}
	if g.name == UnsavedName {
		return fmt.Errorf("%w: задайте имя мира перед сохранением", storage.ErrInvalidName)
	}
	return fs.Save(g.Snapshot())
}

// Flush записывает изменённые чанки в хранилище дельт, если оно подключено
func (g *Game) Flush() (int, error) {
	if g.repo == nil {
		return 0, nil
	}
	return g.repo.SaveAll(g.store)
}

// HandleIntent применяет действие игрока
func (g *Game) HandleIntent(in Intent) error {
	switch in.Kind {
	case PressDirection:
		g.player.PressDirection(in.Direction)
	case ReleaseDirection:
		g.player.ReleaseDirection(in.Direction)
	case PressAction:
		g.player.BeginMining(g.store)
	case ReleaseAction:
		g.player.ReleaseAction(g.store)
	case SelectSlot:
		g.player.SelectSlot(in.Slot)
	case Craft:
		if err := crafting.Craft(g.player.Inventory, in.Item); err != nil {
			return err
		}
		logging.Debug("Создан предмет %s", in.Item)
	default:
		return fmt.Errorf("неизвестное действие: %s", in.Kind)
	}
	return nil
}

// Update продвигает игру на dt секунд. Отрицательные и неконечные dt игнорируются.
func (g *Game) Update(dt float64) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}

	g.cycle.Update(dt)

	before := g.player.Position
	g.player.Update(dt, g.store)
	if g.player.Position != before {
		g.ensureRegion()
	}
}

// Resize меняет размер видимой области (в клетках) и догенерирует окрестность
func (g *Game) Resize(width, height int) {
	g.viewportWidth = max(width, 0)
	g.viewportHeight = max(height, 0)
	g.radius = world.RadiusForViewport(g.viewportWidth, g.viewportHeight)
	g.ensureRegion()
}

func (g *Game) ensureRegion() {
	if created := g.store.EnsureRegion(g.player.Position, g.radius); created > 0 {
		logging.Trace("Сгенерировано %d чанков вокруг %s", created, g.player.Position.Key())
	}
}

// Viewport возвращает углы видимой области, центрированной на игроке
func (g *Game) Viewport() (from, to vec.Vec2) {
	from = vec.Vec2{
		X: g.player.Position.X - g.viewportWidth/2,
		Y: g.player.Position.Y - g.viewportHeight/2,
	}
	to = vec.Vec2{X: from.X + g.viewportWidth - 1, Y: from.Y + g.viewportHeight - 1}
	return from, to
}

// VisibleBlocks возвращает типы блоков видимой области, строка на каждый y
func (g *Game) VisibleBlocks() [][]block.BlockID {
	from, to := g.Viewport()
	return g.store.QueryBlocks(from, to)
}

// MiningTarget возвращает цель и прогресс текущей добычи
func (g *Game) MiningTarget() (vec.Vec2, float64, bool) {
	target, ok := g.player.Mining.Target()
	if !ok {
		return vec.Vec2{}, 0, false
	}
	return target, g.player.Mining.Progress(g.store), true
}

func (g *Game) Name() string                  { return g.name }
func (g *Game) Seed() int64                   { return g.generator.Seed() }
func (g *Game) Store() *world.ChunkStore      { return g.store }
func (g *Game) Player() *player.Player        { return g.player }
func (g *Game) Cycle() *daycycle.Cycle        { return g.cycle }
func (g *Game) Generator() *terrain.Generator { return g.generator }
func (g *Game) Radius() int                   { return g.radius }

// LightLevel возвращает освещённость [0, 1]
func (g *Game) LightLevel() float64 { return g.cycle.LightLevel() }

// DarknessAlpha возвращает прозрачность ночного затемнения [0, 220]
func (g *Game) DarknessAlpha() int { return g.cycle.DarknessAlpha() }

// TimeOfDay возвращает долю прошедших суток [0, 1)
func (g *Game) TimeOfDay() float64 { return g.cycle.TimeOfDay() }
