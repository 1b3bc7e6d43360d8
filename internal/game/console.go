package game

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/annel0/minecraft2d/internal/crafting"
	"github.com/annel0/minecraft2d/internal/player"
	"github.com/annel0/minecraft2d/internal/storage"
	"github.com/annel0/minecraft2d/internal/terrain"
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world/block"
)

// ConsoleStep – шаг симуляции текстовых команд, секунды
const ConsoleStep = 0.1

// ErrQuit возвращается командой quit
var ErrQuit = errors.New("выход")

// Console управляет игрой текстовыми командами
type Console struct {
	game    *Game
	storage *storage.FileStorage // nil – сохранение недоступно
}

// NewConsole создаёт консоль для игры
func NewConsole(g *Game, fs *storage.FileStorage) *Console {
	return &Console{game: g, storage: fs}
}

// Game возвращает управляемую игру
func (c *Console) Game() *Game {
	return c.game
}

// Execute выполняет одну команду и возвращает текст ответа
func (c *Console) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		return consoleHelp, nil
	case "move", "m":
		return c.move(args)
	case "turn", "t":
		return c.turn(args)
	case "mine":
		return c.mine(args)
	case "place", "p":
		return c.place()
	case "slot":
		return c.slot(args)
	case "craft":
		return c.craft(args)
	case "inv", "i":
		return c.inventory(), nil
	case "wait", "w":
		return c.wait(args)
	case "map":
		return c.renderMap(), nil
	case "status", "s":
		return c.status(), nil
	case "save":
		return c.save(args)
	case "quit", "exit", "q":
		return "", ErrQuit
	}
	return "", fmt.Errorf("неизвестная команда %q, введите help", cmd)
}

const consoleHelp = `Команды:
  move <north|south|east|west> [шагов]  идти
  turn <направление>                    повернуться
  mine <секунд>                         добывать блок перед собой
  place                                 поставить блок из активного слота
  slot <0-4>                            выбрать слот
  craft <stick|torch>                   создать предмет
  inv                                   инвентарь
  wait <секунд>                         подождать
  map                                   карта видимой области
  status                                состояние игрока и времени суток
  save [имя]                            сохранить мир
  quit                                  выход`

func (c *Console) move(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("укажите направление")
	}
	dir, err := player.ParseOrientation(args[0])
	if err != nil {
		return "", err
	}
	steps := 1
	if len(args) > 1 {
		if steps, err = strconv.Atoi(args[1]); err != nil || steps < 1 {
			return "", fmt.Errorf("число шагов должно быть положительным: %q", args[1])
		}
	}

	p := c.game.Player()
	start := p.Position
	if err := c.game.HandleIntent(Press(dir)); err != nil {
		return "", err
	}
	stepTime := 1.0 / p.MovementSpeed
	for i := 0; i < steps; i++ {
		c.game.Update(stepTime)
	}
	if err := c.game.HandleIntent(Release(dir)); err != nil {
		return "", err
	}

	moved := start.ChebyshevTo(p.Position)
	if moved < steps {
		return fmt.Sprintf("пройдено %d из %d, путь преграждает %s", moved, steps,
			c.blockAt(p.Facing())), nil
	}
	return fmt.Sprintf("позиция %s", p.Position.Key()), nil
}

func (c *Console) turn(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("укажите направление")
	}
	dir, err := player.ParseOrientation(args[0])
	if err != nil {
		return "", err
	}
	c.game.Player().Turn(dir)
	return fmt.Sprintf("смотрю на %s: %s", dir, c.blockAt(c.game.Player().Facing())), nil
}

func (c *Console) mine(args []string) (string, error) {
	seconds := 1.0
	if len(args) > 0 {
		v, err := parseSeconds(args[0])
		if err != nil || v <= 0 {
			return "", fmt.Errorf("время должно быть положительным: %q", args[0])
		}
		seconds = v
	}

	p := c.game.Player()
	target := p.Facing()
	id := c.blockAt(target)

	if err := c.game.HandleIntent(ActionDown()); err != nil {
		return "", err
	}
	if !p.Mining.Active() {
		return fmt.Sprintf("%s нельзя добыть", id), nil
	}

	for elapsed := 0.0; elapsed < seconds && p.Mining.Active(); elapsed += ConsoleStep {
		c.game.Update(min(ConsoleStep, seconds-elapsed))
	}

	progress := p.Mining.Progress(c.game.Store())
	completed := p.Mining.JustCompleted()
	if err := c.game.HandleIntent(ActionUp()); err != nil {
		return "", err
	}

	if completed {
		result := block.MustGet(id).MiningResult
		return fmt.Sprintf("добыт %s (в инвентаре %d)", result, p.Inventory.Count(result)), nil
	}
	return fmt.Sprintf("добыча %s прервана на %.0f%%, прочность восстановлена", id, progress*100), nil
}

func (c *Console) place() (string, error) {
	p := c.game.Player()
	id, ok := p.Inventory.ActiveType()
	if !ok {
		return "активный слот пуст", nil
	}
	if !p.PlaceBlock(c.game.Store()) {
		return fmt.Sprintf("нельзя поставить %s на %s", id, c.blockAt(p.Facing())), nil
	}
	return fmt.Sprintf("поставлен %s", id), nil
}

func (c *Console) slot(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("укажите номер слота")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n >= player.HotbarSlots {
		return "", fmt.Errorf("слот должен быть от 0 до %d", player.HotbarSlots-1)
	}
	if err := c.game.HandleIntent(Slot(n)); err != nil {
		return "", err
	}
	if id, ok := c.game.Player().Inventory.ActiveType(); ok {
		return fmt.Sprintf("слот %d: %s", n, id), nil
	}
	return fmt.Sprintf("слот %d пуст", n), nil
}

func (c *Console) craft(args []string) (string, error) {
	if len(args) == 0 {
		var names []string
		for _, r := range crafting.Recipes() {
			names = append(names, r.Output.String())
		}
		return "рецепты: " + strings.Join(names, ", "), nil
	}
	id, err := block.Parse(args[0])
	if err != nil {
		return "", err
	}
	if err := c.game.HandleIntent(CraftItem(id)); err != nil {
		return "", err
	}
	return fmt.Sprintf("создан %s (всего %d)", id, c.game.Player().Inventory.Count(id)), nil
}

func (c *Console) inventory() string {
	inv := c.game.Player().Inventory
	if inv.Len() == 0 {
		return "инвентарь пуст"
	}
	var sb strings.Builder
	for i, item := range inv.Items() {
		marker := " "
		if i == inv.ActiveSlot() {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s%d %s x%d\n", marker, i, item.Type, item.Count)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *Console) wait(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("укажите время в секундах")
	}
	seconds, err := parseSeconds(args[0])
	if err != nil || seconds < 0 {
		return "", fmt.Errorf("время должно быть неотрицательным: %q", args[0])
	}
	c.game.Update(seconds)
	return c.clock(), nil
}

// parseSeconds разбирает конечное число секунд (Inf и NaN отклоняются)
func parseSeconds(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("неконечное значение %q", s)
	}
	return v, nil
}

func (c *Console) clock() string {
	cycle := c.game.Cycle()
	return fmt.Sprintf("%s, освещённость %.2f", cycle.Phase(), cycle.LightLevel())
}

func (c *Console) renderMap() string {
	from, _ := c.game.Viewport()
	p := c.game.Player()
	rows := c.game.VisibleBlocks()

	var sb strings.Builder
	for i, row := range rows {
		y := from.Y + i
		for j, id := range row {
			x := from.X + j
			if x == p.Position.X && y == p.Position.Y {
				sb.WriteByte('@')
				continue
			}
			sb.WriteByte(terrain.Glyph(id))
		}
		sb.WriteByte('\n')
	}
	return sb.String() + terrain.Legend()
}

// blockAt возвращает тип блока в клетке; None для пустой клетки
func (c *Console) blockAt(pos vec.Vec2) block.BlockID {
	return c.game.Store().BlockType(pos.X, pos.Y)
}

func (c *Console) status() string {
	p := c.game.Player()
	s := fmt.Sprintf("мир %q seed=%d, позиция %s, смотрю на %s (%s), %s",
		c.game.Name(), c.game.Seed(), p.Position.Key(), p.Orientation, c.blockAt(p.Facing()), c.clock())
	if target, progress, ok := c.game.MiningTarget(); ok {
		s += fmt.Sprintf(", добыча %s %.0f%%", target.Key(), progress*100)
	}
	return s
}

func (c *Console) save(args []string) (string, error) {
	if c.storage == nil {
		return "", errors.New("хранилище сохранений не настроено")
	}
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if err := c.game.SaveTo(c.storage, name); err != nil {
		return "", err
	}
	if _, err := c.game.Flush(); err != nil {
		return "", err
	}
	return fmt.Sprintf("мир %q сохранён", c.game.Name()), nil
}
