package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/minecraft2d/internal/api"
	"github.com/annel0/minecraft2d/internal/logging"
	"github.com/annel0/minecraft2d/internal/observability"
	"github.com/annel0/minecraft2d/internal/storage"
	"github.com/annel0/minecraft2d/internal/terrain"
)

const usage = `terrain-cli – инструменты генерации ландшафта

Команды:
  analyze   распределение блоков по нескольким сидам и сравнение с целями
  map       ASCII-карта области
  validate  проверка YAML конфигурации ландшафта
  defaults  вывести конфигурацию по умолчанию в YAML
  serve     REST инспектор генерации

Используйте terrain-cli <команда> -h для справки по флагам.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	// Для утилиты достаточно вывода в консоль
	logging.SetDefaultLogger(logging.NewWriterLogger("terrain-cli", os.Stderr, logging.INFO))

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "analyze":
		err = runAnalyze(args)
	case "map":
		err = runMap(args)
	case "validate":
		err = runValidate(args)
	case "defaults":
		err = runDefaults(args)
	case "serve":
		err = runServe(args)
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Printf("❌ Unknown command: %s\n\n%s\n", cmd, usage)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("❌ %s: %v", os.Args[1], err)
	}
}

// loadConfig читает конфигурацию ландшафта или возвращает встроенную
func loadConfig(path string) (*terrain.Config, error) {
	if path == "" {
		return terrain.DefaultConfig(), nil
	}
	return terrain.LoadConfig(path)
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "YAML конфигурация ландшафта")
		seed       = fs.Int64("seed", 1, "Первый сид")
		iterations = fs.Int("iterations", 5, "Количество сидов")
		width      = fs.Int("w", 100, "Ширина области")
		height     = fs.Int("h", 100, "Высота области")
		adjust     = fs.Bool("adjust", false, "Подстроить пороги базовых слоёв")
		out        = fs.String("out", "", "Куда записать подстроенную конфигурацию")
	)
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	start := time.Now()
	dist, err := terrain.AnalyzeSeeds(cfg, *seed, *iterations, *width, *height)
	if err != nil {
		return err
	}

	fmt.Printf("📊 %d сидов, область %dx%d, %d клеток, %s\n",
		*iterations, *width, *height, dist.Total, time.Since(start).Round(time.Millisecond))
	fmt.Printf("%-10s %8s %8s %8s\n", "тип", "цель", "факт", "откл.")
	for _, d := range terrain.Compare(cfg, dist) {
		fmt.Printf("%-10s %7.1f%% %7.1f%% %+7.1f\n", d.Type, d.Target, d.Actual, d.Diff())
	}

	if !*adjust {
		return nil
	}

	changed := terrain.AutoAdjustThresholds(cfg, dist)
	if len(changed) == 0 {
		fmt.Println("✅ Пороги в пределах допуска")
		return nil
	}
	for _, id := range changed {
		layer, _ := cfg.BaseLayerFor(id)
		fmt.Printf("🔧 %s: порог %.3f\n", id, layer.Threshold)
	}
	if *out != "" {
		if err := terrain.SaveConfig(*out, cfg); err != nil {
			return err
		}
		fmt.Printf("💾 Конфигурация записана в %s\n", *out)
	}
	return nil
}

func runMap(args []string) error {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "YAML конфигурация ландшафта")
		seed       = fs.Int64("seed", storage.DefaultSeed, "Сид мира")
		x          = fs.Int("x", -40, "Левый край")
		y          = fs.Int("y", -12, "Верхний край")
		width      = fs.Int("w", 80, "Ширина")
		height     = fs.Int("h", 24, "Высота")
	)
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	g, err := terrain.NewGenerator(*seed, cfg)
	if err != nil {
		return err
	}

	fmt.Print(terrain.RenderASCII(g.GenerateBlockType, *x, *y, *width, *height))
	fmt.Println(terrain.Legend())
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML конфигурация ландшафта")
	fs.Parse(args)

	cfg := terrain.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return err
		}
		// Разбираем без проверки, чтобы показать все проблемы
		if cfg, err = terrain.ParseConfig(data); err != nil {
			return err
		}
	}

	summary := cfg.Summary()
	fmt.Printf("Базовых слоёв: %d, правил: %d\n", summary.BaseLayers, summary.FeatureRules)
	if len(summary.ValidationIssues) == 0 {
		fmt.Println("✅ Конфигурация корректна")
		return nil
	}
	for _, issue := range summary.ValidationIssues {
		fmt.Println("❌", issue)
	}
	os.Exit(2)
	return nil
}

func runDefaults(args []string) error {
	fs := flag.NewFlagSet("defaults", flag.ExitOnError)
	out := fs.String("out", "terrain.yml", "Файл для записи")
	fs.Parse(args)

	if err := terrain.SaveConfig(*out, terrain.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("💾 Конфигурация по умолчанию записана в %s\n", *out)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "YAML конфигурация ландшафта")
		seed       = fs.Int64("seed", storage.DefaultSeed, "Сид мира")
		addr       = fs.String("addr", ":8088", "Адрес HTTP сервера")
		dbPath     = fs.String("db", "", "Каталог базы изменённых чанков (только чтение дельт)")
		tracing    = fs.Bool("tracing", false, "Экспорт трассировок OTLP")
		otlp       = fs.String("otlp", "", "OTLP endpoint host:port")
	)
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inspectorCfg := api.InspectorConfig{
		Addr:    *addr,
		Seed:    *seed,
		Terrain: cfg,
		Tracing: *tracing,
	}

	if *dbPath != "" {
		repo, err := storage.OpenChunkRepository(*dbPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		inspectorCfg.Repository = repo
	}

	shutdownTelemetry := observability.ShutdownFunc(observability.Noop)
	if *tracing {
		if shutdownTelemetry, err = observability.InitTelemetry(ctx, "terrain-inspector", *otlp); err != nil {
			return err
		}
	}

	server, err := api.NewInspectorServer(inspectorCfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал, завершение работы...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		logging.Error("Ошибка остановки инспектора: %v", serr)
	}
	if terr := shutdownTelemetry(shutdownCtx); terr != nil {
		logging.Error("Ошибка остановки OpenTelemetry: %v", terr)
	}
	return err
}
