package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/minecraft2d/internal/api"
	"github.com/annel0/minecraft2d/internal/config"
	"github.com/annel0/minecraft2d/internal/game"
	"github.com/annel0/minecraft2d/internal/logging"
	"github.com/annel0/minecraft2d/internal/metrics"
	"github.com/annel0/minecraft2d/internal/observability"
	"github.com/annel0/minecraft2d/internal/storage"
	"github.com/annel0/minecraft2d/internal/terrain"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML файл конфигурации (по умолчанию $GAME_CONFIG)")
		load       = flag.String("load", "", "Имя сохранённого мира для загрузки")
		seed       = flag.Int64("seed", 0, "Сид нового мира (0 – из конфигурации или случайный)")
		list       = flag.Bool("list", false, "Показать список сохранений и выйти")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Логгер игры становится логгером по умолчанию; инспектор пишет в свой файл
	lm := logging.GetLoggerManager()
	logger, err := lm.GetLogger("game")
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	logging.SetDefaultLogger(logger)
	defer lm.CloseAll()

	if level, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		logging.Warn("Неизвестный уровень логирования %q: %v", cfg.Logging.Level, err)
	} else if err := lm.SetLogLevel("game", level, logging.TRACE); err != nil {
		logging.Warn("Не удалось установить уровень логирования: %v", err)
	}

	fs, err := storage.NewFileStorage(cfg.Storage.GetSavesDir(), cfg.Storage.Compress)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия каталога сохранений: %v", err)
	}
	defer fs.Close()

	if *list {
		names, err := fs.List()
		if err != nil {
			log.Fatalf("❌ Ошибка чтения сохранений: %v", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	opts := game.OptionsFromConfig(cfg)
	if *seed != 0 {
		opts.Seed = *seed
	}
	if cfg.Terrain.Path != "" {
		if opts.Terrain, err = terrain.LoadConfig(cfg.Terrain.Path); err != nil {
			log.Fatalf("❌ Ошибка загрузки конфигурации ландшафта: %v", err)
		}
	}

	if path := cfg.Storage.GetChunkDBPath(); path != "" {
		repo, err := storage.OpenChunkRepository(path)
		if err != nil {
			log.Fatalf("❌ Ошибка открытия базы чанков: %v", err)
		}
		defer repo.Close()
		opts.Repository = repo
	}

	registry := prometheus.NewRegistry()
	opts.Observer = metrics.NewWorldMetrics("game", registry)

	var g *game.Game
	if *load != "" {
		save, err := fs.Load(*load)
		if err != nil {
			log.Fatalf("❌ Ошибка загрузки мира %q: %v", *load, err)
		}
		g, err = game.FromSave(save, opts)
		if err != nil {
			log.Fatalf("❌ Ошибка восстановления мира: %v", err)
		}
	} else {
		g, err = game.NewUnsaved(opts)
		if err != nil {
			log.Fatalf("❌ Ошибка создания мира: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DebugServer.Enabled {
		shutdown := startInspector(ctx, cfg, g, opts, registry)
		defer shutdown()
	}

	console := game.NewConsole(g, fs)
	fmt.Printf("🎮 Мир %q (seed=%d). Введите help для списка команд.\n", g.Name(), g.Seed())
	runConsole(ctx, console)

	if n, err := g.Flush(); err != nil {
		logging.Error("Ошибка сохранения изменённых чанков: %v", err)
	} else if n > 0 {
		logging.Info("Сохранено %d изменённых чанков", n)
	}
	logging.Info("👋 Игра завершена")
}

// runConsole читает команды из stdin до quit, EOF или сигнала
func runConsole(ctx context.Context, console *game.Console) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			out, err := console.Execute(line)
			if errors.Is(err, game.ErrQuit) {
				return
			}
			if err != nil {
				fmt.Println("❌", err)
				continue
			}
			if out = strings.TrimSpace(out); out != "" {
				fmt.Println(out)
			}
		}
	}
}

// startInspector запускает отладочный сервер с тем же сидом и конфигурацией ландшафта
func startInspector(ctx context.Context, cfg *config.Config, g *game.Game, opts game.Options, registry *prometheus.Registry) func() {
	telemetryShutdown := observability.ShutdownFunc(observability.Noop)
	if cfg.DebugServer.Tracing {
		shutdown, err := observability.InitTelemetry(ctx, "minecraft2d-inspector", cfg.DebugServer.OTLP)
		if err != nil {
			logging.Error("Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			telemetryShutdown = shutdown
		}
	}

	// Запросы инспектора не должны мешать консоли: на экран только предупреждения
	inspectorLogger := logging.GetInspectorLogger()
	lm := logging.GetLoggerManager()
	if err := lm.SetLogLevel(inspectorLogger.Component(), logging.WARN, logging.TRACE); err != nil {
		logging.Warn("Не удалось установить уровень логирования инспектора: %v", err)
	}
	logging.Debug("Активные логгеры: %s", strings.Join(lm.ListComponents(), ", "))

	server, err := api.NewInspectorServer(api.InspectorConfig{
		Addr:       fmt.Sprintf(":%d", cfg.DebugServer.GetPort()),
		Seed:       g.Seed(),
		Terrain:    opts.Terrain,
		Repository: opts.Repository,
		Registry:   registry,
		Tracing:    cfg.DebugServer.Tracing,
		Logger:     inspectorLogger,
	})
	if err != nil {
		logging.Error("Ошибка создания инспектора: %v", err)
		return func() {}
	}

	go func() {
		if err := server.Start(); err != nil {
			logging.Error("%v", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Error("Ошибка остановки инспектора: %v", err)
		}
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logging.Error("Ошибка остановки OpenTelemetry: %v", err)
		}
	}
}
