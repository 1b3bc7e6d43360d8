package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/annel0/minecraft2d/internal/logging"
	"github.com/annel0/minecraft2d/internal/metrics"
	"github.com/annel0/minecraft2d/internal/middleware"
	"github.com/annel0/minecraft2d/internal/storage"
	"github.com/annel0/minecraft2d/internal/terrain"
	"github.com/annel0/minecraft2d/internal/vec"
	"github.com/annel0/minecraft2d/internal/world"
	"github.com/annel0/minecraft2d/internal/world/block"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	// MaxQueryCells ограничивает площадь одного запроса блоков
	MaxQueryCells = 256 * 256
	// MaxDistributionSide ограничивает сторону области анализа
	MaxDistributionSide = 1024
	// MaxCoordinate ограничивает модуль мировой координаты в запросах
	MaxCoordinate = 1 << 40
	// MaxChunkCoordinate ограничивает модуль координаты чанка
	MaxChunkCoordinate = MaxCoordinate >> vec.ChunkShift

	serviceName = "inspector"
)

// GenericResponse общий формат ответа API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// InspectorConfig содержит конфигурацию сервера инспекции
type InspectorConfig struct {
	Addr       string                   // адрес, например ":8088"
	Seed       int64                    // сид мира
	Terrain    *terrain.Config          // nil – конфигурация по умолчанию
	Repository *storage.ChunkRepository // если задан, на чанки накладываются сохранённые изменения
	Registry   *prometheus.Registry     // nil – собственный регистр
	Tracing    bool                     // подключить otelgin
	Logger     *logging.Logger          // nil – глобальный logging пакет
}

// InspectorServer – отладочный REST сервер для просмотра генерации мира.
// Владеет собственным хранилищем чанков, доступ к которому защищён мьютексом.
type InspectorServer struct {
	router     *gin.Engine
	addr       string
	generator  *terrain.Generator
	metrics    *ServerMetrics
	registry   *prometheus.Registry
	httpServer *http.Server

	mu    sync.Mutex
	store *world.ChunkStore
}

// NewInspectorServer создает сервер инспекции
func NewInspectorServer(cfg InspectorConfig) (*InspectorServer, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8088"
	}

	generator, err := terrain.NewGenerator(cfg.Seed, cfg.Terrain)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания генератора: %w", err)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	store := world.NewChunkStore(generator)
	store.SetObserver(metrics.NewWorldMetrics(serviceName, registry))
	if cfg.Repository != nil {
		store.SetPatcher(cfg.Repository.Patcher(cfg.Seed))
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.NewRequestLogger(cfg.Logger).Handler())
	if cfg.Tracing {
		router.Use(otelgin.Middleware(serviceName))
	}

	promMw := middleware.NewPrometheusMiddleware(serviceName, registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, registry)

	s := &InspectorServer{
		router:    router,
		addr:      cfg.Addr,
		generator: generator,
		metrics:   NewServerMetrics(),
		registry:  registry,
		store:     store,
	}
	s.setupRoutes()

	return s, nil
}

func (s *InspectorServer) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/blocks", s.handleBlocks)
		api.GET("/chunks/:cx/:cy", s.handleChunk)
		api.GET("/distribution", s.handleDistribution)
		api.GET("/config", s.handleConfig)
		api.GET("/server", s.handleServerInfo)
	}
}

// Handler возвращает http.Handler сервера (удобно для тестов)
func (s *InspectorServer) Handler() http.Handler {
	return s.router
}

// Start запускает сервер и блокируется до его остановки
func (s *InspectorServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logging.Info("🔎 Инспектор мира запущен на %s (seed=%d)", s.addr, s.generator.Seed())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка HTTP сервера инспектора: %w", err)
	}
	return nil
}

// Shutdown корректно останавливает сервер
func (s *InspectorServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *InspectorServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// BlocksResponse – прямоугольник типов блоков, строка на каждый y
type BlocksResponse struct {
	From vec.Vec2   `json:"from"`
	To   vec.Vec2   `json:"to"`
	Rows [][]string `json:"rows"`
}

func (s *InspectorServer) handleBlocks(c *gin.Context) {
	var from, to vec.Vec2
	if err := parseInts(c, map[string]*int{"x0": &from.X, "y0": &from.Y, "x1": &to.X, "y1": &to.Y}); err != nil {
		badRequest(c, err.Error())
		return
	}
	if to.X < from.X || to.Y < from.Y {
		badRequest(c, "x1/y1 должны быть не меньше x0/y0")
		return
	}
	width, height := to.X-from.X+1, to.Y-from.Y+1
	if width > MaxQueryCells || height > MaxQueryCells || width*height > MaxQueryCells {
		badRequest(c, fmt.Sprintf("область %dx%d превышает лимит %d клеток", width, height, MaxQueryCells))
		return
	}

	if c.Query("format") == "ascii" {
		c.String(http.StatusOK, s.renderASCII(from, width, height))
		return
	}

	ids := s.queryBlocks(from, to)

	rows := make([][]string, len(ids))
	for i, row := range ids {
		rows[i] = make([]string, len(row))
		for j, id := range row {
			rows[i][j] = id.String()
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Блоки области",
		Data:    BlocksResponse{From: from, To: to, Rows: rows},
	})
}

func (s *InspectorServer) renderASCII(from vec.Vec2, width, height int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return terrain.RenderASCII(s.store.BlockType, from.X, from.Y, width, height)
}

func (s *InspectorServer) queryBlocks(from, to vec.Vec2) [][]block.BlockID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.QueryBlocks(from, to)
}

// CellInfo – состояние одной клетки чанка
type CellInfo struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Type     string  `json:"type"`
	Health   float64 `json:"health"`
	Progress float64 `json:"progress"`
}

// ChunkResponse – содержимое чанка
type ChunkResponse struct {
	Coords  vec.Vec2   `json:"coords"`
	Origin  vec.Vec2   `json:"origin"`
	Changed int        `json:"changed"`
	Cells   []CellInfo `json:"cells"`
}

func (s *InspectorServer) handleChunk(c *gin.Context) {
	cx, err1 := strconv.Atoi(c.Param("cx"))
	cy, err2 := strconv.Atoi(c.Param("cy"))
	if err1 != nil || err2 != nil {
		badRequest(c, "координаты чанка должны быть целыми")
		return
	}
	if outOfRange(cx, MaxChunkCoordinate) || outOfRange(cy, MaxChunkCoordinate) {
		badRequest(c, fmt.Sprintf("координаты чанка по модулю не больше %d", MaxChunkCoordinate))
		return
	}
	coords := vec.Vec2{X: cx, Y: cy}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.GetBlock(coords.ChunkOrigin())
	chunk := s.store.Chunk(coords)
	if chunk == nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "чанк " + coords.Key() + " не создан",
		})
		return
	}

	resp := ChunkResponse{
		Coords:  coords,
		Origin:  coords.ChunkOrigin(),
		Changed: chunk.ChangeCounter,
		Cells:   make([]CellInfo, 0, world.ChunkSize*world.ChunkSize),
	}
	chunk.ForEach(func(local vec.Vec2, b *world.Block) {
		resp.Cells = append(resp.Cells, CellInfo{
			X:        local.X,
			Y:        local.Y,
			Type:     b.ID.String(),
			Health:   b.CurrentHealth,
			Progress: b.Progress(),
		})
	})

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Чанк " + coords.Key(),
		Data:    resp,
	})
}

// DistributionResponse – распределение типов по области и сравнение с целями
type DistributionResponse struct {
	Total      int                 `json:"total"`
	Percentage map[string]float64  `json:"percentage"`
	Deviations []terrain.Deviation `json:"deviations"`
}

func (s *InspectorServer) handleDistribution(c *gin.Context) {
	x, y, w, h := 0, 0, 100, 100
	if err := parseInts(c, map[string]*int{"x": &x, "y": &y, "w": &w, "h": &h}); err != nil {
		badRequest(c, err.Error())
		return
	}
	if w <= 0 || h <= 0 || w > MaxDistributionSide || h > MaxDistributionSide {
		badRequest(c, fmt.Sprintf("размер области должен быть в (0, %d]", MaxDistributionSide))
		return
	}

	// Генератор не хранит состояния, блокировка не нужна
	dist := terrain.Analyze(s.generator, x, y, w, h)

	percentage := make(map[string]float64, len(dist.Counts))
	for id, p := range dist.Percentages() {
		percentage[id.String()] = p
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Распределение блоков",
		Data: DistributionResponse{
			Total:      dist.Total,
			Percentage: percentage,
			Deviations: terrain.Compare(s.generator.Config(), dist),
		},
	})
}

func (s *InspectorServer) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Конфигурация генерации",
		Data:    s.generator.Config().Summary(),
	})
}

func (s *InspectorServer) handleServerInfo(c *gin.Context) {
	cpuPercent, err := s.metrics.GetCPUUsage()
	if err != nil {
		logging.Debug("Не удалось получить загрузку CPU: %v", err)
	}

	s.mu.Lock()
	chunks := s.store.Len()
	s.mu.Unlock()

	info := map[string]interface{}{
		"name":        "minecraft2d inspector",
		"status":      "running",
		"seed":        s.generator.Seed(),
		"chunks":      chunks,
		"uptime":      s.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.1f", s.metrics.GetMemoryUsage()),
		"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
		"memory":      s.metrics.GetDetailedMemoryStats(),
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

func parseInts(c *gin.Context, params map[string]*int) error {
	for name, dst := range params {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("параметр %s должен быть целым: %q", name, raw)
		}
		if outOfRange(v, MaxCoordinate) {
			return fmt.Errorf("параметр %s по модулю не больше %d: %d", name, MaxCoordinate, v)
		}
		*dst = v
	}
	return nil
}

func outOfRange(v, limit int) bool {
	return v > limit || v < -limit
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, GenericResponse{
		Success: false,
		Message: message,
	})
}
