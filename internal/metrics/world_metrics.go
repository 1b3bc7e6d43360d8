package metrics

import (
	"time"

	"github.com/annel0/minecraft2d/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
)

// WorldMetrics инкапсулирует Prometheus-метрики мира и игрока.
// Реализует world.StoreObserver и player.Observer.
//
// Метрики:
// * chunks_generated_total: counter
// * chunk_generation_seconds: histogram
// * blocks_replaced_total{type}: counter
// * blocks_mined_total{type}: counter
// * blocks_placed_total{type}: counter
type WorldMetrics struct {
	chunksGenerated   prometheus.Counter
	generationSeconds prometheus.Histogram
	blocksReplaced    *prometheus.CounterVec
	blocksMined       *prometheus.CounterVec
	blocksPlaced      *prometheus.CounterVec
}

// NewWorldMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется дефолтный регистр.
func NewWorldMetrics(namespace string, reg prometheus.Registerer) *WorldMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &WorldMetrics{
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_generated_total",
			Help:      "Общее число сгенерированных чанков.",
		}),
		generationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_generation_seconds",
			Help:      "Длительность генерации одного чанка.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		blocksReplaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_replaced_total",
			Help:      "Замены блоков в хранилище по новому типу.",
		}, []string{"type"}),
		blocksMined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_mined_total",
			Help:      "Добытые игроком блоки по типу.",
		}, []string{"type"}),
		blocksPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_placed_total",
			Help:      "Установленные игроком блоки по типу.",
		}, []string{"type"}),
	}

	reg.MustRegister(m.chunksGenerated, m.generationSeconds, m.blocksReplaced, m.blocksMined, m.blocksPlaced)
	return m
}

// ChunkGenerated учитывает новый чанк
func (m *WorldMetrics) ChunkGenerated(elapsed time.Duration) {
	m.chunksGenerated.Inc()
	m.generationSeconds.Observe(elapsed.Seconds())
}

// BlockReplaced учитывает замену блока
func (m *WorldMetrics) BlockReplaced(id block.BlockID) {
	m.blocksReplaced.WithLabelValues(id.String()).Inc()
}

// BlockMined учитывает добытый блок
func (m *WorldMetrics) BlockMined(id block.BlockID) {
	m.blocksMined.WithLabelValues(id.String()).Inc()
}

// BlockPlaced учитывает установленный блок
func (m *WorldMetrics) BlockPlaced(id block.BlockID) {
	m.blocksPlaced.WithLabelValues(id.String()).Inc()
}
