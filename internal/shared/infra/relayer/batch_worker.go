package relayer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sink recibe lotes de registros (ej. analítica en ClickHouse).
type Sink[T any] interface {
	LogBatch(ctx context.Context, records []T) error
}

// BatchWorker acumula registros y los vuelca al Sink por tamaño o por intervalo.
// Si el Sink falla el lote se descarta: la pérdida de analítica es tolerable.
type BatchWorker[T any] struct {
	in        chan T
	buf       []T
	sink      Sink[T]
	interval  time.Duration
	batchSize int
	log       *zap.Logger
}

func NewBatchWorker[T any](sink Sink[T], interval time.Duration, batchSize int, log *zap.Logger) *BatchWorker[T] {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BatchWorker[T]{
		in:        make(chan T, batchSize*4),
		buf:       make([]T, 0, batchSize),
		sink:      sink,
		interval:  interval,
		batchSize: batchSize,
		log:       log,
	}
}

// Enqueue encola sin bloquear; devuelve false si la cola está llena.
func (w *BatchWorker[T]) Enqueue(rec T) bool {
	select {
	case w.in <- rec:
		return true
	default:
		w.log.Warn("⚠️ Cola de analítica llena, registro descartado")
		return false
	}
}

// Start inicia el bucle del worker. Bloquea hasta que ctx termina.
func (w *BatchWorker[T]) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("🚀 Batch worker iniciado", zap.Duration("interval", w.interval), zap.Int("batch_size", w.batchSize))

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			w.ProcessBatch(flushCtx)
			cancel()
			w.log.Info("🛑 Batch worker detenido.")
			return
		case rec := <-w.in:
			w.buf = append(w.buf, rec)
			if len(w.buf) >= w.batchSize {
				w.flush(ctx)
			}
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch vacía lo encolado y lo envía al Sink.
// No debe llamarse en paralelo con Start.
func (w *BatchWorker[T]) ProcessBatch(ctx context.Context) {
drain:
	for {
		select {
		case rec := <-w.in:
			w.buf = append(w.buf, rec)
			if len(w.buf) >= w.batchSize {
				w.flush(ctx)
			}
		default:
			break drain
		}
	}
	w.flush(ctx)
}

func (w *BatchWorker[T]) flush(ctx context.Context) {
	if len(w.buf) == 0 {
		return
	}
	batch := make([]T, len(w.buf))
	copy(batch, w.buf)
	w.buf = w.buf[:0]

	if err := w.sink.LogBatch(ctx, batch); err != nil {
		w.log.Warn("⚠️ No se pudo volcar el lote", zap.Int("records", len(batch)), zap.Error(err))
		return
	}
	w.log.Debug("✅ Lote volcado", zap.Int("records", len(batch)))
}
