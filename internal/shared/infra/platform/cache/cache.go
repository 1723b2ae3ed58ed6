package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Cache es el puerto clave-valor del catálogo (Redis o memoria).
type Cache interface {
	// Get rellena dest (puntero) y devuelve true en un hit; un miss es (false, nil).
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set guarda val serializado durante ttlSecs segundos.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error
	Delete(ctx context.Context, key string) error
}

const asyncTimeout = 200 * time.Millisecond

// AsyncCacheSet escribe en caché sin bloquear la petición. Usa su propio contexto
// porque el de la petición suele estar cancelado cuando la goroutine corre.
func AsyncCacheSet(cache Cache, key string, value interface{}, ttl int, log *zap.Logger) {
	runAsync(cache, key, "set", log, func(ctx context.Context) error {
		return cache.Set(ctx, key, value, ttl)
	})
}

// AsyncCacheDelete invalida una clave en segundo plano.
func AsyncCacheDelete(cache Cache, key string, log *zap.Logger) {
	runAsync(cache, key, "delete", log, func(ctx context.Context) error {
		return cache.Delete(ctx, key)
	})
}

func runAsync(cache Cache, key, op string, log *zap.Logger, fn func(ctx context.Context) error) {
	if cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Warn("Cache operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
		}
	}()
}
