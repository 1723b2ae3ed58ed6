package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	cartApp "github.com/davicafu/hexashop/internal/cart/application"
	cartHttp "github.com/davicafu/hexashop/internal/cart/infra/inbound/http"
	catalogApp "github.com/davicafu/hexashop/internal/catalog/application"
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	catalogEvents "github.com/davicafu/hexashop/internal/catalog/infra/inbound/events"
	catalogHttp "github.com/davicafu/hexashop/internal/catalog/infra/inbound/http"
	chAnalytics "github.com/davicafu/hexashop/internal/catalog/infra/outbound/analytics/clickhouse"
	"github.com/davicafu/hexashop/internal/config"
	sharedEvents "github.com/davicafu/hexashop/internal/shared/infra/events"
	"github.com/davicafu/hexashop/internal/shared/infra/metrics"
	sharedBus "github.com/davicafu/hexashop/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/hexashop/internal/shared/infra/platform/cache"
	"github.com/davicafu/hexashop/internal/shared/infra/relayer"
	"github.com/davicafu/hexashop/internal/web"
	"github.com/davicafu/hexashop/pkg/logger"
)

// ---------------- serve ----------------
func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("hexashop")

	// ---------------- DB ----------------
	st, err := openStores(ctx, cfg, true, log)
	if err != nil {
		return err
	}
	defer st.Close()

	// ---------------- Cache ----------------
	cache, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	// ---------------- Events ---------------
	live := sharedEvents.NewInMemoryEventBus(catalogDomain.LiveTopic)
	live.OnDrop(m.ObserveLiveDrop)

	events, local, closeEvents := openIntegrationBus(cfg, log)
	defer closeEvents()

	// --------------- Servicios --------------
	query := catalogApp.NewCatalogQuery(st.products, log)
	productService := catalogApp.NewProductService(st.products, cache, live, events, log).WithMetrics(m)
	cartService := cartApp.NewCartService(st.carts, productService, live, events, log).WithMetrics(m)

	// ---------------- HTTP ----------------
	router, err := newRouter(cfg, m)
	if err != nil {
		return err
	}

	uploadDir := filepath.Join(cfg.PublicDir, "img")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	router.Static("/static/img", uploadDir)

	productHandler := catalogHttp.NewProductHandler(query, productService, live, m, uploadDir, cfg.LiveBufferSize, log)
	catalogHttp.RegisterProductRoutes(router, productHandler)
	cartHttp.RegisterCartRoutes(router, cartHttp.NewCartHandler(cartService, log))

	g, gctx := errgroup.WithContext(ctx)

	// ------------ Analítica (opcional) ------------
	if cfg.AnalyticsEnabled() {
		if repo, ok := openAnalytics(gctx, cfg, log); ok {
			defer repo.Close()
			worker := relayer.NewBatchWorker[catalogDomain.CatalogEventRecord](repo, cfg.AnalyticsFlush, cfg.AnalyticsBatch, log)
			g.Go(func() error {
				worker.Start(gctx)
				return nil
			})
			startAnalyticsConsumer(gctx, cfg, local, catalogEvents.NewAnalyticsConsumer(worker, log), log)
			catalogHttp.RegisterAnalyticsRoutes(router, catalogHttp.NewAnalyticsHandler(repo, log))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Las peticiones heredan ctx: al apagar se cortan los streams SSE abiertos.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		return err
	}
	log.Info("Server stopped")
	return nil
}

func newRouter(cfg *config.Config, m *metrics.Metrics) (*gin.Engine, error) {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), m.Middleware())
	if cfg.AppEnv != "production" {
		router.Use(gin.Logger())
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static/js", web.Static())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, web.ViewNotFound, gin.H{"title": "Página no encontrada"})
	})
	return router, nil
}

// openCache usa Redis si responde; si no, cae a la caché en memoria.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (sharedCache.Cache, func()) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		_ = rdb.Close()
		mem := sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		return mem, mem.Stop
	}
	log.Info("✅ Redis conectado, cache habilitado", zap.String("addr", cfg.RedisAddr))
	return sharedCache.NewRedisCache(rdb, "hexashop:", cfg.CacheTTL), func() { _ = rdb.Close() }
}

// openIntegrationBus devuelve el bus de eventos de integración. local sólo existe
// sin Kafka y es de donde leen los consumidores en proceso.
func openIntegrationBus(cfg *config.Config, log *zap.Logger) (sharedBus.EventBus, *sharedEvents.InMemoryEventBus, func()) {
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.Hash{},
		})
		return sharedEvents.NewKafkaPublisher(writer, log), nil, func() {
			if err := writer.Close(); err != nil {
				log.Warn("Kafka writer close failed", zap.Error(err))
			}
		}
	}

	log.Info("⚡️ Usando bus de eventos en memoria")
	local := sharedEvents.NewInMemoryEventBus(catalogDomain.CatalogTopic)
	return local, local, func() {}
}

func openAnalytics(ctx context.Context, cfg *config.Config, log *zap.Logger) (*chAnalytics.CatalogAnalyticsRepo, bool) {
	repo, err := chAnalytics.NewCatalogAnalyticsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
	if err != nil {
		log.Warn("ClickHouse no disponible, analítica desactivada", zap.Error(err))
		return nil, false
	}
	if err := repo.InitSchema(ctx); err != nil {
		log.Warn("No se pudo crear el esquema de analítica", zap.Error(err))
		_ = repo.Close()
		return nil, false
	}
	log.Info("📊 Analítica en ClickHouse habilitada", zap.String("addr", cfg.ClickHouseAddr))
	return repo, true
}

func startAnalyticsConsumer(ctx context.Context, cfg *config.Config, local *sharedEvents.InMemoryEventBus, consumer *catalogEvents.AnalyticsConsumer, log *zap.Logger) {
	if cfg.UseKafka {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			GroupID:  cfg.KafkaGroup,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		sharedEvents.NewConsumerAdapter(reader, consumer, log).Start(ctx)
		return
	}
	log.Info("🎧 Iniciando listener en memoria para analítica")
	sharedEvents.ConsumeChannel(ctx, local.Subscribe(cfg.AnalyticsBatch*2), consumer, log)
}
