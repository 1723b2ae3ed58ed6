package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	cartDomain "github.com/davicafu/hexashop/internal/cart/domain"
	cartMongo "github.com/davicafu/hexashop/internal/cart/infra/outbound/db/mongodb"
	cartFile "github.com/davicafu/hexashop/internal/cart/infra/outbound/filesystem"
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	productMongo "github.com/davicafu/hexashop/internal/catalog/infra/outbound/db/mongodb"
	productPostgres "github.com/davicafu/hexashop/internal/catalog/infra/outbound/db/postgre"
	productSQLite "github.com/davicafu/hexashop/internal/catalog/infra/outbound/db/sqlite"
	productFile "github.com/davicafu/hexashop/internal/catalog/infra/outbound/filesystem"
	"github.com/davicafu/hexashop/internal/config"
)

const connectTimeout = 10 * time.Second

// stores agrupa los repositorios elegidos por configuración y lo necesario para cerrarlos.
type stores struct {
	products catalogDomain.ProductRepository
	carts    cartDomain.CartRepository
	closers  []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores conecta sólo los backends que CATALOG_STORE y CART_STORE necesitan.
// withCarts=false evita abrir el almacén de carritos en los comandos de mantenimiento.
func openStores(ctx context.Context, cfg *config.Config, withCarts bool, log *zap.Logger) (*stores, error) {
	s := &stores{}

	var mongoClient *mongo.Client
	needMongo := cfg.CatalogStore == config.StoreMongo || (withCarts && cfg.CartStore == config.StoreMongo)
	if needMongo {
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		mongoClient = client
		s.closers = append(s.closers, func() {
			dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer dcancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Warn("Mongo disconnect failed", zap.Error(err))
			}
		})
	}

	products, err := openProductStore(ctx, cfg, mongoClient, s, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.products = products
	log.Info("Product store ready", zap.String("store", cfg.CatalogStore))

	if withCarts {
		switch cfg.CartStore {
		case config.StoreFile:
			s.carts = cartFile.NewJSONCartStorage(filepath.Join(cfg.DataDir, "carts.json"))
		default:
			cctx, cancel := context.WithTimeout(ctx, connectTimeout)
			defer cancel()
			repo, err := cartMongo.NewCartRepoMongoDB(cctx, mongoClient, cfg.MongoDB)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.carts = repo
		}
		log.Info("Cart store ready", zap.String("store", cfg.CartStore))
	}
	return s, nil
}

func openProductStore(ctx context.Context, cfg *config.Config, client *mongo.Client, s *stores, log *zap.Logger) (catalogDomain.ProductRepository, error) {
	switch cfg.CatalogStore {
	case config.StoreSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		if err := productSQLite.InitSQLite(db); err != nil {
			return nil, err
		}
		return productSQLite.NewProductRepoSQLite(db), nil

	case config.StorePostgres:
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := productPostgres.InitPostgresProductSchema(db); err != nil {
			return nil, err
		}
		return productPostgres.NewProductRepoPostgres(db), nil

	case config.StoreFile:
		return productFile.NewJSONProductStorage(filepath.Join(cfg.DataDir, "products.json")), nil

	default:
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		repo, err := productMongo.NewProductRepoMongoDB(cctx, client, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureIndexes(cctx); err != nil {
			log.Warn("Could not create product indexes", zap.Error(err))
		}
		return repo, nil
	}
}
