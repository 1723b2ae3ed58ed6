package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	catalogApp "github.com/davicafu/hexashop/internal/catalog/application"
	productFile "github.com/davicafu/hexashop/internal/catalog/infra/outbound/filesystem"
	"github.com/davicafu/hexashop/internal/config"
	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
	"github.com/davicafu/hexashop/pkg/logger"
)

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(logger.Options{Level: cfg.LogLevel, FilePath: cfg.LogFile}); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger.Logger(), nil
}

// runCheckProducts vuelca por stdout todos los productos del almacén configurado.
func runCheckProducts(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := openStores(cmd.Context(), cfg, false, log)
	if err != nil {
		return err
	}
	defer st.Close()

	products, err := st.products.Find(cmd.Context(), sharedDomain.MatchAll(), sharedQuery.OffsetPagination{}, sharedQuery.Sort{})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total de productos encontrados: %d\n", len(products))
	for i, p := range products {
		fmt.Fprintf(out, "\n--- Producto %d ---\n", i+1)
		fmt.Fprintf(out, "ID: %s\nTítulo: %s\nDescripción: %s\nCódigo: %s\nPrecio: %.2f\nStock: %d\nCategoría: %s\nEstado: %t\nImagen: %s\n",
			p.ID, p.Title, p.Description, p.Code, p.Price, p.Stock, p.Category, p.Status, p.Thumbnail)
	}
	return nil
}

// runImportJSON carga un fichero de productos antiguo en el almacén configurado.
func runImportJSON(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	products, rejected, err := productFile.ReadLegacyProducts(args[0])
	if err != nil {
		return err
	}
	for _, r := range rejected {
		log.Warn("Entrada descartada", zap.Error(r))
	}

	st, err := openStores(cmd.Context(), cfg, false, log)
	if err != nil {
		return err
	}
	defer st.Close()

	added, err := catalogApp.ImportProducts(cmd.Context(), st.products, products)
	if err != nil {
		return err
	}
	log.Info("Importación terminada",
		zap.String("file", args[0]),
		zap.Int("read", len(products)),
		zap.Int("added", added),
		zap.Int("rejected", len(rejected)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%d productos importados (%d ya existían, %d descartados)\n", added, len(products)-added, len(rejected))
	return nil
}
