package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "hexashop",
		Short:         "Catálogo, carritos y productos en tiempo real",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe, // sin subcomando se levanta el servidor
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Levanta el servidor HTTP",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "check-products",
			Short: "Lista todos los productos guardados en el almacén configurado",
			RunE:  runCheckProducts,
		},
		&cobra.Command{
			Use:   "import-json <file>",
			Short: "Importa un fichero JSON de productos al almacén configurado",
			Args:  cobra.ExactArgs(1),
			RunE:  runImportJSON,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
