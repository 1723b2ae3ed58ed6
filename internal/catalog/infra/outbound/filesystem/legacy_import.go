package filesystem

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
)

// legacyNamespace fija el ID de los productos importados a partir de su código,
// así una segunda importación del mismo fichero no duplica nada.
var legacyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("hexashop/legacy-products"))

// legacyProduct es el formato de los ficheros de productos antiguos:
// ids numéricos y thumbnails como texto o como lista.
type legacyProduct struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Code        string          `json:"code"`
	Price       float64         `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Status      *bool           `json:"status"`
	Thumbnails  json.RawMessage `json:"thumbnails"`
}

// LegacyID devuelve el ID estable asignado a un código importado.
func LegacyID(code string) uuid.UUID {
	return uuid.NewSHA1(legacyNamespace, []byte(code))
}

// ReadLegacyProducts lee un fichero de productos antiguo. Las entradas inválidas
// no abortan la lectura: se devuelven aparte en rejected.
func ReadLegacyProducts(path string) (products []*catalogDomain.Product, rejected []error, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var raw []legacyProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}

	products = make([]*catalogDomain.Product, 0, len(raw))
	for i, lp := range raw {
		status := true
		if lp.Status != nil {
			status = *lp.Status
		}
		p, err := catalogDomain.NewProduct(lp.Title, lp.Description, lp.Code, lp.Price, lp.Stock, lp.Category, status, firstThumbnail(lp.Thumbnails))
		if err != nil {
			rejected = append(rejected, fmt.Errorf("entry %d (%q): %w", i, lp.Code, err))
			continue
		}
		p.ID = LegacyID(p.Code)
		products = append(products, p)
	}
	return products, rejected, nil
}

func firstThumbnail(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
