package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	// --- Importaciones del dominio y compartidas ---
	catalogDomain "github.com/davicafu/hexashop/internal/catalog/domain"
	sharedDomain "github.com/davicafu/hexashop/internal/shared/domain"
	sharedQuery "github.com/davicafu/hexashop/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/hexashop/internal/shared/infra/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ProductRepoMongoDB implementa ProductRepository sobre la colección "products".
type ProductRepoMongoDB struct {
	coll *mongo.Collection
}

var _ catalogDomain.ProductRepository = (*ProductRepoMongoDB)(nil)

// NewProductRepoMongoDB comprueba la conexión antes de devolver el repositorio.
func NewProductRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*ProductRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &ProductRepoMongoDB{coll: client.Database(dbName).Collection("products")}, nil
}

// EnsureIndexes crea los índices usados por el listado (filtro por categoría, orden por precio).
func (r *ProductRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoProduct struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Code        string    `bson:"code"`
	Price       float64   `bson:"price"`
	Stock       int       `bson:"stock"`
	Category    string    `bson:"category"`
	Status      bool      `bson:"status"`
	Thumbnail   string    `bson:"thumbnails"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// --- Escritura ---

func (r *ProductRepoMongoDB) Create(ctx context.Context, p *catalogDomain.Product) error {
	if _, err := r.coll.InsertOne(ctx, toMongoProduct(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalogDomain.ErrProductAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProductRepoMongoDB) Update(ctx context.Context, p *catalogDomain.Product) error {
	mp := toMongoProduct(p)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": mp.ID}, mp)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return catalogDomain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalogDomain.ErrProductNotFound
	}
	return nil
}

// --- Lectura ---

func (r *ProductRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Product, error) {
	var mp mongoProduct
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogDomain.ErrProductNotFound
		}
		return nil, err
	}
	return fromMongoProduct(&mp)
}

func (r *ProductRepoMongoDB) Count(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	return r.coll.CountDocuments(ctx, criteriaToMongoFilter(criteria))
}

func (r *ProductRepoMongoDB) Find(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*catalogDomain.Product, error) {
	opts := findOptions(page, sort)

	cursor, err := r.coll.Find(ctx, criteriaToMongoFilter(criteria), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []*catalogDomain.Product{}
	for cursor.Next(ctx) {
		var mp mongoProduct
		if err := cursor.Decode(&mp); err != nil {
			return nil, err
		}
		p, err := fromMongoProduct(&mp)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, cursor.Err()
}

func findOptions(page sharedQuery.OffsetPagination, sort sharedQuery.Sort) *options.FindOptions {
	opts := options.Find()

	// Paginación
	if !page.Unbounded() {
		opts.SetSkip(int64(page.Offset))
		opts.SetLimit(int64(page.Limit))
	}

	// Ordenamiento; sin campo se respeta el orden natural de la colección
	if !sort.IsZero() {
		opts.SetSort(bson.D{{Key: sort.Field, Value: sharedUtils.Ternary(sort.Desc, -1, 1)}})
	}
	return opts
}

// --- Helpers de Mapeo y Conversión ---

func toMongoProduct(p *catalogDomain.Product) *mongoProduct {
	return &mongoProduct{
		ID: p.ID.String(), Title: p.Title, Description: p.Description, Code: p.Code,
		Price: p.Price, Stock: p.Stock, Category: p.Category, Status: p.Status,
		Thumbnail: p.Thumbnail, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func fromMongoProduct(mp *mongoProduct) (*catalogDomain.Product, error) {
	id, err := uuid.Parse(mp.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", mp.ID, err)
	}
	return &catalogDomain.Product{
		ID: id, Title: mp.Title, Description: mp.Description, Code: mp.Code,
		Price: mp.Price, Stock: mp.Stock, Category: mp.Category, Status: mp.Status,
		Thumbnail: mp.Thumbnail, CreatedAt: mp.CreatedAt, UpdatedAt: mp.UpdatedAt,
	}, nil
}

// criteriaToMongoFilter recorre el árbol: hojas -> {campo: {op: valor}}, nodos -> $and / $or.
func criteriaToMongoFilter(criteria sharedDomain.Criteria) bson.D {
	leaf := func(c sharedDomain.Criterion) bson.D {
		// Mapeo de operadores genéricos a operadores de MongoDB
		switch c.Op {
		case sharedDomain.OpContains:
			return bson.D{{Key: c.Field, Value: bson.M{"$regex": regexp.QuoteMeta(fmt.Sprint(c.Value)), "$options": "i"}}}
		case sharedDomain.OpGt:
			return bson.D{{Key: c.Field, Value: bson.M{"$gt": c.Value}}}
		case sharedDomain.OpGte:
			return bson.D{{Key: c.Field, Value: bson.M{"$gte": c.Value}}}
		case sharedDomain.OpLt:
			return bson.D{{Key: c.Field, Value: bson.M{"$lt": c.Value}}}
		case sharedDomain.OpLte:
			return bson.D{{Key: c.Field, Value: bson.M{"$lte": c.Value}}}
		default:
			return bson.D{{Key: c.Field, Value: bson.M{"$eq": c.Value}}}
		}
	}
	combine := func(op sharedDomain.LogicalOperator, parts []bson.D) bson.D {
		arr := make(bson.A, 0, len(parts))
		for _, p := range parts {
			arr = append(arr, p)
		}
		return bson.D{{Key: sharedUtils.Ternary(op == sharedDomain.OpOr, "$or", "$and"), Value: arr}}
	}

	filter, ok := sharedDomain.Fold(criteria, leaf, combine)
	if !ok {
		return bson.D{}
	}
	return filter
}
