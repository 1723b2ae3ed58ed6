package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	cartDomain "github.com/davicafu/hexashop/internal/cart/domain"
)

// CartRepoMongoDB implementa CartRepository sobre la colección "carts".
type CartRepoMongoDB struct {
	coll *mongo.Collection
}

var _ cartDomain.CartRepository = (*CartRepoMongoDB)(nil)

func NewCartRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*CartRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &CartRepoMongoDB{coll: client.Database(dbName).Collection("carts")}, nil
}

type mongoCartItem struct {
	Product  string `bson:"product"`
	Quantity int    `bson:"quantity"`
}

type mongoCart struct {
	ID        string          `bson:"_id"`
	Products  []mongoCartItem `bson:"products"`
	CreatedAt time.Time       `bson:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

func (r *CartRepoMongoDB) Create(ctx context.Context, c *cartDomain.Cart) error {
	_, err := r.coll.InsertOne(ctx, toMongoCart(c))
	return err
}

func (r *CartRepoMongoDB) Update(ctx context.Context, c *cartDomain.Cart) error {
	mc := toMongoCart(c)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": mc.ID}, bson.M{"$set": bson.M{
		"products":  mc.Products,
		"updatedAt": mc.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return cartDomain.ErrCartNotFound
	}
	return nil
}

func (r *CartRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*cartDomain.Cart, error) {
	var mc mongoCart
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cartDomain.ErrCartNotFound
		}
		return nil, err
	}
	return fromMongoCart(&mc)
}

// List devuelve los carritos del más antiguo al más reciente.
func (r *CartRepoMongoDB) List(ctx context.Context) ([]*cartDomain.Cart, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	carts := []*cartDomain.Cart{}
	for cursor.Next(ctx) {
		var mc mongoCart
		if err := cursor.Decode(&mc); err != nil {
			return nil, err
		}
		c, err := fromMongoCart(&mc)
		if err != nil {
			return nil, err
		}
		carts = append(carts, c)
	}
	return carts, cursor.Err()
}

// --- Mapeo ---

func toMongoCart(c *cartDomain.Cart) *mongoCart {
	items := make([]mongoCartItem, 0, len(c.Products))
	for _, it := range c.Products {
		items = append(items, mongoCartItem{Product: it.ProductID.String(), Quantity: it.Quantity})
	}
	return &mongoCart{ID: c.ID.String(), Products: items, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func fromMongoCart(mc *mongoCart) (*cartDomain.Cart, error) {
	id, err := uuid.Parse(mc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart id %q: %w", mc.ID, err)
	}
	items := make([]cartDomain.CartItem, 0, len(mc.Products))
	for _, it := range mc.Products {
		pid, err := uuid.Parse(it.Product)
		if err != nil {
			return nil, fmt.Errorf("cart %s: invalid product id %q: %w", mc.ID, it.Product, err)
		}
		items = append(items, cartDomain.CartItem{ProductID: pid, Quantity: it.Quantity})
	}
	return &cartDomain.Cart{ID: id, Products: items, CreatedAt: mc.CreatedAt, UpdatedAt: mc.UpdatedAt}, nil
}
