package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	cartserrors "billboards/internal/carts/errors"
	"billboards/pkg/config"
	mongotx "billboards/pkg/db/mongo"
	"billboards/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Carts"
)

type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	FindByID(ctx context.Context, id string) (*model.Cart, error)
	FindBySession(ctx context.Context, sessionID string) ([]*model.Cart, error)
	Update(ctx context.Context, cart *model.Cart) error
	// LinkBooking marks the cart as checked out. It fails with ErrCheckedOut
	// when the cart already references a booking.
	LinkBooking(ctx context.Context, cartID string, bookingID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoCartRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoCartRepository(cfg *config.Config) CartRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCartRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCartRepository) Create(ctx context.Context, cart *model.Cart) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	cart.CreatedAt = now
	cart.UpdatedAt = now
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}

	result, err := r.collection.InsertOne(ctx, cart)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		cart.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCartRepository) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", cartserrors.ErrInvalidID, id)
	}

	var cart model.Cart
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cartserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	// stored aggregates are never trusted
	cart.Recompute()
	return &cart, nil
}

func (r *mongoCartRepository) FindBySession(ctx context.Context, sessionID string) ([]*model.Cart, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}).SetLimit(config.DefaultPaginationLimit)
	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find carts: %w", err)
	}
	defer cursor.Close(ctx)

	var carts []*model.Cart
	if err = cursor.All(ctx, &carts); err != nil {
		return nil, fmt.Errorf("failed to decode carts: %w", err)
	}
	for _, c := range carts {
		c.Recompute()
	}
	return carts, nil
}

func (r *mongoCartRepository) Update(ctx context.Context, cart *model.Cart) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(cart.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", cartserrors.ErrInvalidID, cart.ID)
	}

	cart.Recompute()
	cart.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	// a checked out cart is frozen
	filter := bson.M{"_id": objectID, "booking_id": bson.M{"$exists": false}}
	update := bson.M{
		"$set": bson.M{
			"items":       cart.Items,
			"total":       cart.Total,
			"item_count":  cart.ItemCount,
			"campaign_id": cart.CampaignID,
			"updated_at":  cart.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrFrozen(ctx, objectID)
	}
	return nil
}

func (r *mongoCartRepository) LinkBooking(ctx context.Context, cartID string, bookingID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return fmt.Errorf("%w: %s", cartserrors.ErrInvalidID, cartID)
	}

	filter := bson.M{"_id": objectID, "booking_id": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{
		"booking_id": bookingID,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to link booking to cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrFrozen(ctx, objectID)
	}
	return nil
}

func (r *mongoCartRepository) missOrFrozen(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check cart existence: %w", err)
	}
	if n == 0 {
		return cartserrors.ErrNotFound
	}
	return cartserrors.ErrCheckedOut
}

func (r *mongoCartRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
