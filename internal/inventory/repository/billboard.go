package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	inventoryerrors "billboards/internal/inventory/errors"
	"billboards/pkg/config"
	mongotx "billboards/pkg/db/mongo"
	"billboards/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Billboards"
)

type BillboardRepository interface {
	Create(ctx context.Context, b *model.Billboard) error
	FindByID(ctx context.Context, id string) (*model.Billboard, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Billboard, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, cities []string, kind model.BillboardKind, limit int) ([]*model.Billboard, error)
	// CompareAndSwap writes b only if the stored version still equals
	// expectedVersion. On success b.Version is advanced.
	CompareAndSwap(ctx context.Context, b *model.Billboard, expectedVersion int64) error
}

type mongoBillboardRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBillboardRepository(cfg *config.Config) BillboardRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBillboardRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBillboardRepository) Create(ctx context.Context, b *model.Billboard) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	b.CreatedAt = now
	b.UpdatedAt = now
	b.Version = 1

	result, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		return fmt.Errorf("failed to create billboard: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBillboardRepository) FindByID(ctx context.Context, id string) (*model.Billboard, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidID, id)
	}

	var b model.Billboard
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, inventoryerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find billboard: %w", err)
	}

	return &b, nil
}

func (r *mongoBillboardRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Billboard, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find billboards: %w", err)
	}
	defer cursor.Close(ctx)

	var billboards []*model.Billboard
	if err = cursor.All(ctx, &billboards); err != nil {
		return nil, fmt.Errorf("failed to decode billboards: %w", err)
	}

	return billboards, nil
}

func (r *mongoBillboardRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count billboards: %w", err)
	}
	return count, nil
}

// Search matches any of cities, case-insensitively. No cities means any city.
func (r *mongoBillboardRepository) Search(ctx context.Context, cities []string, kind model.BillboardKind, limit int) ([]*model.Billboard, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	patterns := make([]primitive.Regex, 0, len(cities))
	for _, city := range cities {
		if city = strings.TrimSpace(city); city != "" {
			patterns = append(patterns, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(city) + "$", Options: "i"})
		}
	}
	if len(patterns) > 0 {
		filter["location.city"] = bson.M{"$in": patterns}
	}
	if kind != "" {
		filter["kind"] = kind
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search billboards: %w", err)
	}
	defer cursor.Close(ctx)

	var billboards []*model.Billboard
	if err = cursor.All(ctx, &billboards); err != nil {
		return nil, fmt.Errorf("failed to decode billboards: %w", err)
	}
	return billboards, nil
}

func (r *mongoBillboardRepository) CompareAndSwap(ctx context.Context, b *model.Billboard, expectedVersion int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(b.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidID, b.ID)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"status":     b.Status,
		"version":    expectedVersion + 1,
		"updated_at": now,
	}
	if b.Fixed != nil {
		set["fixed"] = b.Fixed
	}
	if b.Digital != nil {
		set["digital"] = b.Digital
	}

	update := bson.M{"$set": set}
	if b.ManualStatus != nil {
		set["manual_status"] = *b.ManualStatus
	} else {
		update["$unset"] = bson.M{"manual_status": ""}
	}

	filter := bson.M{"_id": objectID, "version": expectedVersion}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update billboard: %w", err)
	}
	if result.MatchedCount == 0 {
		return inventoryerrors.ErrVersionConflict
	}

	b.Version = expectedVersion + 1
	b.UpdatedAt = now
	return nil
}
