package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sexystyle/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPlanRepository implements domain.PlanRepository
type MongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new catalog repository
func NewMongoPlanRepository(db *mongo.Database) *MongoPlanRepository {
	return &MongoPlanRepository{
		collection: db.Collection("plans"),
	}
}

// Upsert writes the plan by its supplier package code, replacing any earlier
// snapshot of the same plan. Retail price is stored only alongside the
// wholesale price it was derived from.
func (r *MongoPlanRepository) Upsert(ctx context.Context, plan *domain.Plan) error {
	now := time.Now().UTC()
	plan.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"name":            plan.Name,
			"data":            plan.Data,
			"validity":        plan.Validity,
			"wholesale_price": plan.WholesalePrice,
			"retail_price":    plan.RetailPrice,
			"locations":       plan.Locations,
			"description":     plan.Description,
			"features":        plan.Features,
			"updated_at":      plan.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}
	return nil
}

func (r *MongoPlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	var plan domain.Plan
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}

// List returns plans covering the given location code, or the whole catalog
// when location is empty. Ordered by retail price ascending.
func (r *MongoPlanRepository) List(ctx context.Context, location string) ([]*domain.Plan, error) {
	filter := bson.M{}
	if location != "" {
		filter["locations"] = location
	}

	opts := options.Find().SetSort(bson.D{{Key: "retail_price", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []*domain.Plan
	for cursor.Next(ctx) {
		var plan domain.Plan
		if err := cursor.Decode(&plan); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}
	return plans, nil
}
