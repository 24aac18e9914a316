package domain

import (
	"context"
	"time"
)

// Plan represents one purchasable eSIM data offer.
//
// RetailPrice is always derived from WholesalePrice through the markup table;
// it is recomputed whenever the wholesale price is set and must never be
// written independently.
type Plan struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Name           string    `bson:"name,omitempty" json:"name"`
	Data           string    `bson:"data,omitempty" json:"data"`         // human readable, e.g. "5 GB"
	Validity       string    `bson:"validity,omitempty" json:"validity"` // human readable, e.g. "30 days"
	WholesalePrice float64   `bson:"wholesale_price,omitempty" json:"-"` // major units (dollars), supplier cost
	RetailPrice    float64   `bson:"retail_price,omitempty" json:"price"`
	Locations      []string  `bson:"locations,omitempty" json:"locations"` // ISO alpha-2 codes
	Description    string    `bson:"description,omitempty" json:"description"`
	Features       []string  `bson:"features,omitempty" json:"features"`
	CreatedAt      time.Time `bson:"created_at,omitempty" json:"-"`
	UpdatedAt      time.Time `bson:"updated_at,omitempty" json:"-"`
}

// NewPlan builds a priced plan from supplier data. The wholesale price is in
// major units; the retail price is derived here and nowhere else.
func NewPlan(id, name, data, validity string, wholesale float64, locations []string, description string, features []string) Plan {
	return Plan{
		ID:             id,
		Name:           name,
		Data:           data,
		Validity:       validity,
		WholesalePrice: wholesale,
		RetailPrice:    RetailPrice(wholesale),
		Locations:      locations,
		Description:    description,
		Features:       features,
	}
}

// Reprice re-derives the retail price from the current wholesale price.
// Used after markup-table changes (see cmd/recalculate_prices).
func (p *Plan) Reprice() {
	p.RetailPrice = RetailPrice(p.WholesalePrice)
}

// PlanRepository defines catalog storage operations.
type PlanRepository interface {
	Upsert(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context, location string) ([]*Plan, error) // empty location = all plans
}
