package domain

import (
	"context"
	"time"
)

// AddResult reports the outcome of adding a plan to a cart. A duplicate add
// is a recoverable outcome for user feedback, not an error.
type AddResult int

const (
	CartAdded AddResult = iota
	CartDuplicate
)

// Cart is a user-owned, insertion-ordered collection of selected plans.
// Membership is unique by plan ID and the total is never stored - it is
// recomputed from the members on every call.
type Cart struct {
	UserID    string    `json:"user_id"`
	Items     []Plan    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCart returns an empty cart for the given user.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID}
}

// Add inserts the plan unless a member already carries its ID. Duplicates
// leave the cart unchanged and report CartDuplicate.
func (c *Cart) Add(plan Plan) AddResult {
	if c.Contains(plan.ID) {
		return CartDuplicate
	}
	c.Items = append(c.Items, plan)
	c.UpdatedAt = time.Now().UTC()
	return CartAdded
}

// Remove drops the member with the given plan ID. Removing an absent ID is a
// no-op; the return value says whether anything changed.
func (c *Cart) Remove(planID string) bool {
	for i, item := range c.Items {
		if item.ID == planID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now().UTC()
}

// Total recomputes the sum of member retail prices. Empty cart totals 0.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.RetailPrice
	}
	return total
}

// Contains reports whether a member carries the given plan ID.
func (c *Cart) Contains(planID string) bool {
	for _, item := range c.Items {
		if item.ID == planID {
			return true
		}
	}
	return false
}

// PlanIDs returns member IDs in insertion order.
func (c *Cart) PlanIDs() []string {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ID
	}
	return ids
}

// IsEmpty reports whether the cart has no members.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep-enough copy for restoring state after a failed
// checkout attempt; members themselves are immutable.
func (c *Cart) Clone() *Cart {
	items := make([]Plan, len(c.Items))
	copy(items, c.Items)
	return &Cart{UserID: c.UserID, Items: items, UpdatedAt: c.UpdatedAt}
}

// CartStore persists carts across sessions. Load returns an empty cart, not
// an error, when the user has none yet.
type CartStore interface {
	Load(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, userID string) error
}
