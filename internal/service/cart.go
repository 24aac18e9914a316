package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/sexystyle/storefront/internal/config"
	"github.com/sexystyle/storefront/internal/domain"
)

// CartService owns the per-user selection of plans and the checkout
// hand-off to the payment collaborator.
//
// Mutations run against the in-memory cart first; a store failure is logged
// and reported nowhere else, so a full Redis outage degrades persistence but
// never blocks the user. Checkout is guarded per user: a second attempt
// while one is in flight is rejected, and the guard is released on every
// path out, including cancellation via ctx.
type CartService struct {
	store    domain.CartStore
	planRepo domain.PlanRepository
	provider domain.PaymentProvider
	orders   domain.OrderRepository
	mode     string // config.CheckoutModeSingle or config.CheckoutModeAll

	inflight sync.Map // userID -> struct{}, the cooperative checkout lock
}

// NewCartService creates a new cart service
func NewCartService(
	store domain.CartStore,
	planRepo domain.PlanRepository,
	provider domain.PaymentProvider,
	orders domain.OrderRepository,
	mode string,
) *CartService {
	return &CartService{
		store:    store,
		planRepo: planRepo,
		provider: provider,
		orders:   orders,
		mode:     mode,
	}
}

// Get loads the user's cart.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.store.Load(ctx, userID)
}

// Add resolves the plan from the catalog and inserts it into the cart.
// A duplicate add leaves the cart unchanged and reports CartDuplicate so the
// caller can notify the user.
func (s *CartService) Add(ctx context.Context, userID, planID string) (domain.AddResult, *domain.Cart, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return 0, nil, err
	}

	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	result := cart.Add(*plan)
	if result == domain.CartAdded {
		s.persist(ctx, cart)
	}
	return result, cart, nil
}

// Remove drops a plan from the cart; removing an absent plan is a no-op.
func (s *CartService) Remove(ctx context.Context, userID, planID string) (*domain.Cart, error) {
	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.Remove(planID) {
		s.persist(ctx, cart)
	}
	return cart, nil
}

// Clear empties the cart and erases its durable representation.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		log.Printf("[Cart] Failed to delete cart for user %s: %v", userID, err)
	}
	return nil
}

// CheckoutResult carries what the client needs to send the user into the
// wallet: the recorded order and the invoice URLs in preference order.
type CheckoutResult struct {
	OrderNo  string               `json:"order_no"`
	Total    float64              `json:"total"`
	Asset    string               `json:"asset"`
	Invoices []domain.InvoiceURLs `json:"invoices"`
}

// Checkout hands the cart to the payment collaborator.
//
// The cart is cleared only after every required invoice was created and the
// order recorded; any earlier failure leaves the cart exactly as it was.
// Depending on the configured mode, either the first member is paid
// ("single") or all members sequentially ("all").
func (s *CartService) Checkout(ctx context.Context, userID, asset string) (*CheckoutResult, error) {
	if !domain.IsSupportedAsset(asset) {
		return nil, fmt.Errorf("%w: unsupported asset %q", domain.ErrInvalidIntent, asset)
	}

	// Cooperative lock: one checkout per user at a time.
	if _, loaded := s.inflight.LoadOrStore(userID, struct{}{}); loaded {
		return nil, domain.ErrCheckoutInProgress
	}
	defer s.inflight.Delete(userID)

	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	items := cart.Items
	if s.mode == config.CheckoutModeSingle {
		items = cart.Items[:1]
	}

	var (
		invoices []domain.InvoiceURLs
		txIDs    []string
		planIDs  []string
		total    float64
	)

	for _, item := range items {
		intent := domain.PaymentIntent{
			TransactionID: ulid.Make().String(),
			PlanID:        item.ID,
			Amount:        item.RetailPrice,
			Asset:         asset,
			Description:   fmt.Sprintf("%s (%s / %s)", item.Name, item.Data, item.Validity),
		}

		urls, err := s.provider.CreateInvoice(ctx, intent)
		if err != nil {
			// Cart stays untouched; earlier invoices of this attempt are
			// orphaned on the provider side and expire there.
			return nil, fmt.Errorf("checkout failed for plan %s: %w", item.ID, err)
		}

		invoices = append(invoices, *urls)
		txIDs = append(txIDs, intent.TransactionID)
		planIDs = append(planIDs, item.ID)
		total += item.RetailPrice
	}

	order := &domain.Order{
		OrderNo:        ulid.Make().String(),
		UserID:         userID,
		PlanIDs:        planIDs,
		TransactionIDs: txIDs,
		Amount:         total,
		Asset:          asset,
		Status:         domain.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	// Success: the order is the durable trace now, the cart goes away.
	if s.mode == config.CheckoutModeSingle && len(cart.Items) > 1 {
		cart.Remove(items[0].ID)
		s.persist(ctx, cart)
	} else {
		if err := s.store.Delete(ctx, userID); err != nil {
			log.Printf("[Cart] Failed to clear cart after checkout for user %s: %v", userID, err)
		}
	}

	return &CheckoutResult{
		OrderNo:  order.OrderNo,
		Total:    total,
		Asset:    asset,
		Invoices: invoices,
	}, nil
}

// persist saves the cart, logging instead of failing - storage trouble must
// not undo an in-memory mutation the user already saw succeed.
func (s *CartService) persist(ctx context.Context, cart *domain.Cart) {
	if err := s.store.Save(ctx, cart); err != nil {
		log.Printf("[Cart] Failed to persist cart for user %s: %v", cart.UserID, err)
	}
}
