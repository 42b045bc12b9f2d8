package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"TakeawayPos/app/database"
	"TakeawayPos/app/models"
)

var (
	// ErrEmptyCart is returned when an operation needs at least one cart line
	ErrEmptyCart = errors.New("cart is empty")

	// ErrUnknownHeldOrder is returned when a held order id is not in the registry
	ErrUnknownHeldOrder = errors.New("held order not found")

	// ErrNoRecallSelection is returned when a merge is requested without an
	// active recalled order
	ErrNoRecallSelection = errors.New("no recalled order selected")
)

// OrderService owns the takeaway order state for one cashier session:
// the cart being edited, the held-order registry, and the recall selection.
// Held orders are mirrored to the local database so they survive restarts.
type OrderService struct {
	mu       sync.Mutex
	cart     []models.CartItem
	held     []models.HeldOrder
	recallID string
	localDB  *database.LocalDB
	taxRate  float64
}

// OrderTotals is the computed money summary for a set of cart lines
type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// NewOrderService creates an order service backed by the given local database.
// taxRatePercent is applied on top of the subtotal (e.g. 5 means 5%).
func NewOrderService(localDB *database.LocalDB, taxRatePercent float64) (*OrderService, error) {
	s := &OrderService{
		cart:    []models.CartItem{},
		held:    []models.HeldOrder{},
		localDB: localDB,
		taxRate: taxRatePercent,
	}

	if localDB != nil {
		held, err := localDB.GetHeldOrders()
		if err != nil {
			return nil, fmt.Errorf("failed to load held orders: %w", err)
		}
		if held != nil {
			s.held = held
		}
	}

	return s, nil
}

// SetTaxRate updates the tax rate applied to new totals
func (s *OrderService) SetTaxRate(percent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxRate = percent
}

// AddItem adds one unit of a product to the cart. If the product is already
// in the cart its quantity goes up by one; otherwise a new line is appended.
func (s *OrderService) AddItem(item models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == item.ID {
			s.cart[i].Quantity++
			return
		}
	}

	s.cart = append(s.cart, models.CartItem{
		ID:         item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   1,
		Department: item.Department,
	})
}

// AdjustQuantity changes a cart line's quantity by delta. Quantity never
// drops below zero; at zero the line is removed. PrintedQuantity is left
// alone so already-sent units keep their history.
func (s *OrderService) AdjustQuantity(itemID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID != itemID {
			continue
		}

		s.cart[i].Quantity += delta
		if s.cart[i].Quantity <= 0 {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
		}
		return
	}
}

// RemoveItem removes a cart line entirely regardless of quantity
func (s *OrderService) RemoveItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == itemID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return
		}
	}
}

// ClearCart empties the cart. The recall selection is kept so a recalled
// order can be re-edited from scratch.
func (s *OrderService) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = []models.CartItem{}
}

// StartNewOrder empties the cart and drops the recall selection
func (s *OrderService) StartNewOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = []models.CartItem{}
	s.recallID = ""
}

// Cart returns a copy of the current cart lines
func (s *OrderService) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.cart)
}

// Totals computes subtotal, tax and total for the current cart
func (s *OrderService) Totals() OrderTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeTotals(s.cart)
}

func (s *OrderService) computeTotals(items []models.CartItem) OrderTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	tax := subtotal * s.taxRate / 100
	return OrderTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// HoldCurrentOrder snapshots the cart as a new held order, persists it, and
// empties the cart. Every line is stamped fully printed because holding
// happens right after a kitchen ticket goes out.
func (s *OrderService) HoldCurrentOrder() (*models.HeldOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	items := copyItems(s.cart)
	for i := range items {
		items[i].PrintedQuantity = items[i].Quantity
	}

	totals := s.computeTotals(items)
	order := models.HeldOrder{
		ID:            fmt.Sprintf("PENDING-%d", now.UnixMilli()),
		InvoiceNumber: fmt.Sprintf("INV-%d", now.UnixMilli()),
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		HeldAt:        now,
	}

	s.held = append(s.held, order)
	if s.localDB != nil {
		if err := s.localDB.SaveHeldOrder(&order); err != nil {
			return nil, fmt.Errorf("failed to persist held order: %w", err)
		}
	}

	s.cart = []models.CartItem{}
	return &order, nil
}

// HeldOrders returns all held orders in the order they were created
func (s *OrderService) HeldOrders() []models.HeldOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HeldOrder, len(s.held))
	for i := range s.held {
		out[i] = s.held[i]
		out[i].Items = copyItems(s.held[i].Items)
	}
	return out
}

// Recall loads a held order's lines into the cart for editing and marks it
// as the active recall selection. The registry copy stays untouched until a
// merge happens.
func (s *OrderService) Recall(heldID string) (*models.HeldOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.findHeld(heldID)
	if order == nil {
		return nil, ErrUnknownHeldOrder
	}

	s.cart = copyItems(order.Items)
	s.recallID = heldID

	recalled := *order
	recalled.Items = copyItems(order.Items)
	return &recalled, nil
}

// ActiveRecall returns the held order currently selected for recall, or nil
func (s *OrderService) ActiveRecall() *models.HeldOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recallID == "" {
		return nil
	}
	order := s.findHeld(s.recallID)
	if order == nil {
		return nil
	}

	recalled := *order
	recalled.Items = copyItems(order.Items)
	return &recalled
}

// MergeAndUpdateHeldOrder writes the current cart back into the recalled held
// order: existing lines take the cart's quantity, new lines are appended, and
// totals are recomputed. The registry keeps a single entry for the order. The
// recall selection stays on the merged order and the cart is reseeded from the
// merged snapshot so the cashier can keep editing without re-recalling.
func (s *OrderService) MergeAndUpdateHeldOrder() (*models.HeldOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recallID == "" {
		return nil, ErrNoRecallSelection
	}
	order := s.findHeld(s.recallID)
	if order == nil {
		return nil, ErrUnknownHeldOrder
	}

	for _, cartItem := range s.cart {
		if existing := order.FindItem(cartItem.ID); existing != nil {
			existing.Quantity = cartItem.Quantity
			existing.PrintedQuantity = cartItem.Quantity
		} else {
			line := cartItem
			line.PrintedQuantity = line.Quantity
			order.Items = append(order.Items, line)
		}
	}

	totals := s.computeTotals(order.Items)
	order.Subtotal = totals.Subtotal
	order.Tax = totals.Tax
	order.Total = totals.Total

	if s.localDB != nil {
		if err := s.localDB.SaveHeldOrder(order); err != nil {
			return nil, fmt.Errorf("failed to persist merged order: %w", err)
		}
	}

	s.cart = copyItems(order.Items)

	merged := *order
	merged.Items = copyItems(order.Items)
	return &merged, nil
}

// CompleteAndRemove removes a held order from the registry after billing.
// If it was the active recall selection the selection is cleared, and the
// cart is emptied.
func (s *OrderService) CompleteAndRemove(heldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.held {
		if s.held[i].ID == heldID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownHeldOrder
	}

	s.held = append(s.held[:idx], s.held[idx+1:]...)
	if s.localDB != nil {
		if err := s.localDB.DeleteHeldOrder(heldID); err != nil {
			return fmt.Errorf("failed to delete held order: %w", err)
		}
	}

	if s.recallID == heldID {
		s.recallID = ""
	}
	s.cart = []models.CartItem{}
	return nil
}

// MarkPrinted stamps every cart line as fully sent to the kitchen
func (s *OrderService) MarkPrinted() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		s.cart[i].PrintedQuantity = s.cart[i].Quantity
	}
}

// PendingTicketItems returns the cart lines that still need a kitchen ticket,
// taking the active recall selection into account as the baseline
func (s *OrderService) PendingTicketItems() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var baseline *models.HeldOrder
	if s.recallID != "" {
		baseline = s.findHeld(s.recallID)
	}
	return TicketDelta(s.cart, baseline)
}

// findHeld returns a pointer into the registry slice. Callers hold the lock.
func (s *OrderService) findHeld(heldID string) *models.HeldOrder {
	for i := range s.held {
		if s.held[i].ID == heldID {
			return &s.held[i]
		}
	}
	return nil
}

func copyItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
