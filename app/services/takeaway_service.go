package services

import (
	"TakeawayPos/app/models"
)

// TakeawayService is the surface the order screen talks to. It delegates to
// the session-owned order state and to the KOT and billing flows.
type TakeawayService struct {
	sessions *SessionService
	menu     *MenuService
	settings *SettingsService
	kot      *KOTService
	billing  *BillingService
	logger   *LoggerService
}

// NewTakeawayService creates the order screen facade
func NewTakeawayService(sessions *SessionService, menu *MenuService, settings *SettingsService,
	kot *KOTService, billing *BillingService, logger *LoggerService) *TakeawayService {
	return &TakeawayService{
		sessions: sessions,
		menu:     menu,
		settings: settings,
		kot:      kot,
		billing:  billing,
		logger:   logger,
	}
}

// StartSession opens a cashier session with the given PIN
func (s *TakeawayService) StartSession(pin string) error {
	orders, err := s.sessions.Start(pin)
	if err != nil {
		return err
	}
	orders.SetTaxRate(s.settings.TaxRate())
	return nil
}

// EndSession closes the active cashier session
func (s *TakeawayService) EndSession() error {
	return s.sessions.End()
}

// Menu returns the product catalog filtered by category and search text
func (s *TakeawayService) Menu(category, query string) []models.MenuItem {
	return s.menu.Filter(s.menu.LoadMenu(), category, query)
}

// Categories returns the menu categories
func (s *TakeawayService) Categories() []models.Category {
	return s.menu.LoadCategories()
}

// Departments returns the kitchen departments
func (s *TakeawayService) Departments() []models.Department {
	return s.menu.LoadDepartments()
}

// RestaurantSettings returns the effective restaurant settings
func (s *TakeawayService) RestaurantSettings() *models.RestaurantSettings {
	return s.settings.Settings()
}

// AddItem adds one unit of a product to the cart
func (s *TakeawayService) AddItem(item models.MenuItem) error {
	orders, err := s.sessions.Orders()
	if err != nil {
		return err
	}
	orders.AddItem(item)
	return nil
}

// AdjustQuantity changes a cart line's quantity by delta
func (s *TakeawayService) AdjustQuantity(itemID string, delta int) error {
	orders, err := s.sessions.Orders()
	if err != nil {
		return err
	}
	orders.AdjustQuantity(itemID, delta)
	return nil
}

// RemoveItem removes a cart line entirely
func (s *TakeawayService) RemoveItem(itemID string) error {
	orders, err := s.sessions.Orders()
	if err != nil {
		return err
	}
	orders.RemoveItem(itemID)
	return nil
}

// ClearCart empties the cart, keeping any recall selection
func (s *TakeawayService) ClearCart() error {
	orders, err := s.sessions.Orders()
	if err != nil {
		return err
	}
	orders.ClearCart()
	return nil
}

// NewOrder empties the cart and drops the recall selection
func (s *TakeawayService) NewOrder() error {
	orders, err := s.sessions.Orders()
	if err != nil {
		return err
	}
	orders.StartNewOrder()
	return nil
}

// Cart returns the current cart lines
func (s *TakeawayService) Cart() ([]models.CartItem, error) {
	orders, err := s.sessions.Orders()
	if err != nil {
		return nil, err
	}
	return orders.Cart(), nil
}

// Totals returns the money summary for the current cart
func (s *TakeawayService) Totals() (*OrderTotals, error) {
	orders, err := s.sessions.Orders()
	if err != nil {
		return nil, err
	}
	totals := orders.Totals()
	return &totals, nil
}

// PendingItems returns the cart lines not yet sent to the kitchen
func (s *TakeawayService) PendingItems() ([]models.CartItem, error) {
	orders, err := s.sessions.Orders()
	if err != nil {
		return nil, err
	}
	return orders.PendingTicketItems(), nil
}

// HeldOrders returns all orders waiting to be billed
func (s *TakeawayService) HeldOrders() ([]models.HeldOrder, error) {
	orders, err := s.sessions.Orders()
	if err != nil {
		return nil, err
	}
	return orders.HeldOrders(), nil
}

// RecallOrder loads a held order into the cart for editing
func (s *TakeawayService) RecallOrder(heldID string) (*models.HeldOrder, error) {
	orders, err := s.sessions.Orders()
	if err != nil {
		return nil, err
	}
	return orders.Recall(heldID)
}

// PlaceOrder sends the unprinted items to the kitchen and holds the order.
// When auto-print is configured the customer bill goes out with the ticket.
func (s *TakeawayService) PlaceOrder() (*PlaceOrderResult, error) {
	result, err := s.kot.PlaceOrder()
	if err != nil {
		return nil, err
	}

	if s.kot.GetBillConfig().AutoPrintTakeaway && result.HeldOrder != nil {
		if _, err := s.billing.PrintBill(result.HeldOrder.ID); err != nil {
			s.logger.LogWarning("Auto-print of takeaway bill failed", err.Error())
		}
	}

	return result, nil
}

// PrintBill prints the bill for a held order without completing it
func (s *TakeawayService) PrintBill(heldID string) (*PrintDocument, error) {
	return s.billing.PrintBill(heldID)
}

// CompleteBill records the sale, prints the bill and removes the held order
func (s *TakeawayService) CompleteBill(heldID string) (*models.Invoice, error) {
	return s.billing.CompleteBill(heldID)
}
