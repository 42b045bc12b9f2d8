package services

import (
	"errors"
	"fmt"
	"time"

	"TakeawayPos/app/backend"
	"TakeawayPos/app/config"
	"TakeawayPos/app/database"
	"TakeawayPos/app/models"
)

// ErrNothingToSend is returned when a ticket is requested but every cart
// line has already been sent to the kitchen
var ErrNothingToSend = errors.New("no unprinted items to send")

// TicketBroadcaster pushes ticket events to connected kitchen displays
type TicketBroadcaster interface {
	BroadcastTicket(kotNumber int, items []models.CartItem)
}

// PlaceOrderResult reports what a placed order produced
type PlaceOrderResult struct {
	KOTNumber   int               `json:"kotNumber"`
	HeldOrder   *models.HeldOrder `json:"heldOrder"`
	Documents   []PrintDocument   `json:"documents"`
	WasRecalled bool              `json:"wasRecalled"`
}

// KOTService orchestrates the place-order flow: compute the unprinted delta,
// number the ticket, materialize and dispatch the pages, notify kitchen
// displays, and move the order into the held registry
type KOTService struct {
	client   *backend.Client
	localDB  *database.LocalDB
	printer  *PrinterService
	sessions *SessionService
	ws       TicketBroadcaster
	logger   *LoggerService
	cfg      *config.AppConfig
}

// NewKOTService creates a new KOT service. The order state is resolved
// through the session service so tickets can only go out while a cashier
// session is open.
func NewKOTService(client *backend.Client, localDB *database.LocalDB, printer *PrinterService,
	sessions *SessionService, ws TicketBroadcaster, logger *LoggerService, cfg *config.AppConfig) *KOTService {
	return &KOTService{
		client:   client,
		localDB:  localDB,
		printer:  printer,
		sessions: sessions,
		ws:       ws,
		logger:   logger,
		cfg:      cfg,
	}
}

// kotConfig resolves the effective ticket print configuration, falling back
// to the config file defaults when the backend endpoint is unreachable
func (s *KOTService) kotConfig() models.KOTConfig {
	if s.client != nil {
		if cfg, err := s.client.KOTConfig(); err == nil {
			return *cfg
		} else {
			s.logger.LogWarning("Using local KOT print defaults", err.Error())
		}
	}

	defaults := models.KOTConfig{
		NumberOfCopies: 1,
		PaperSize:      "80mm",
		FormatType:     "detailed",
	}
	if s.cfg != nil {
		defaults.PrintByDepartment = s.cfg.KOT.PrintByDepartment
		if s.cfg.KOT.NumberOfCopies > 0 {
			defaults.NumberOfCopies = s.cfg.KOT.NumberOfCopies
		}
		if s.cfg.KOT.PaperSize != "" {
			defaults.PaperSize = s.cfg.KOT.PaperSize
		}
		if s.cfg.KOT.FormatType != "" {
			defaults.FormatType = s.cfg.KOT.FormatType
		}
	}
	return defaults
}

// billConfig resolves the effective bill print configuration
func (s *KOTService) billConfig() models.BillConfig {
	if s.client != nil {
		if cfg, err := s.client.BillConfig(); err == nil {
			return *cfg
		} else {
			s.logger.LogWarning("Using local bill print defaults", err.Error())
		}
	}

	defaults := models.BillConfig{
		PaperSize:  "80mm",
		FormatType: "standard",
	}
	if s.cfg != nil {
		defaults.AutoPrintTakeaway = s.cfg.Bill.AutoPrintTakeaway
		if s.cfg.Bill.PaperSize != "" {
			defaults.PaperSize = s.cfg.Bill.PaperSize
		}
		if s.cfg.Bill.FormatType != "" {
			defaults.FormatType = s.cfg.Bill.FormatType
		}
	}
	return defaults
}

// GetKOTConfig returns the effective ticket print configuration
func (s *KOTService) GetKOTConfig() models.KOTConfig {
	return s.kotConfig()
}

// GetBillConfig returns the effective bill print configuration
func (s *KOTService) GetBillConfig() models.BillConfig {
	return s.billConfig()
}

// UpdateKOTConfig writes the ticket print configuration to the backend and
// mirrors it into the local defaults used offline
func (s *KOTService) UpdateKOTConfig(cfg models.KOTConfig) error {
	if s.client != nil {
		if err := s.client.UpdateKOTConfig(&cfg); err != nil {
			return err
		}
	}

	if s.cfg != nil {
		s.cfg.KOT = config.KOTPrintDefaults{
			PrintByDepartment: cfg.PrintByDepartment,
			NumberOfCopies:    cfg.NumberOfCopies,
			PaperSize:         cfg.PaperSize,
			FormatType:        cfg.FormatType,
		}
		if err := config.SaveConfig(s.cfg); err != nil {
			s.logger.LogWarning("Could not persist KOT print defaults", err.Error())
		}
	}
	return nil
}

// UpdateBillConfig writes the bill print configuration to the backend and
// mirrors it into the local defaults used offline
func (s *KOTService) UpdateBillConfig(cfg models.BillConfig) error {
	if s.client != nil {
		if err := s.client.UpdateBillConfig(&cfg); err != nil {
			return err
		}
	}

	if s.cfg != nil {
		s.cfg.Bill = config.BillPrintDefaults{
			AutoPrintTakeaway: cfg.AutoPrintTakeaway,
			PaperSize:         cfg.PaperSize,
			FormatType:        cfg.FormatType,
		}
		if err := config.SaveConfig(s.cfg); err != nil {
			s.logger.LogWarning("Could not persist bill print defaults", err.Error())
		}
	}
	return nil
}

// nextKOTNumber asks the backend counter first and falls back to the local
// sequence when the backend is down
func (s *KOTService) nextKOTNumber() (int, error) {
	if s.client != nil {
		number, err := s.client.NextKOTNumber()
		if err == nil {
			return number, nil
		}
		s.logger.LogWarning("Backend KOT numbering unavailable, using local counter", err.Error())
	}

	if s.localDB == nil {
		return 0, fmt.Errorf("no KOT number source available")
	}
	return s.localDB.NextLocalKOTNumber()
}

// PlaceOrder sends the unprinted part of the cart to the kitchen and moves
// the order into the held registry. With an active recall the delta merges
// back into the recalled order; otherwise a new held order is created.
func (s *KOTService) PlaceOrder() (*PlaceOrderResult, error) {
	orders, err := s.sessions.Orders()
	if err != nil {
		return nil, err
	}

	pending := orders.PendingTicketItems()
	if len(pending) == 0 {
		return nil, ErrNothingToSend
	}

	kotNumber, err := s.nextKOTNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to get KOT number: %w", err)
	}

	cfg := s.kotConfig()
	recalled := orders.ActiveRecall()
	isAdditional := recalled != nil

	render := KOTRender{
		Number:       kotNumber,
		Items:        pending,
		IsAdditional: isAdditional,
		Config:       cfg,
	}

	var docs []PrintDocument
	if cfg.PrintByDepartment {
		docs = s.printer.RenderKOTByDepartment(render)
	} else {
		docs = []PrintDocument{s.printer.RenderKOT(render)}
	}

	orders.MarkPrinted()

	var held *models.HeldOrder
	if isAdditional {
		held, err = orders.MergeAndUpdateHeldOrder()
	} else {
		held, err = orders.HoldCurrentOrder()
	}
	if err != nil {
		return nil, err
	}

	// Dispatch is fire and forget. A jammed printer must not block the
	// cashier; failures go to the log.
	for _, doc := range docs {
		go func(d PrintDocument) {
			defer s.logger.RecoverPanic()
			if err := s.printer.Dispatch(d); err != nil {
				s.logger.LogError("Failed to dispatch KOT", err, d.Title)
			}
		}(doc)
	}

	if s.ws != nil {
		s.ws.BroadcastTicket(kotNumber, pending)
	}

	s.logger.LogInfo("Order placed", fmt.Sprintf("KOT #%d, %d documents", kotNumber, len(docs)))

	return &PlaceOrderResult{
		KOTNumber:   kotNumber,
		HeldOrder:   held,
		Documents:   docs,
		WasRecalled: isAdditional,
	}, nil
}

// BillingService produces customer bills and records completed sales
type BillingService struct {
	client   *backend.Client
	printer  *PrinterService
	sessions *SessionService
	settings *SettingsService
	kot      *KOTService
	logger   *LoggerService
}

// NewBillingService creates a new billing service
func NewBillingService(client *backend.Client, printer *PrinterService, sessions *SessionService,
	settings *SettingsService, kot *KOTService, logger *LoggerService) *BillingService {
	return &BillingService{
		client:   client,
		printer:  printer,
		sessions: sessions,
		settings: settings,
		kot:      kot,
		logger:   logger,
	}
}

// billRender builds the render input for a held order
func (s *BillingService) billRender(order *models.HeldOrder, billNumber string) BillRender {
	settings := s.settings.Settings()
	return BillRender{
		BillNumber: billNumber,
		Items:      order.Items,
		Subtotal:   order.Subtotal,
		Tax:        order.Tax,
		Total:      order.Total,
		TaxRate:    settings.TaxRate,
		Settings:   settings,
		Config:     s.kot.billConfig(),
	}
}

// PrintBill materializes and dispatches the bill for a held order without
// completing it
func (s *BillingService) PrintBill(heldID string) (*PrintDocument, error) {
	order, err := s.findHeld(heldID)
	if err != nil {
		return nil, err
	}

	billNumber := fmt.Sprintf("BILL-%d", time.Now().UnixMilli())
	doc := s.printer.RenderBill(s.billRender(order, billNumber))

	go func() {
		defer s.logger.RecoverPanic()
		if err := s.printer.Dispatch(doc); err != nil {
			s.logger.LogError("Failed to dispatch bill", err, doc.Title)
		}
	}()

	return &doc, nil
}

// CompleteBill records the sale with the backend, removes the held order and
// returns the printed bill. If the backend rejects the invoice the order
// stays held so the sale is not lost.
func (s *BillingService) CompleteBill(heldID string) (*models.Invoice, error) {
	orders, err := s.sessions.Orders()
	if err != nil {
		return nil, err
	}

	order, err := s.findHeld(heldID)
	if err != nil {
		return nil, err
	}

	billNumber := fmt.Sprintf("BILL-%d", time.Now().UnixMilli())
	invoice := &models.Invoice{
		BillNumber: billNumber,
		OrderType:  "Takeaway",
		Items:      order.Items,
		Subtotal:   order.Subtotal,
		Tax:        order.Tax,
		Total:      order.Total,
		Timestamp:  time.Now(),
	}

	if s.client != nil {
		recorded, err := s.client.RecordInvoice(invoice)
		if err != nil {
			return nil, fmt.Errorf("invoice not recorded, order kept on hold: %w", err)
		}
		invoice = recorded
	}

	doc := s.printer.RenderBill(s.billRender(order, billNumber))
	go func() {
		defer s.logger.RecoverPanic()
		if err := s.printer.Dispatch(doc); err != nil {
			s.logger.LogError("Failed to dispatch bill", err, doc.Title)
		}
	}()

	if err := orders.CompleteAndRemove(heldID); err != nil {
		return nil, err
	}

	s.logger.LogInfo("Bill completed", billNumber)
	return invoice, nil
}

func (s *BillingService) findHeld(heldID string) (*models.HeldOrder, error) {
	orders, err := s.sessions.Orders()
	if err != nil {
		return nil, err
	}
	for _, order := range orders.HeldOrders() {
		if order.ID == heldID {
			o := order
			return &o, nil
		}
	}
	return nil, ErrUnknownHeldOrder
}
