package models

import "time"

// DefaultDepartment is the kitchen routing tag used when a product has none.
const DefaultDepartment = "General"

// CartItem represents one product line in the order being built.
// PrintedQuantity tracks how many units have already gone out on a kitchen
// ticket during the current editing session. It only ever increases, and only
// when a ticket print is confirmed; lowering Quantity afterwards leaves it
// untouched.
type CartItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Quantity        int     `json:"quantity"`
	Department      string  `json:"department,omitempty"`
	PrintedQuantity int     `json:"printedQuantity,omitempty"`
}

// LineTotal returns price times quantity for this line
func (c CartItem) LineTotal() float64 {
	return c.Price * float64(c.Quantity)
}

// KitchenDepartment returns the routing tag, defaulting to "General"
func (c CartItem) KitchenDepartment() string {
	if c.Department == "" {
		return DefaultDepartment
	}
	return c.Department
}

// HeldOrder is an order that was placed (kitchen notified) but not yet billed.
// It is snapshotted at hold time; every line carries PrintedQuantity equal to
// Quantity because holding only happens after a KOT print.
type HeldOrder struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	Items         []CartItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	HeldAt        time.Time  `json:"timestamp"`
}

// FindItem returns the line with the given item id, or nil
func (h *HeldOrder) FindItem(itemID string) *CartItem {
	for i := range h.Items {
		if h.Items[i].ID == itemID {
			return &h.Items[i]
		}
	}
	return nil
}

// Invoice is the completed-sale record sent to the backend invoice store
type Invoice struct {
	ID         string     `json:"id,omitempty"`
	BillNumber string     `json:"billNumber"`
	OrderType  string     `json:"orderType"`
	Items      []CartItem `json:"items"`
	Subtotal   float64    `json:"subtotal"`
	Tax        float64    `json:"tax"`
	Total      float64    `json:"total"`
	Timestamp  time.Time  `json:"timestamp"`
}

// KOTConfig controls kitchen ticket printing
type KOTConfig struct {
	PrintByDepartment bool   `json:"printByDepartment"`
	NumberOfCopies    int    `json:"numberOfCopies"`
	SelectedPrinter   string `json:"selectedPrinter,omitempty"`
	PaperSize         string `json:"paperSize,omitempty"`  // "58mm", "80mm", "112mm"
	FormatType        string `json:"formatType,omitempty"` // "compact", "detailed", "grouped"
}

// BillConfig controls customer bill printing
type BillConfig struct {
	AutoPrintTakeaway bool   `json:"autoPrintTakeaway"`
	SelectedPrinter   string `json:"selectedPrinter,omitempty"`
	PaperSize         string `json:"paperSize,omitempty"`  // "58mm", "80mm", "112mm"
	FormatType        string `json:"formatType,omitempty"` // "compact", "standard", "detailed"
}
