package services

import (
	"testing"

	"TakeawayPos/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrinter(t *testing.T) *PrinterService {
	t.Helper()
	logger := NewLoggerService()
	t.Cleanup(logger.Close)
	return NewPrinterService(logger, "")
}

func ticketItems() []models.CartItem {
	return []models.CartItem{
		{ID: "a", Name: "Paneer Tikka", Price: 250, Quantity: 2, Department: "Grill"},
		{ID: "b", Name: "Mango Lassi", Price: 120, Quantity: 1, Department: "Bar"},
		{ID: "c", Name: "Garlic Naan", Price: 60, Quantity: 3},
	}
}

func TestRenderKOTDetailed(t *testing.T) {
	s := testPrinter(t)

	doc := s.RenderKOT(KOTRender{
		Number: 42,
		Items:  ticketItems(),
		Config: models.KOTConfig{PaperSize: "80mm", FormatType: "detailed"},
	})

	assert.Equal(t, "KOT-42", doc.Title)
	assert.Equal(t, 1, doc.Copies)
	assert.Contains(t, doc.HTML, "KITCHEN ORDER TICKET #42")
	assert.Contains(t, doc.HTML, "Paneer Tikka")
	assert.Contains(t, doc.HTML, "x 2")
	assert.Contains(t, doc.HTML, "[Grill]")
	// Untagged lines fall back to the default department
	assert.Contains(t, doc.HTML, "[General]")
	assert.Contains(t, doc.HTML, "Type: Takeaway")
	assert.NotContains(t, doc.HTML, "ADDITIONAL")
}

func TestRenderKOTCompactAdditional(t *testing.T) {
	s := testPrinter(t)

	doc := s.RenderKOT(KOTRender{
		Number:       7,
		Items:        ticketItems()[:1],
		IsAdditional: true,
		Config:       models.KOTConfig{PaperSize: "58mm", FormatType: "compact", NumberOfCopies: 2},
	})

	assert.Equal(t, 2, doc.Copies)
	assert.Contains(t, doc.HTML, "KOT 7")
	assert.Contains(t, doc.HTML, "*** ADDITIONAL ***")
	assert.Contains(t, doc.HTML, "font-size: 10px")
	assert.Contains(t, doc.HTML, "size: 58mm auto")
}

func TestRenderKOTGrouped(t *testing.T) {
	s := testPrinter(t)

	doc := s.RenderKOT(KOTRender{
		Number: 9,
		Items:  ticketItems(),
		Config: models.KOTConfig{PaperSize: "112mm", FormatType: "grouped"},
	})

	assert.Contains(t, doc.HTML, "[Grill]")
	assert.Contains(t, doc.HTML, "[Bar]")
	assert.Contains(t, doc.HTML, "[General]")
	assert.Contains(t, doc.HTML, "font-size: 14px")
}

func TestRenderKOTByDepartment(t *testing.T) {
	s := testPrinter(t)

	docs := s.RenderKOTByDepartment(KOTRender{
		Number: 11,
		Items:  ticketItems(),
		Config: models.KOTConfig{FormatType: "detailed"},
	})

	require.Len(t, docs, 3)
	assert.Equal(t, "Grill", docs[0].Department)
	assert.Equal(t, "Bar", docs[1].Department)
	assert.Equal(t, "General", docs[2].Department)

	// Each station ticket carries only its own lines
	assert.Contains(t, docs[0].HTML, "Paneer Tikka")
	assert.NotContains(t, docs[0].HTML, "Mango Lassi")
	assert.Contains(t, docs[1].HTML, "Mango Lassi")
}

func TestRenderKOTEscapesNames(t *testing.T) {
	s := testPrinter(t)

	doc := s.RenderKOT(KOTRender{
		Number: 1,
		Items: []models.CartItem{
			{ID: "x", Name: "Fish & Chips <special>", Quantity: 1},
		},
		Config: models.KOTConfig{FormatType: "compact"},
	})

	assert.Contains(t, doc.HTML, "Fish &amp; Chips &lt;special&gt;")
	assert.NotContains(t, doc.HTML, "<special>")
}

func billRender(format string) BillRender {
	return BillRender{
		BillNumber: "BILL-1700000000000",
		Items: []models.CartItem{
			{ID: "a", Name: "Paneer Tikka", Price: 250, Quantity: 2},
			{ID: "b", Name: "Garlic Naan", Price: 60, Quantity: 1},
		},
		Subtotal: 560,
		Tax:      28,
		Total:    588,
		TaxRate:  5,
		Settings: &models.RestaurantSettings{
			RestaurantName: "Spice Garden",
			Address:        "12 MG Road",
			Phone:          "080-1234",
			Email:          "hello@spicegarden.in",
		},
		Config: models.BillConfig{PaperSize: "80mm", FormatType: format},
	}
}

func TestRenderBillStandard(t *testing.T) {
	s := testPrinter(t)

	doc := s.RenderBill(billRender("standard"))

	assert.Equal(t, "BILL-1700000000000", doc.Title)
	assert.Contains(t, doc.HTML, "TAX INVOICE")
	assert.Contains(t, doc.HTML, "Spice Garden")
	assert.Contains(t, doc.HTML, "Ph: 080-1234")
	assert.Contains(t, doc.HTML, "Bill No: BILL-1700000000000")
	assert.Contains(t, doc.HTML, "(2 x ₹250.00)")
	assert.Contains(t, doc.HTML, "₹500.00")
	assert.Contains(t, doc.HTML, "GST (5%)")
	assert.Contains(t, doc.HTML, "₹588.00")
	assert.NotContains(t, doc.HTML, "data:image/png")
}

func TestRenderBillCompact(t *testing.T) {
	s := testPrinter(t)

	doc := s.RenderBill(billRender("compact"))

	assert.Contains(t, doc.HTML, "Subtotal: ₹560.00")
	assert.Contains(t, doc.HTML, "TOTAL: ₹588.00")
	assert.NotContains(t, doc.HTML, "float:right")
}

func TestRenderBillDetailedHasQRCode(t *testing.T) {
	s := testPrinter(t)

	doc := s.RenderBill(billRender("detailed"))

	assert.Contains(t, doc.HTML, "data:image/png;base64,")
}

func TestPaperStyleMapping(t *testing.T) {
	font, pad, width := paperStyle("58mm")
	assert.Equal(t, []string{"10px", "5px", "58mm"}, []string{font, pad, width})

	font, pad, width = paperStyle("112mm")
	assert.Equal(t, []string{"14px", "12px", "112mm"}, []string{font, pad, width})

	// Unknown sizes fall back to 80mm
	font, pad, width = paperStyle("")
	assert.Equal(t, []string{"12px", "8px", "80mm"}, []string{font, pad, width})
}
