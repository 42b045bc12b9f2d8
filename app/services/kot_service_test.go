package services

import (
	"path/filepath"
	"sync"
	"testing"

	"TakeawayPos/app/config"
	"TakeawayPos/app/database"
	"TakeawayPos/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureBroadcaster struct {
	mu      sync.Mutex
	numbers []int
	items   [][]models.CartItem
}

func (c *captureBroadcaster) BroadcastTicket(kotNumber int, items []models.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.numbers = append(c.numbers, kotNumber)
	c.items = append(c.items, items)
}

type kotFixture struct {
	sessions *SessionService
	orders   *OrderService
	kot      *KOTService
	ws       *captureBroadcaster
}

// newKOTFixture wires a KOT service against the local database only, so
// ticket numbers come from the offline counter
func newKOTFixture(t *testing.T) *kotFixture {
	t.Helper()
	db, err := database.OpenLocalDB(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := NewLoggerService()
	t.Cleanup(logger.Close)

	sessions, err := NewSessionService(db, logger, 5)
	require.NoError(t, err)
	orders, err := sessions.Start(DefaultCashierPIN)
	require.NoError(t, err)

	ws := &captureBroadcaster{}
	cfg := &config.AppConfig{
		KOT: config.KOTPrintDefaults{NumberOfCopies: 1, PaperSize: "80mm", FormatType: "detailed"},
	}
	printer := NewPrinterService(logger, "")
	kot := NewKOTService(nil, db, printer, sessions, ws, logger, cfg)

	return &kotFixture{sessions: sessions, orders: orders, kot: kot, ws: ws}
}

func TestPlaceOrderEmptyCartRejected(t *testing.T) {
	f := newKOTFixture(t)

	_, err := f.kot.PlaceOrder()
	assert.ErrorIs(t, err, ErrNothingToSend)
}

func TestPlaceOrderHoldsAndNumbersTicket(t *testing.T) {
	f := newKOTFixture(t)
	f.orders.AddItem(models.MenuItem{ID: "a", Name: "Paneer Tikka", Price: 250, Department: "Grill"})
	f.orders.AdjustQuantity("a", 1)

	result, err := f.kot.PlaceOrder()
	require.NoError(t, err)

	assert.Greater(t, result.KOTNumber, 9000)
	assert.False(t, result.WasRecalled)
	require.NotNil(t, result.HeldOrder)
	assert.Equal(t, 2, result.HeldOrder.Items[0].PrintedQuantity)
	require.Len(t, result.Documents, 1)
	assert.Contains(t, result.Documents[0].HTML, "Paneer Tikka")

	// Cart cleared, order now in the held registry
	assert.Empty(t, f.orders.Cart())
	assert.Len(t, f.orders.HeldOrders(), 1)

	// Kitchen displays got the delta
	require.Len(t, f.ws.numbers, 1)
	assert.Equal(t, result.KOTNumber, f.ws.numbers[0])
	require.Len(t, f.ws.items[0], 1)
	assert.Equal(t, 2, f.ws.items[0][0].Quantity)
}

func TestPlaceOrderAfterRecallSendsOnlyDelta(t *testing.T) {
	f := newKOTFixture(t)
	f.orders.AddItem(models.MenuItem{ID: "a", Name: "Paneer Tikka", Price: 250})

	first, err := f.kot.PlaceOrder()
	require.NoError(t, err)

	_, err = f.orders.Recall(first.HeldOrder.ID)
	require.NoError(t, err)
	f.orders.AdjustQuantity("a", 1)
	f.orders.AddItem(models.MenuItem{ID: "c", Name: "Mango Lassi", Price: 120})

	second, err := f.kot.PlaceOrder()
	require.NoError(t, err)

	assert.True(t, second.WasRecalled)
	assert.Equal(t, first.KOTNumber+1, second.KOTNumber)
	assert.Equal(t, first.HeldOrder.ID, second.HeldOrder.ID)

	// Only the extra unit and the new item went out
	delta := f.ws.items[1]
	require.Len(t, delta, 2)
	assert.Equal(t, "a", delta[0].ID)
	assert.Equal(t, 1, delta[0].Quantity)
	assert.Equal(t, "c", delta[1].ID)
	assert.Equal(t, 1, delta[1].Quantity)

	// Registry still holds a single merged order
	held := f.orders.HeldOrders()
	require.Len(t, held, 1)
	require.Len(t, held[0].Items, 2)
	assert.Equal(t, 2, held[0].Items[0].Quantity)
}

func TestPlaceOrderByDepartmentSplitsDocuments(t *testing.T) {
	f := newKOTFixture(t)
	f.kot.cfg.KOT.PrintByDepartment = true
	f.orders.AddItem(models.MenuItem{ID: "a", Name: "Paneer Tikka", Price: 250, Department: "Grill"})
	f.orders.AddItem(models.MenuItem{ID: "b", Name: "Mango Lassi", Price: 120, Department: "Bar"})

	result, err := f.kot.PlaceOrder()
	require.NoError(t, err)

	require.Len(t, result.Documents, 2)
	assert.Equal(t, "Grill", result.Documents[0].Department)
	assert.Equal(t, "Bar", result.Documents[1].Department)
}

func TestPlaceOrderWithoutSession(t *testing.T) {
	f := newKOTFixture(t)
	require.NoError(t, f.sessions.End())

	_, err := f.kot.PlaceOrder()
	assert.ErrorIs(t, err, ErrNoSession)
}
