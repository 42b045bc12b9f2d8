package database

import (
	"path/filepath"
	"testing"
	"time"

	"TakeawayPos/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *LocalDB {
	t.Helper()
	db, err := OpenLocalDB(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleHeldOrder(id string) *models.HeldOrder {
	return &models.HeldOrder{
		ID:            id,
		InvoiceNumber: "INV-1700000000000",
		Items: []models.CartItem{
			{ID: "a", Name: "Paneer Tikka", Price: 250, Quantity: 2, Department: "Grill", PrintedQuantity: 2},
		},
		Subtotal: 500,
		Tax:      25,
		Total:    525,
		HeldAt:   time.Now(),
	}
}

func TestHeldOrderRoundTrip(t *testing.T) {
	db := testDB(t)
	order := sampleHeldOrder("PENDING-1")

	require.NoError(t, db.SaveHeldOrder(order))

	loaded, err := db.GetHeldOrders()
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	assert.Equal(t, order.ID, loaded[0].ID)
	assert.Equal(t, order.InvoiceNumber, loaded[0].InvoiceNumber)
	assert.Equal(t, order.Items, loaded[0].Items)
	assert.InDelta(t, order.Total, loaded[0].Total, 0.001)
	assert.True(t, order.HeldAt.Equal(loaded[0].HeldAt))
}

func TestHeldOrdersKeepInsertionOrder(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.SaveHeldOrder(sampleHeldOrder("PENDING-1")))
	require.NoError(t, db.SaveHeldOrder(sampleHeldOrder("PENDING-2")))
	require.NoError(t, db.SaveHeldOrder(sampleHeldOrder("PENDING-3")))

	// Updating the first order must not move it to the back
	first := sampleHeldOrder("PENDING-1")
	first.Total = 999
	require.NoError(t, db.SaveHeldOrder(first))

	loaded, err := db.GetHeldOrders()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "PENDING-1", loaded[0].ID)
	assert.Equal(t, "PENDING-2", loaded[1].ID)
	assert.Equal(t, "PENDING-3", loaded[2].ID)
	assert.InDelta(t, 999, loaded[0].Total, 0.001)
}

func TestDeleteHeldOrder(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.SaveHeldOrder(sampleHeldOrder("PENDING-1")))

	require.NoError(t, db.DeleteHeldOrder("PENDING-1"))

	loaded, err := db.GetHeldOrders()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// Deleting an unknown id is not an error
	assert.NoError(t, db.DeleteHeldOrder("PENDING-missing"))
}

func TestNextLocalKOTNumber(t *testing.T) {
	db := testDB(t)

	first, err := db.NextLocalKOTNumber()
	require.NoError(t, err)
	second, err := db.NextLocalKOTNumber()
	require.NoError(t, err)

	assert.Greater(t, first, localKOTOffset)
	assert.Equal(t, first+1, second)
}

func TestMenuCacheRoundTrip(t *testing.T) {
	db := testDB(t)
	items := []models.MenuItem{
		{ID: "a", Name: "Paneer Tikka", Price: 250, Category: "Starters", Department: "Grill"},
		{ID: "b", Name: "Garlic Naan", Price: 60, Category: "Breads"},
	}

	require.NoError(t, db.CacheMenuItems(items))

	cached, err := db.GetCachedMenuItems()
	require.NoError(t, err)
	assert.ElementsMatch(t, items, cached)

	// Re-caching an item with a new price replaces the stale copy
	items[0].Price = 275
	require.NoError(t, db.CacheMenuItems(items[:1]))

	cached, err = db.GetCachedMenuItems()
	require.NoError(t, err)
	require.Len(t, cached, 2)
}

func TestSettingsCacheStartsEmpty(t *testing.T) {
	db := testDB(t)

	cached, err := db.GetCachedSettings()
	require.NoError(t, err)
	assert.Nil(t, cached)

	settings := &models.RestaurantSettings{RestaurantName: "Spice Garden", TaxRate: 5, Currency: "INR"}
	require.NoError(t, db.CacheSettings(settings))

	cached, err = db.GetCachedSettings()
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Spice Garden", cached.RestaurantName)
}

func TestPINHashRoundTrip(t *testing.T) {
	db := testDB(t)

	hash, err := db.GetPINHash()
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, db.SetPINHash("bcrypt-hash"))
	hash, err = db.GetPINHash()
	require.NoError(t, err)
	assert.Equal(t, "bcrypt-hash", hash)

	require.NoError(t, db.SetPINHash("rotated"))
	hash, err = db.GetPINHash()
	require.NoError(t, err)
	assert.Equal(t, "rotated", hash)
}
