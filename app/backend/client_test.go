package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"TakeawayPos/app/config"
	"TakeawayPos/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&config.BackendConfig{
		BaseURL:        server.URL,
		TimeoutSeconds: 2,
		APIToken:       "test-token",
	})
}

func TestMenuItems(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/menu-items", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]models.MenuItem{
			{ID: "a", Name: "Paneer Tikka", Price: 250, Category: "Starters", Department: "Grill"},
		})
	}))

	items, err := client.MenuItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Paneer Tikka", items[0].Name)
	assert.Equal(t, "Grill", items[0].Department)
}

func TestMenuItemsServerError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.MenuItems()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNextKOTNumber(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kot/next-number", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]int{"kotNumber": 57})
	}))

	number, err := client.NextKOTNumber()
	require.NoError(t, err)
	assert.Equal(t, 57, number)
}

func TestRestaurantSettings(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.RestaurantSettings{
			RestaurantName: "Spice Garden",
			Currency:       "INR",
			TaxRate:        5,
		})
	}))

	settings, err := client.RestaurantSettings()
	require.NoError(t, err)
	assert.Equal(t, "Spice Garden", settings.RestaurantName)
	assert.InDelta(t, 5, settings.TaxRate, 0.001)
}

func TestRecordInvoice(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/invoices", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var invoice models.Invoice
		require.NoError(t, json.NewDecoder(r.Body).Decode(&invoice))
		assert.Equal(t, "BILL-1700000000000", invoice.BillNumber)

		invoice.ID = "srv-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(invoice)
	}))

	recorded, err := client.RecordInvoice(&models.Invoice{
		BillNumber: "BILL-1700000000000",
		OrderType:  "Takeaway",
		Total:      588,
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", recorded.ID)
	assert.InDelta(t, 588, recorded.Total, 0.001)
}

func TestRecordInvoiceRejected(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	_, err := client.RecordInvoice(&models.Invoice{BillNumber: "BILL-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BILL-1")
}

func TestUpdateKOTConfig(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/config/kot", r.URL.Path)

		var cfg models.KOTConfig
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cfg))
		assert.True(t, cfg.PrintByDepartment)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.UpdateKOTConfig(&models.KOTConfig{PrintByDepartment: true, NumberOfCopies: 2})
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body["email"] == "manager@spicegarden.in" && body["password"] == "secret" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	ok, err := client.Login("manager@spicegarden.in", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Login("manager@spicegarden.in", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Category{{ID: "1", Name: "Starters"}})
	}))
	t.Cleanup(server.Close)

	client := NewClient(&config.BackendConfig{BaseURL: server.URL + "/"})

	categories, err := client.Categories()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Starters", categories[0].Name)
}
