package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"TakeawayPos/app/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Locally issued KOT numbers start above this offset so they cannot collide
// with backend-issued numbers during short outages.
const localKOTOffset = 9000

// LocalDB manages the local SQLite database that keeps the held-order
// registry and cached backend data across application restarts
type LocalDB struct {
	db     *gorm.DB
	dbPath string
}

var localDB *LocalDB

// InitializeLocalDB initializes the local SQLite database
func InitializeLocalDB(dbPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open SQLite connection (CGO-free driver)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})

	if err != nil {
		return fmt.Errorf("failed to connect to local database: %w", err)
	}

	localDB = &LocalDB{
		db:     db,
		dbPath: dbPath,
	}

	if err := localDB.runMigrations(); err != nil {
		return fmt.Errorf("failed to run local migrations: %w", err)
	}

	return nil
}

// OpenLocalDB opens a LocalDB at the given path without touching the
// package-level instance (used by tests)
func OpenLocalDB(dbPath string) (*LocalDB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to local database: %w", err)
	}

	l := &LocalDB{db: db, dbPath: dbPath}
	if err := l.runMigrations(); err != nil {
		return nil, err
	}
	return l, nil
}

// GetLocalDB returns the local database instance
func GetLocalDB() *LocalDB {
	if localDB == nil {
		InitializeLocalDB("./data/local.db")
	}
	return localDB
}

// runMigrations creates necessary tables in local database
func (l *LocalDB) runMigrations() error {
	return l.db.AutoMigrate(
		&HeldOrderRecord{},
		&KOTCounter{},
		&CachedMenuItem{},
		&CachedCategory{},
		&CachedSettings{},
		&CashierCredential{},
	)
}

// HeldOrderRecord is a held-order snapshot row. The full order is stored as
// JSON; Position preserves insertion order for listing.
type HeldOrderRecord struct {
	ID            uint      `gorm:"primaryKey"`
	HeldID        string    `gorm:"uniqueIndex"`
	InvoiceNumber string    `json:"invoice_number"`
	OrderData     string    `json:"order_data"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// KOTCounter is the fallback ticket number sequence used when the backend
// numbering service is unreachable
type KOTCounter struct {
	ID         uint `gorm:"primaryKey"`
	NextNumber int  `json:"next_number"`
}

// CachedMenuItem represents cached menu item data
type CachedMenuItem struct {
	ID         uint      `gorm:"primaryKey"`
	ItemID     string    `gorm:"uniqueIndex"`
	ItemData   string    `json:"item_data"` // JSON serialized menu item
	LastSynced time.Time `json:"last_synced"`
}

// CachedCategory represents cached category data
type CachedCategory struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"uniqueIndex"`
	CategoryData string    `json:"category_data"`
	LastSynced   time.Time `json:"last_synced"`
}

// CachedSettings represents the last restaurant settings fetched from the backend
type CachedSettings struct {
	ID           uint      `gorm:"primaryKey"`
	SettingsData string    `json:"settings_data"`
	LastSynced   time.Time `json:"last_synced"`
}

// CashierCredential stores the bcrypt hash of the local cashier PIN
type CashierCredential struct {
	ID        uint      `gorm:"primaryKey"`
	PINHash   string    `json:"pin_hash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveHeldOrder inserts or updates a held order snapshot
func (l *LocalDB) SaveHeldOrder(order *models.HeldOrder) error {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	var existing HeldOrderRecord
	err = l.db.Where("held_id = ?", order.ID).First(&existing).Error
	if err == nil {
		existing.OrderData = string(orderJSON)
		existing.InvoiceNumber = order.InvoiceNumber
		return l.db.Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	var maxPos int
	l.db.Model(&HeldOrderRecord{}).Select("COALESCE(MAX(position), 0)").Scan(&maxPos)

	record := HeldOrderRecord{
		HeldID:        order.ID,
		InvoiceNumber: order.InvoiceNumber,
		OrderData:     string(orderJSON),
		Position:      maxPos + 1,
	}
	return l.db.Create(&record).Error
}

// GetHeldOrders returns all held orders in insertion order
func (l *LocalDB) GetHeldOrders() ([]models.HeldOrder, error) {
	var records []HeldOrderRecord
	if err := l.db.Order("position ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	var orders []models.HeldOrder
	for _, record := range records {
		var order models.HeldOrder
		if err := json.Unmarshal([]byte(record.OrderData), &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// DeleteHeldOrder removes a held order snapshot
func (l *LocalDB) DeleteHeldOrder(heldID string) error {
	return l.db.Where("held_id = ?", heldID).Delete(&HeldOrderRecord{}).Error
}

// NextLocalKOTNumber returns the next locally generated ticket number
func (l *LocalDB) NextLocalKOTNumber() (int, error) {
	var counter KOTCounter
	if err := l.db.FirstOrCreate(&counter).Error; err != nil {
		return 0, err
	}

	counter.NextNumber++
	if err := l.db.Save(&counter).Error; err != nil {
		return 0, err
	}

	return localKOTOffset + counter.NextNumber, nil
}

// CacheMenuItems replaces the cached menu
func (l *LocalDB) CacheMenuItems(items []models.MenuItem) error {
	for _, item := range items {
		itemJSON, err := json.Marshal(item)
		if err != nil {
			continue
		}

		var cached CachedMenuItem
		l.db.Where("item_id = ?", item.ID).FirstOrInit(&cached)
		cached.ItemID = item.ID
		cached.ItemData = string(itemJSON)
		cached.LastSynced = time.Now()

		if err := l.db.Save(&cached).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetCachedMenuItems returns the cached menu
func (l *LocalDB) GetCachedMenuItems() ([]models.MenuItem, error) {
	var cached []CachedMenuItem
	if err := l.db.Find(&cached).Error; err != nil {
		return nil, err
	}

	var items []models.MenuItem
	for _, c := range cached {
		var item models.MenuItem
		if err := json.Unmarshal([]byte(c.ItemData), &item); err != nil {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// CacheCategories replaces the cached category list
func (l *LocalDB) CacheCategories(categories []models.Category) error {
	for _, category := range categories {
		categoryJSON, err := json.Marshal(category)
		if err != nil {
			continue
		}

		var cached CachedCategory
		l.db.Where("name = ?", category.Name).FirstOrInit(&cached)
		cached.Name = category.Name
		cached.CategoryData = string(categoryJSON)
		cached.LastSynced = time.Now()

		if err := l.db.Save(&cached).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetCachedCategories returns the cached category list
func (l *LocalDB) GetCachedCategories() ([]models.Category, error) {
	var cached []CachedCategory
	if err := l.db.Find(&cached).Error; err != nil {
		return nil, err
	}

	var categories []models.Category
	for _, c := range cached {
		var category models.Category
		if err := json.Unmarshal([]byte(c.CategoryData), &category); err != nil {
			continue
		}
		categories = append(categories, category)
	}

	return categories, nil
}

// CacheSettings stores the last settings fetched from the backend
func (l *LocalDB) CacheSettings(settings *models.RestaurantSettings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	var cached CachedSettings
	l.db.FirstOrInit(&cached)
	cached.SettingsData = string(settingsJSON)
	cached.LastSynced = time.Now()

	return l.db.Save(&cached).Error
}

// GetCachedSettings returns the last cached settings, or nil if never synced
func (l *LocalDB) GetCachedSettings() (*models.RestaurantSettings, error) {
	var cached CachedSettings
	err := l.db.First(&cached).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var settings models.RestaurantSettings
	if err := json.Unmarshal([]byte(cached.SettingsData), &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// GetPINHash returns the stored cashier PIN hash, or empty if none is set
func (l *LocalDB) GetPINHash() (string, error) {
	var credential CashierCredential
	err := l.db.First(&credential).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return credential.PINHash, nil
}

// SetPINHash stores the cashier PIN hash
func (l *LocalDB) SetPINHash(hash string) error {
	var credential CashierCredential
	l.db.FirstOrInit(&credential)
	credential.PINHash = hash
	return l.db.Save(&credential).Error
}

// GetDB returns the underlying database connection
func (l *LocalDB) GetDB() *gorm.DB {
	return l.db
}

// Close closes the local database connection
func (l *LocalDB) Close() error {
	if l.db != nil {
		sqlDB, err := l.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
