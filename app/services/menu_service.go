package services

import (
	"strings"

	"TakeawayPos/app/backend"
	"TakeawayPos/app/database"
	"TakeawayPos/app/models"
)

// MenuService loads the product catalog from the backend and falls back to
// the local cache when the backend is unreachable
type MenuService struct {
	client  *backend.Client
	localDB *database.LocalDB
	logger  *LoggerService
}

// NewMenuService creates a new menu service
func NewMenuService(client *backend.Client, localDB *database.LocalDB, logger *LoggerService) *MenuService {
	return &MenuService{
		client:  client,
		localDB: localDB,
		logger:  logger,
	}
}

// LoadMenu returns the menu, preferring the backend and caching the result.
// On backend failure it serves the last cached menu; with no cache it
// returns an empty list so the screen stays usable.
func (s *MenuService) LoadMenu() []models.MenuItem {
	if s.client != nil {
		items, err := s.client.MenuItems()
		if err == nil {
			if s.localDB != nil {
				if cacheErr := s.localDB.CacheMenuItems(items); cacheErr != nil {
					s.logger.LogWarning("Failed to cache menu items", cacheErr.Error())
				}
			}
			return items
		}
		s.logger.LogError("Failed to fetch menu from backend, using cache", err)
	}

	if s.localDB != nil {
		cached, err := s.localDB.GetCachedMenuItems()
		if err == nil && cached != nil {
			return cached
		}
	}

	return []models.MenuItem{}
}

// LoadCategories returns the category list with the same fallback chain as
// LoadMenu
func (s *MenuService) LoadCategories() []models.Category {
	if s.client != nil {
		categories, err := s.client.Categories()
		if err == nil {
			if s.localDB != nil {
				if cacheErr := s.localDB.CacheCategories(categories); cacheErr != nil {
					s.logger.LogWarning("Failed to cache categories", cacheErr.Error())
				}
			}
			return categories
		}
		s.logger.LogError("Failed to fetch categories from backend, using cache", err)
	}

	if s.localDB != nil {
		cached, err := s.localDB.GetCachedCategories()
		if err == nil && cached != nil {
			return cached
		}
	}

	return []models.Category{}
}

// LoadDepartments returns the kitchen departments used for KOT routing.
// There is no cache; routing falls back to the item tags when empty.
func (s *MenuService) LoadDepartments() []models.Department {
	if s.client == nil {
		return []models.Department{}
	}

	departments, err := s.client.Departments()
	if err != nil {
		s.logger.LogError("Failed to fetch departments from backend", err)
		return []models.Department{}
	}
	return departments
}

// Filter narrows the menu to a category and a free-text query. An empty
// category or "All" keeps everything; the query matches name, product code
// and description, case-insensitive.
func (s *MenuService) Filter(items []models.MenuItem, category, query string) []models.MenuItem {
	filtered := []models.MenuItem{}
	query = strings.ToLower(strings.TrimSpace(query))

	for _, item := range items {
		if category != "" && category != "All" && item.Category != category {
			continue
		}

		if query != "" {
			name := strings.ToLower(item.Name)
			code := strings.ToLower(item.ProductCode)
			description := strings.ToLower(item.Description)
			if !strings.Contains(name, query) &&
				!strings.Contains(code, query) &&
				!strings.Contains(description, query) {
				continue
			}
		}

		filtered = append(filtered, item)
	}

	return filtered
}
