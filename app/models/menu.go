package models

// MenuItem represents a sellable product served by the backend menu API
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ProductCode string  `json:"productCode"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Department  string  `json:"department"` // Kitchen routing tag ("Bar", "Grill", ...)
	Description string  `json:"description"`
}

// Category represents a menu category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Department represents a kitchen station used for KOT routing
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RestaurantSettings holds restaurant identity and tax configuration
// as served by the backend settings API
type RestaurantSettings struct {
	ID             int     `json:"id"`
	RestaurantName string  `json:"restaurantName"`
	Address        string  `json:"address,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Email          string  `json:"email,omitempty"`
	Currency       string  `json:"currency"`
	TaxRate        float64 `json:"taxRate"` // Percent, e.g. 5 means 5%
}
