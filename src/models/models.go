package models

// Transaction is a single parsed sales record from the pipe-delimited input file.
type Transaction struct {
	TransactionID string  `json:"transaction_id"`
	Date          string  `json:"date"`
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	CustomerID    string  `json:"customer_id"`
	Region        string  `json:"region"`
}

// Amount is the transaction value. Always recomputed, never stored.
func (t Transaction) Amount() float64 {
	return float64(t.Quantity) * t.UnitPrice
}

// EnrichedTransaction is a Transaction joined to external product catalog
// metadata. APIMatch is true iff a catalog entry existed for the transaction's
// derived numeric product id; in that case all three API fields are set,
// otherwise all three are nil.
type EnrichedTransaction struct {
	Transaction
	APICategory *string  `json:"api_category"`
	APIBrand    *string  `json:"api_brand"`
	APIRating   *float64 `json:"api_rating"`
	APIMatch    bool     `json:"api_match"`
}

// CatalogProduct is one entry of the external product catalog response.
// ID is a pointer so entries missing an id can be skipped when building
// the product mapping.
type CatalogProduct struct {
	ID       *int    `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
}

// ProductInfo is the catalog metadata attached to a transaction on a match.
type ProductInfo struct {
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Rating   float64 `json:"rating"`
}

// ValidationSummary describes how an input batch was reduced through
// validation and filtering.
type ValidationSummary struct {
	TotalInput       int `json:"total_input"`
	InvalidCount     int `json:"invalid_count"`
	FilteredByRegion int `json:"filtered_by_region"`
	FilteredByAmount int `json:"filtered_by_amount"`
	FinalCount       int `json:"final_count"`
}

// FilterOptions is the diagnostic listing of distinct regions and the observed
// amount range across the valid set, computed before any filtering is applied.
type FilterOptions struct {
	Regions    []string `json:"regions"`
	MinAmount  float64  `json:"min_amount"`
	MaxAmount  float64  `json:"max_amount"`
	HasAmounts bool     `json:"has_amounts"`
}
