// backend-go/internal/domain/models.go
package domain

import "time"

// Product is a catalog item eligible for gondola placement. Dimensions are in
// centimeters; the sales aggregates cover the analysis window the engine was
// invoked with. The engine treats products as read-only input.
type Product struct {
	ID         int64   `json:"id" db:"id"`
	EAN        string  `json:"ean" db:"ean"`
	Name       string  `json:"name" db:"name"`
	Width      float64 `json:"width" db:"width"`
	Height     float64 `json:"height" db:"height"`
	Depth      float64 `json:"depth" db:"depth"`
	CategoryID int64   `json:"category_id" db:"category_id"`

	// Sales aggregates over the analysis window.
	SoldQty    float64 `json:"sold_qty" db:"sold_qty"`
	SoldValue  float64 `json:"sold_value" db:"sold_value"`
	SoldMargin float64 `json:"sold_margin" db:"sold_margin"`
}

// HasValidDimensions reports whether all three physical dimensions are present
// and positive. Products failing this check are excluded from placement, never
// defaulted.
func (p Product) HasValidDimensions() bool {
	return p.Width > 0 && p.Height > 0 && p.Depth > 0
}

// Category level names, from widest to narrowest.
const (
	LevelRetailSegment = "retail_segment"
	LevelDepartment    = "department"
	LevelSubDepartment = "sub_department"
	LevelCategory      = "category"
	LevelSubCategory   = "sub_category"
)

// Category is a node in the merchandising hierarchy. ParentID is 0 for roots.
type Category struct {
	ID        int64  `json:"id" db:"id"`
	ParentID  int64  `json:"parent_id" db:"parent_id"`
	LevelName string `json:"level_name" db:"level_name"`
	Name      string `json:"name" db:"name"`
}

// Shelf is one horizontal plane inside a section.
type Shelf struct {
	ID            int64   `json:"id" db:"id"`
	SectionID     int64   `json:"section_id" db:"section_id"`
	Ordering      int     `json:"ordering" db:"ordering"`
	Width         float64 `json:"width" db:"width"`
	Depth         float64 `json:"depth" db:"depth"`
	OccupiedWidth float64 `json:"occupied_width" db:"occupied_width"`
}

// Section is a vertical module of a gondola holding ordered shelves.
type Section struct {
	ID       int64   `json:"id" db:"id"`
	Ordering int     `json:"ordering" db:"ordering"`
	Width    float64 `json:"width" db:"width"`
	Shelves  []Shelf `json:"shelves" db:"-"`
}

// Gondola is the physical fixture the engine fills. Sections are ordered left
// to right; shelves inside each section top to bottom.
type Gondola struct {
	ID       int64     `json:"id" db:"id"`
	StoreID  int64     `json:"store_id" db:"store_id"`
	Name     string    `json:"name" db:"name"`
	Sections []Section `json:"sections" db:"-"`
}

// SalesRecord is one sales-history row: quantity and money moved for a product
// on a calendar day.
type SalesRecord struct {
	ProductID int64     `json:"product_id" db:"product_id"`
	StoreID   int64     `json:"store_id" db:"store_id"`
	Day       time.Time `json:"day" db:"day"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	SaleValue float64   `json:"sale_value" db:"sale_value"`
	Margin    float64   `json:"margin" db:"margin"`
}

// DateRange bounds a sales-history query. Zero values mean unbounded.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}
