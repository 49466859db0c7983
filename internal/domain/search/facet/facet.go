package facet

// Default price bounds reported when no available component carries a price.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 1000
)

// Options lists the distinct filter values present among available components.
type Options struct {
	Categories    []string   `json:"categories"`
	Types         []string   `json:"types"`
	Materials     []string   `json:"materials"`
	Standards     []string   `json:"standards"`
	Manufacturers []string   `json:"manufacturers"`
	PriceRange    [2]float64 `json:"priceRange"`
}
