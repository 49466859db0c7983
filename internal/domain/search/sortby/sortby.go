package sortby

// Key is the ordering applied to search results.
type Key string

// Sort key constants.
const (
	// Relevance orders by fuzzy score; without a fuzzy pass it falls back to name ascending.
	Relevance Key = "relevance"
	Name      Key = "name"
	Price     Key = "price"
	CreatedAt Key = "createdAt"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	return k == Relevance || k == Name || k == Price || k == CreatedAt
}

// Order is the sort direction.
type Order string

// Sort direction constants.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid checks if the order is asc or desc.
func (o Order) IsValid() bool {
	return o == Asc || o == Desc
}
