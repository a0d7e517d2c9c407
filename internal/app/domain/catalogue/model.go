package catalogue

// Product is a purchasable item in the cookie catalogue. The catalogue is
// read-only from the application's perspective; rows are loaded by migration.
type Product struct {
	Shortname   string  `json:"shortname"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Ingredients string  `json:"ingredients"`
	Price       float64 `json:"price"`
}

// Entry is a product as it appears in the name-keyed catalogue mapping
// returned to clients.
type Entry struct {
	Shortname   string  `json:"shortname"`
	Description string  `json:"description"`
	Ingredients string  `json:"ingredients"`
	Price       float64 `json:"price"`
}

// Mapping keys catalogue entries by display name.
type Mapping map[string]Entry

// Detail is the shape returned for a single item lookup.
type Detail struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Ingredients string  `json:"ingredients"`
	Price       float64 `json:"price"`
}

// AsMapping reshapes product rows into the name-keyed client mapping.
func AsMapping(products []Product) Mapping {
	m := make(Mapping, len(products))
	for _, p := range products {
		m[p.Name] = Entry{
			Shortname:   p.Shortname,
			Description: p.Description,
			Ingredients: p.Ingredients,
			Price:       p.Price,
		}
	}
	return m
}

// Detail converts a product row into its single-item response shape.
func (p Product) Detail() Detail {
	return Detail{
		Name:        p.Name,
		Description: p.Description,
		Ingredients: p.Ingredients,
		Price:       p.Price,
	}
}
