package model

// ProductTypeSweeping marks sweeping services, which are not sold as items.
const ProductTypeSweeping = "ramonage"

type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Type  string  `json:"type"`
}

// Sellable drops sweeping services from a product list.
func Sellable(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Type != ProductTypeSweeping {
			out = append(out, p)
		}
	}
	return out
}
