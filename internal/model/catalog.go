package model

import "strings"

type ItemCategory int

const (
	ItemCategoryOther ItemCategory = iota
	// ItemCategoryFirewood covers items sold by the stère.
	ItemCategoryFirewood
)

func (c ItemCategory) String() string {
	switch c {
	case ItemCategoryFirewood:
		return "firewood"
	default:
		return "other"
	}
}

type CatalogItem struct {
	Name     string
	Category ItemCategory
}

// Catalog lists the known products in the order summaries display them.
var Catalog = []CatalogItem{
	{Name: "Stère en 50 cm", Category: ItemCategoryFirewood},
	{Name: "Stère en 33 cm", Category: ItemCategoryFirewood},
	{Name: "Stère en 25 cm", Category: ItemCategoryFirewood},
	{Name: "Stère de galettes", Category: ItemCategoryFirewood},
	{Name: "Filet de bois d'allumage", Category: ItemCategoryOther},
	{Name: "Filet de bûchettes", Category: ItemCategoryOther},
}

// firewoodMarker identifies firewood products that are not in the catalog yet.
const firewoodMarker = "Stère"

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(Catalog))
	for i, item := range Catalog {
		idx[item.Name] = i
	}
	return idx
}()

// CatalogPosition returns the display position of a catalog product.
func CatalogPosition(name string) (int, bool) {
	pos, ok := catalogIndex[name]
	return pos, ok
}

func CategoryOf(name string) ItemCategory {
	if pos, ok := catalogIndex[name]; ok {
		return Catalog[pos].Category
	}
	if strings.Contains(name, firewoodMarker) {
		return ItemCategoryFirewood
	}
	return ItemCategoryOther
}

// ResolveCategories returns a copy of items with Category set.
func ResolveCategories(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, item := range items {
		item.Category = CategoryOf(item.Name)
		out[i] = item
	}
	return out
}
