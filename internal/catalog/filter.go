package catalog

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/catalog"
)

// AllCategories is the category selector that matches every product.
const AllCategories = "all"

// Filter returns the products matching both the search term and the category
// selector, in their original order. The term matches case-insensitively
// against title, description, or brand; an empty term matches everything.
func Filter(products []catalog.Product, term, category string) []catalog.Product {
	needle := strings.ToLower(term)
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if matchesTerm(p, needle) && matchesCategory(p, category) {
			out = append(out, p)
		}
	}
	return out
}

func matchesTerm(p catalog.Product, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle)
}

func matchesCategory(p catalog.Product, category string) bool {
	return category == "" || category == AllCategories || p.Category == category
}

// Categories lists "all" followed by each distinct category in first-seen order.
func Categories(products []catalog.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
