package chat

import (
	"strings"

	"github.com/evdataworks/ev-chatbot/internal/store"
)

// Resolver matches free text against the known brands and models of an
// immutable table. All methods are pure.
type Resolver struct {
	table *store.Table
}

// NewResolver creates a resolver over the given table.
func NewResolver(table *store.Table) *Resolver {
	return &Resolver{table: table}
}

// ResolveBrand returns the first known brand (in sorted brand order) whose
// lowercase form appears as a substring of the lowered query. Sorted order
// makes resolution deterministic when a query mentions several brands.
func (r *Resolver) ResolveBrand(query string) (string, bool) {
	query = strings.ToLower(query)
	for _, brand := range r.table.Brands() {
		if strings.Contains(query, strings.ToLower(brand)) {
			return brand, true
		}
	}
	return "", false
}

// ResolveBrands returns every known brand mentioned in the query, in
// sorted brand order.
func (r *Resolver) ResolveBrands(query string) []string {
	query = strings.ToLower(query)
	var found []string
	for _, brand := range r.table.Brands() {
		if strings.Contains(query, strings.ToLower(brand)) {
			found = append(found, brand)
		}
	}
	return found
}

// Articles that commonly lead a model mention, as in "the i4". Key
// normalization strips spaces, so an unstripped article would glue onto
// the model name and never match.
var leadingArticles = []string{"the ", "an ", "a "}

// StripArticle removes a single leading article from a fragment.
func StripArticle(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	lower := strings.ToLower(fragment)
	for _, art := range leadingArticles {
		if strings.HasPrefix(lower, art) {
			return strings.TrimSpace(fragment[len(art):])
		}
	}
	return fragment
}

// ResolveModel matches a query fragment against model keys, ignoring a
// leading article, and returns the first record whose key contains the
// normalized fragment.
func (r *Resolver) ResolveModel(fragment string) (store.Record, bool) {
	return r.table.FindModel(StripArticle(fragment))
}
