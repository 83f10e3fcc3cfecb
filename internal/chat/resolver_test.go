package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBrand(t *testing.T) {
	r := NewResolver(testTable())

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"longest range for tesla", "TESLA", true},
		{"cheapest BMW please", "BMW", true},
		{"anything about nissan?", "NISSAN", true},
		{"longest range", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		brand, ok := r.ResolveBrand(tt.query)
		assert.Equal(t, tt.found, ok, "query %q", tt.query)
		assert.Equal(t, tt.want, brand, "query %q", tt.query)
	}
}

func TestResolveBrandsSortedOrder(t *testing.T) {
	r := NewResolver(testTable())

	brands := r.ResolveBrands("is a tesla better than a bmw or a nissan?")
	assert.Equal(t, []string{"BMW", "NISSAN", "TESLA"}, brands)
}

func TestResolveModel(t *testing.T) {
	r := NewResolver(testTable())

	rec, ok := r.ResolveModel("the model s")
	require.True(t, ok)
	assert.Equal(t, "Model S", rec.Model)

	rec, ok = r.ResolveModel("i4")
	require.True(t, ok)
	assert.Equal(t, "BMW", rec.Brand)

	_, ok = r.ResolveModel("cybertruck")
	assert.False(t, ok)
}

func TestResolveModelLeadingArticle(t *testing.T) {
	r := NewResolver(testTable())

	// Key normalization glues words together, so without article
	// stripping "the i4" would become "thei4" and never match.
	for _, fragment := range []string{"the i4", "The i4", "an i4", "a leaf"} {
		_, ok := r.ResolveModel(fragment)
		assert.True(t, ok, "fragment %q", fragment)
	}
}

func TestStripArticle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the i4", "i4"},
		{"The Model 3", "Model 3"},
		{"a leaf", "leaf"},
		{"an i4", "i4"},
		{"model s", "model s"},
		{"theater", "theater"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripArticle(tt.in), "input %q", tt.in)
	}
}
