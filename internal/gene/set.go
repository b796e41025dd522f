// Package gene provides the gene set and module data model shared by the
// network, overlap and enrichment stages.
package gene

import (
	"sort"
	"strings"
)

// Set is an unordered collection of gene symbols.
type Set map[string]struct{}

// NewSet creates a set from the given gene symbols. Empty symbols are
// ignored.
func NewSet(symbols ...string) Set {
	s := make(Set, len(symbols))
	for _, sym := range symbols {
		if sym != "" {
			s[sym] = struct{}{}
		}
	}
	return s
}

// Len returns the number of genes in the set.
func (s Set) Len() int {
	return len(s)
}

// Contains reports whether the symbol is in the set.
func (s Set) Contains(symbol string) bool {
	_, ok := s[symbol]
	return ok
}

// Add inserts a symbol into the set.
func (s Set) Add(symbol string) {
	s[symbol] = struct{}{}
}

// Intersect returns the genes present in both sets. It is commutative.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for sym := range small {
		if _, ok := large[sym]; ok {
			out[sym] = struct{}{}
		}
	}
	return out
}

// Union returns the genes present in either set.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for sym := range s {
		out[sym] = struct{}{}
	}
	for sym := range other {
		out[sym] = struct{}{}
	}
	return out
}

// Sorted returns the gene symbols in lexicographic order.
func (s Set) Sorted() []string {
	symbols := make([]string, 0, len(s))
	for sym := range s {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Join returns the sorted symbols joined by the separator.
func (s Set) Join(sep string) string {
	return strings.Join(s.Sorted(), sep)
}
