package gene

import (
	"fmt"
	"sort"
)

// Module is one clustered gene module. Number is unique within a cohort's
// collection and Genes is non-empty by construction.
type Module struct {
	Number int
	Genes  Set
}

// Collection is the ordered sequence of modules for one cohort, sorted by
// descending gene-set size. It is not mutated after construction; Limit
// and FilterMinSize return new collections.
type Collection struct {
	Cohort  string
	Modules []Module
}

// NewCollection builds a collection for the named cohort. Modules with
// empty gene sets are dropped, duplicate module numbers are rejected, and
// the result is sorted by descending size (ties by ascending number).
func NewCollection(cohort string, modules []Module) (Collection, error) {
	kept := make([]Module, 0, len(modules))
	seen := make(map[int]bool, len(modules))
	for _, m := range modules {
		if m.Number < 0 {
			return Collection{}, fmt.Errorf("cohort %s: negative module number %d", cohort, m.Number)
		}
		if seen[m.Number] {
			return Collection{}, fmt.Errorf("cohort %s: duplicate module number %d", cohort, m.Number)
		}
		seen[m.Number] = true
		if m.Genes.Len() == 0 {
			continue
		}
		kept = append(kept, m)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Genes.Len() != kept[j].Genes.Len() {
			return kept[i].Genes.Len() > kept[j].Genes.Len()
		}
		return kept[i].Number < kept[j].Number
	})
	return Collection{Cohort: cohort, Modules: kept}, nil
}

// Len returns the number of modules.
func (c Collection) Len() int {
	return len(c.Modules)
}

// Module returns the module with the given number.
func (c Collection) Module(number int) (Module, bool) {
	for _, m := range c.Modules {
		if m.Number == number {
			return m, true
		}
	}
	return Module{}, false
}

// Limit returns a collection truncated to at most max modules. Since the
// modules are ordered by descending size, this keeps the largest ones.
func (c Collection) Limit(max int) Collection {
	if max < 0 || max >= len(c.Modules) {
		return c
	}
	return Collection{Cohort: c.Cohort, Modules: c.Modules[:max]}
}

// FilterMinSize returns the collection restricted to modules with at
// least min genes. Size ordering is preserved.
func (c Collection) FilterMinSize(min int) Collection {
	kept := make([]Module, 0, len(c.Modules))
	for _, m := range c.Modules {
		if m.Genes.Len() >= min {
			kept = append(kept, m)
		}
	}
	return Collection{Cohort: c.Cohort, Modules: kept}
}

// Numbers returns the module numbers in collection order.
func (c Collection) Numbers() []int {
	numbers := make([]int, len(c.Modules))
	for i, m := range c.Modules {
		numbers[i] = m.Number
	}
	return numbers
}
