package overlap

import (
	"github.com/reactome-fi/fiflow/internal/gene"
)

// SharedGroup is the intersection gene set of one significant module pair.
type SharedGroup struct {
	ModuleA int
	ModuleB int
	Genes   gene.Set
}

// Partition splits the two cohorts' modules into shared and unshared
// groups relative to an overlap table.
type Partition struct {
	// Shared holds one gene group per overlap record.
	Shared []SharedGroup
	// Unshared maps each cohort name to the modules whose number never
	// appears in the table.
	Unshared map[string]gene.Collection
}

// PartitionShared partitions the cohorts' modules against the (typically
// FDR-filtered) overlap table. A module is unshared for its cohort exactly
// when its number appears in no record key, so every module is accounted
// for on exactly one side.
func PartitionShared(t *Table, a, b gene.Collection) Partition {
	p := Partition{
		Shared:   make([]SharedGroup, 0, len(t.Records)),
		Unshared: make(map[string]gene.Collection, 2),
	}
	for _, r := range t.Records {
		p.Shared = append(p.Shared, SharedGroup{ModuleA: r.ModuleA, ModuleB: r.ModuleB, Genes: r.Genes})
	}

	sharedA := make(map[int]bool, len(t.Records))
	sharedB := make(map[int]bool, len(t.Records))
	for _, r := range t.Records {
		sharedA[r.ModuleA] = true
		sharedB[r.ModuleB] = true
	}
	p.Unshared[a.Cohort] = difference(a, sharedA)
	p.Unshared[b.Cohort] = difference(b, sharedB)
	return p
}

// difference restricts the collection to modules absent from the shared
// number set. The comparison is over module identifiers, not gene content.
func difference(c gene.Collection, shared map[int]bool) gene.Collection {
	kept := make([]gene.Module, 0, c.Len())
	for _, m := range c.Modules {
		if !shared[m.Number] {
			kept = append(kept, m)
		}
	}
	return gene.Collection{Cohort: c.Cohort, Modules: kept}
}
