// Package overlap performs the pairwise module-overlap analysis: for every
// pair of modules drawn from two cohorts it computes the intersection gene
// set, a hypergeometric overlap p-value and a Benjamini-Hochberg corrected
// FDR.
package overlap

import (
	"github.com/reactome-fi/fiflow/internal/gene"
)

// DefaultBackgroundGenes is the Reactome FI network gene count, used as
// the background population when the caller does not supply one.
const DefaultBackgroundGenes = 12283

// Record is the overlap result for one module pair with a non-empty
// intersection.
type Record struct {
	ModuleA int
	ModuleB int
	Genes   gene.Set
	P       float64
	FDR     float64
}

// Table holds all overlap records for one cohort pair, keyed by the
// (ModuleA, ModuleB) pair.
type Table struct {
	CohortA string
	CohortB string
	Records []Record
}

// Len returns the number of overlap records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Lookup returns the record for the given module pair.
func (t *Table) Lookup(moduleA, moduleB int) (Record, bool) {
	for _, r := range t.Records {
		if r.ModuleA == moduleA && r.ModuleB == moduleB {
			return r, true
		}
	}
	return Record{}, false
}

// FilterFDR returns a table restricted to records with FDR at most cutoff.
func (t *Table) FilterFDR(cutoff float64) *Table {
	kept := make([]Record, 0, len(t.Records))
	for _, r := range t.Records {
		if r.FDR <= cutoff {
			kept = append(kept, r)
		}
	}
	return &Table{CohortA: t.CohortA, CohortB: t.CohortB, Records: kept}
}
