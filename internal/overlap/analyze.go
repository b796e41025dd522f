package overlap

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/reactome-fi/fiflow/internal/gene"
)

// ErrEmptyCollection is returned when an input module collection has no
// modules.
var ErrEmptyCollection = errors.New("module collection is empty")

// Analyze computes the pairwise overlap table for two cohorts' module
// collections against a background gene population of the given size.
// Pairs with an empty intersection are omitted; if no pair overlaps the
// result is an empty table. A non-positive background falls back to
// DefaultBackgroundGenes. The computation is pure: it never contacts a
// service and does not modify its inputs.
func Analyze(a, b gene.Collection, background int) (*Table, error) {
	if a.Len() == 0 {
		return nil, fmt.Errorf("cohort %s: %w", a.Cohort, ErrEmptyCollection)
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("cohort %s: %w", b.Cohort, ErrEmptyCollection)
	}
	if background <= 0 {
		background = DefaultBackgroundGenes
	}

	t := &Table{CohortA: a.Cohort, CohortB: b.Cohort}
	for _, ma := range a.Modules {
		for _, mb := range b.Modules {
			intersection := ma.Genes.Intersect(mb.Genes)
			if intersection.Len() == 0 {
				continue
			}
			p := pValue(background, intersection.Len(), ma.Genes.Len(), mb.Genes.Len())
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return nil, fmt.Errorf("non-finite overlap p-value for modules %d and %d", ma.Number, mb.Number)
			}
			t.Records = append(t.Records, Record{
				ModuleA: ma.Number,
				ModuleB: mb.Number,
				Genes:   intersection,
				P:       p,
			})
		}
	}

	// One global correction across all retained pairs.
	pvalues := make([]float64, len(t.Records))
	for i, r := range t.Records {
		pvalues[i] = r.P
	}
	for i, q := range benjaminiHochberg(pvalues) {
		t.Records[i].FDR = q
	}
	return t, nil
}

// pValue is the probability of drawing an overlap of at least k genes by
// chance when sets of n1 and n2 genes are sampled from a background of
// population genes. This is the upper tail P(X >= k) of the
// hypergeometric distribution, matching the published formulation
// sf(k-1, N, n1, n2) exactly. The tail is summed term by term,
//
//	P(X = x) = C(n1, x) C(population-n1, n2-x) / C(population, n2)
//
// with each term evaluated in log space so the binomials stay finite for
// population sizes on the order of the FI network gene count.
func pValue(population, k, n1, n2 int) float64 {
	logDenom := combin.LogGeneralizedBinomial(float64(population), float64(n2))
	upper := n1
	if n2 < upper {
		upper = n2
	}
	p := 0.0
	for x := k; x <= upper; x++ {
		// A term is zero when the remaining draws cannot all miss n1.
		if n2-x > population-n1 {
			continue
		}
		logTerm := combin.LogGeneralizedBinomial(float64(n1), float64(x)) +
			combin.LogGeneralizedBinomial(float64(population-n1), float64(n2-x)) -
			logDenom
		p += math.Exp(logTerm)
	}
	return math.Min(p, 1)
}

// benjaminiHochberg applies the Benjamini-Hochberg false-discovery-rate
// step-up procedure, returning one q-value per input p-value in the same
// order. Each q-value is at least its p-value and the q-values are
// non-decreasing when the p-values are sorted ascending.
func benjaminiHochberg(pvalues []float64) []float64 {
	m := len(pvalues)
	if m == 0 {
		return nil
	}

	sorted := make([]float64, m)
	copy(sorted, pvalues)
	order := make([]int, m)
	floats.Argsort(sorted, order)

	qvalues := make([]float64, m)
	running := 1.0
	for i := m - 1; i >= 0; i-- {
		adjusted := sorted[i] * float64(m) / float64(i+1)
		if adjusted < running {
			running = adjusted
		}
		qvalues[order[i]] = running
	}
	return qvalues
}
