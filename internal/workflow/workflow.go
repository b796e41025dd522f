// Package workflow runs the end-to-end cohort comparison: network build
// and clustering per cohort, pairwise module-overlap analysis,
// shared/unshared partitioning, pathway enrichment per gene group and
// diagram export.
package workflow

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/reactome-fi/fiflow/internal/enrichment"
	"github.com/reactome-fi/fiflow/internal/gene"
	"github.com/reactome-fi/fiflow/internal/network"
	"github.com/reactome-fi/fiflow/internal/overlap"
	"github.com/reactome-fi/fiflow/internal/pathway"
)

// Options tune one workflow run.
type Options struct {
	// Sandbox is the directory holding the MAF inputs and exported
	// diagrams.
	Sandbox string
	// BackgroundGenes is the background population for the overlap
	// p-values. Zero means overlap.DefaultBackgroundGenes.
	BackgroundGenes int
	// MinSampleCount and MinSampleProportion set the network sample
	// cutoff.
	MinSampleCount      int
	MinSampleProportion float64
	// MaxModuleCount and MinModuleSize restrict the clustered modules.
	MaxModuleCount int
	MinModuleSize  int
	// MaxOverlapFDR filters the overlap table before partitioning.
	MaxOverlapFDR float64
	// MaxEnrichmentFDR filters the per-group enrichment results.
	MaxEnrichmentFDR float64
	// OverlapFormat renders the overlap table: "text" or "html".
	OverlapFormat string
}

// DefaultOptions returns the standard workflow tuning.
func DefaultOptions() Options {
	return Options{
		MinSampleProportion: 0.01,
		MaxModuleCount:      20,
		MinModuleSize:       3,
		MaxOverlapFDR:       0.01,
		MaxEnrichmentFDR:    0.001,
		OverlapFormat:       overlap.FormatText,
	}
}

// Builder prepares one module collection per cohort.
type Builder interface {
	Prepare(cohorts []string, opts network.Options) ([]gene.Collection, error)
}

// Enricher runs pathway enrichment for gene sets and module collections.
type Enricher interface {
	EnrichGenes(genes gene.Set) (*enrichment.Result, error)
	EnrichSets(sets []gene.Set) ([]*enrichment.Result, error)
	EnrichModules(collection gene.Collection) ([]enrichment.ModuleResult, error)
}

// Exporter loads the pathway hierarchy and exports pathway diagrams.
type Exporter interface {
	LoadHierarchy() (*pathway.Node, error)
	ExportDiagram(enricher pathway.Enricher, name string, dbID int64, genes gene.Set, outDir string) (string, error)
}

// ResultStore persists the result tables. It is optional.
type ResultStore interface {
	WriteOverlap(t *overlap.Table) error
	WriteEnrichment(group string, result *enrichment.Result) error
}

// Workflow wires the collaborators for one run.
type Workflow struct {
	Builder  Builder
	Enricher Enricher
	Exporter Exporter
	Store    ResultStore
	Out      io.Writer
	Options  Options

	logger *zap.Logger
}

// New creates a workflow over the given collaborators with default
// options and stdout output.
func New(builder Builder, enricher Enricher, exporter Exporter) *Workflow {
	return &Workflow{
		Builder:  builder,
		Enricher: enricher,
		Exporter: exporter,
		Out:      os.Stdout,
		Options:  DefaultOptions(),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for stage progress messages.
func (w *Workflow) SetLogger(l *zap.Logger) {
	w.logger = l
}

// Run executes the workflow for two cohorts. Any stage failure aborts the
// run; there are no retries and no partial-success mode. Reruns are
// idempotent because the network build clears the prior session first.
func (w *Workflow) Run(cohortA, cohortB string) error {
	if err := overlap.ValidateFormat(w.Options.OverlapFormat); err != nil {
		return err
	}

	collections, err := w.Builder.Prepare([]string{cohortA, cohortB}, network.Options{
		Dir:                 w.Options.Sandbox,
		MinSampleCount:      w.Options.MinSampleCount,
		MinSampleProportion: w.Options.MinSampleProportion,
		MaxModuleCount:      w.Options.MaxModuleCount,
		MinModuleSize:       w.Options.MinModuleSize,
	})
	if err != nil {
		return err
	}
	a, b := collections[0], collections[1]
	for _, c := range collections {
		w.logger.Info("prepared cohort modules",
			zap.String("cohort", c.Cohort),
			zap.Int("modules", c.Len()))
	}

	overlaps, err := overlap.Analyze(a, b, w.Options.BackgroundGenes)
	if err != nil {
		return fmt.Errorf("overlap analysis for %s vs %s: %w", cohortA, cohortB, err)
	}
	filtered := overlaps
	if w.Options.MaxOverlapFDR > 0 {
		filtered = overlaps.FilterFDR(w.Options.MaxOverlapFDR)
	}
	w.logger.Info("computed module overlap",
		zap.Int("pairs", overlaps.Len()),
		zap.Int("significant", filtered.Len()))

	if err := overlap.Print(w.Out, filtered, 0, w.Options.OverlapFormat); err != nil {
		return err
	}

	partition := overlap.PartitionShared(filtered, a, b)

	// The hierarchy must be loaded before any enrichment call.
	root, err := w.Exporter.LoadHierarchy()
	if err != nil {
		return err
	}

	sharedResults, err := w.enrichShared(partition.Shared)
	if err != nil {
		return err
	}
	unsharedResults := make(map[string][]enrichment.ModuleResult, 2)
	for _, cohort := range []string{cohortA, cohortB} {
		results, err := w.Enricher.EnrichModules(partition.Unshared[cohort])
		if err != nil {
			return err
		}
		unsharedResults[cohort] = w.filterModuleResults(results)
	}

	distinct := enrichment.Distinct(map[string][]*enrichment.Result{
		cohortA: resultsOf(unsharedResults[cohortA]),
		cohortB: resultsOf(unsharedResults[cohortB]),
	})

	for _, cohort := range []string{cohortA, cohortB} {
		if err := w.exportFirstDiagram(root, cohort, distinct[cohort], unsharedResults[cohort]); err != nil {
			return err
		}
	}

	if w.Store != nil {
		if err := w.persist(filtered, partition, sharedResults, unsharedResults); err != nil {
			return err
		}
	}
	return nil
}

// enrichShared enriches each shared intersection gene group and applies
// the enrichment FDR cutoff.
func (w *Workflow) enrichShared(shared []overlap.SharedGroup) ([]*enrichment.Result, error) {
	sets := make([]gene.Set, len(shared))
	for i, group := range shared {
		sets[i] = group.Genes
	}
	results, err := w.Enricher.EnrichSets(sets)
	if err != nil {
		return nil, err
	}
	if w.Options.MaxEnrichmentFDR > 0 {
		for i, r := range results {
			results[i] = r.FilterFDR(w.Options.MaxEnrichmentFDR)
		}
	}
	return results, nil
}

func (w *Workflow) filterModuleResults(results []enrichment.ModuleResult) []enrichment.ModuleResult {
	if w.Options.MaxEnrichmentFDR <= 0 {
		return results
	}
	for i, mr := range results {
		results[i].Result = mr.Result.FilterFDR(w.Options.MaxEnrichmentFDR)
	}
	return results
}

// exportFirstDiagram exports the first distinct pathway of the cohort
// that has a diagram, highlighting the hit genes of the best-scoring
// module for that pathway.
func (w *Workflow) exportFirstDiagram(root *pathway.Node, cohort string, distinct []string, results []enrichment.ModuleResult) error {
	exportables := pathway.SelectExportable(root, distinct)
	if len(exportables) == 0 {
		w.logger.Info("no exportable distinct pathway", zap.String("cohort", cohort))
		return nil
	}

	target := exportables[0]
	genes := w.hitGenes(results, target.Pathway)
	file, err := w.Exporter.ExportDiagram(w.Enricher, target.Pathway, target.DBID, genes, w.Options.Sandbox)
	if err != nil {
		return fmt.Errorf("cohort %s: %w", cohort, err)
	}
	w.logger.Info("exported cohort pathway diagram",
		zap.String("cohort", cohort),
		zap.String("pathway", target.Pathway),
		zap.String("file", file))
	return nil
}

// hitGenes returns the hit genes of the pathway in its best-scoring
// module.
func (w *Workflow) hitGenes(results []enrichment.ModuleResult, pathwayName string) gene.Set {
	best := enrichment.BestModules(results)
	module, ok := best[pathwayName]
	if !ok {
		return gene.NewSet()
	}
	for _, mr := range results {
		if mr.Module != module {
			continue
		}
		if rec, ok := mr.Result.Lookup(pathwayName); ok {
			return gene.NewSet(rec.HitGenes...)
		}
	}
	return gene.NewSet()
}

func (w *Workflow) persist(t *overlap.Table, partition overlap.Partition, shared []*enrichment.Result, unshared map[string][]enrichment.ModuleResult) error {
	if err := w.Store.WriteOverlap(t); err != nil {
		return err
	}
	for i, result := range shared {
		group := fmt.Sprintf("Shared %d:%d", partition.Shared[i].ModuleA, partition.Shared[i].ModuleB)
		if err := w.Store.WriteEnrichment(group, result); err != nil {
			return err
		}
	}
	for cohort, results := range unshared {
		for _, mr := range results {
			group := fmt.Sprintf("%s %d", cohort, mr.Module)
			if err := w.Store.WriteEnrichment(group, mr.Result); err != nil {
				return err
			}
		}
	}
	return nil
}

func resultsOf(moduleResults []enrichment.ModuleResult) []*enrichment.Result {
	results := make([]*enrichment.Result, len(moduleResults))
	for i, mr := range moduleResults {
		results[i] = mr.Result
	}
	return results
}
