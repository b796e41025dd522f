package workflow

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactome-fi/fiflow/internal/enrichment"
	"github.com/reactome-fi/fiflow/internal/gene"
	"github.com/reactome-fi/fiflow/internal/network"
	"github.com/reactome-fi/fiflow/internal/overlap"
	"github.com/reactome-fi/fiflow/internal/pathway"
)

type fakeBuilder struct {
	collections []gene.Collection
	opts        network.Options
	called      bool
}

func (f *fakeBuilder) Prepare(cohorts []string, opts network.Options) ([]gene.Collection, error) {
	f.called = true
	f.opts = opts
	return f.collections, nil
}

type fakeEnricher struct {
	sharedSets    []gene.Set
	moduleCohorts []string
	byCohort      map[string][]enrichment.ModuleResult
	shared        *enrichment.Result
}

func (f *fakeEnricher) EnrichGenes(genes gene.Set) (*enrichment.Result, error) {
	return &enrichment.Result{}, nil
}

func (f *fakeEnricher) EnrichSets(sets []gene.Set) ([]*enrichment.Result, error) {
	f.sharedSets = append(f.sharedSets, sets...)
	results := make([]*enrichment.Result, len(sets))
	for i := range sets {
		results[i] = f.shared
	}
	return results, nil
}

func (f *fakeEnricher) EnrichModules(collection gene.Collection) ([]enrichment.ModuleResult, error) {
	f.moduleCohorts = append(f.moduleCohorts, collection.Cohort)
	return f.byCohort[collection.Cohort], nil
}

type diagramExport struct {
	Pathway string
	DBID    int64
	Genes   gene.Set
	OutDir  string
}

type fakeExporter struct {
	root    *pathway.Node
	exports []diagramExport
}

func (f *fakeExporter) LoadHierarchy() (*pathway.Node, error) {
	return f.root, nil
}

func (f *fakeExporter) ExportDiagram(enricher pathway.Enricher, name string, dbID int64, genes gene.Set, outDir string) (string, error) {
	f.exports = append(f.exports, diagramExport{Pathway: name, DBID: dbID, Genes: genes, OutDir: outDir})
	return pathway.DiagramFileName(name), nil
}

type fakeStore struct {
	overlapTables []*overlap.Table
	enriched      map[string]*enrichment.Result
}

func (f *fakeStore) WriteOverlap(t *overlap.Table) error {
	f.overlapTables = append(f.overlapTables, t)
	return nil
}

func (f *fakeStore) WriteEnrichment(group string, result *enrichment.Result) error {
	if f.enriched == nil {
		f.enriched = make(map[string]*enrichment.Result)
	}
	f.enriched[group] = result
	return nil
}

func mustCollection(t *testing.T, cohort string, modules []gene.Module) gene.Collection {
	t.Helper()
	c, err := gene.NewCollection(cohort, modules)
	require.NoError(t, err)
	return c
}

// testWorkflow wires fakes for a run where OV module 0 and GBM module 0
// share three genes, OV module 1 and GBM module 1 are unshared, and only
// the OV-distinct pathway has a renderable diagram.
func testWorkflow(t *testing.T) (*Workflow, *fakeBuilder, *fakeEnricher, *fakeExporter, *fakeStore, *bytes.Buffer) {
	t.Helper()

	builder := &fakeBuilder{collections: []gene.Collection{
		mustCollection(t, "OV", []gene.Module{
			{Number: 0, Genes: gene.NewSet("A", "B", "C", "D")},
			{Number: 1, Genes: gene.NewSet("X", "Y", "Z")},
		}),
		mustCollection(t, "GBM", []gene.Module{
			{Number: 0, Genes: gene.NewSet("A", "B", "C", "E")},
			{Number: 1, Genes: gene.NewSet("Q", "R", "S")},
		}),
	}}

	enricher := &fakeEnricher{
		shared: &enrichment.Result{Records: []enrichment.Record{
			{Pathway: "SharedPath", P: 0.00001, FDR: 0.0001},
		}},
		byCohort: map[string][]enrichment.ModuleResult{
			"OV": {{Module: 1, Result: &enrichment.Result{Records: []enrichment.Record{
				{Pathway: "OVPath", P: 0.0001, FDR: 0.0002, HitGenes: []string{"X", "Y"}},
				{Pathway: "CommonPath", P: 0.001, FDR: 0.0005},
				{Pathway: "WeakPath", P: 0.1, FDR: 0.5},
			}}}},
			"GBM": {{Module: 1, Result: &enrichment.Result{Records: []enrichment.Record{
				{Pathway: "GBMPath", P: 0.0003, FDR: 0.0004},
				{Pathway: "CommonPath", P: 0.002, FDR: 0.0008},
			}}}},
		},
	}

	exporter := &fakeExporter{root: &pathway.Node{Name: "TopLevel", Children: []*pathway.Node{
		{Name: "OVPath", DBID: 11, HasDiagram: true},
		{Name: "GBMPath", DBID: 22, HasDiagram: false},
		{Name: "WeakPath", DBID: 33, HasDiagram: true},
	}}}

	store := &fakeStore{}
	out := &bytes.Buffer{}

	w := New(builder, enricher, exporter)
	w.Store = store
	w.Out = out
	w.Options.Sandbox = "sandbox"
	w.Options.BackgroundGenes = 100
	return w, builder, enricher, exporter, store, out
}

func TestWorkflow_Run(t *testing.T) {
	w, builder, enricher, exporter, store, out := testWorkflow(t)

	require.NoError(t, w.Run("OV", "GBM"))

	assert.Equal(t, network.Options{
		Dir:                 "sandbox",
		MinSampleProportion: 0.01,
		MaxModuleCount:      20,
		MinModuleSize:       3,
	}, builder.opts)

	// One significant overlapping pair is printed.
	assert.Contains(t, out.String(), "OV Module\tGBM Module\tp-value\tFDR\n")
	assert.Contains(t, out.String(), "0\t0\t")

	// The shared intersection genes are enriched as one group.
	require.Len(t, enricher.sharedSets, 1)
	assert.Equal(t, []string{"A", "B", "C"}, enricher.sharedSets[0].Sorted())

	// Both cohorts' unshared modules are enriched.
	assert.ElementsMatch(t, []string{"OV", "GBM"}, enricher.moduleCohorts)

	// Only OVPath is distinct with a diagram; WeakPath fell to the
	// enrichment FDR cutoff before selection.
	require.Len(t, exporter.exports, 1)
	export := exporter.exports[0]
	assert.Equal(t, "OVPath", export.Pathway)
	assert.Equal(t, int64(11), export.DBID)
	assert.Equal(t, []string{"X", "Y"}, export.Genes.Sorted())
	assert.Equal(t, "sandbox", export.OutDir)

	// Persisted result tables.
	require.Len(t, store.overlapTables, 1)
	assert.Equal(t, 1, store.overlapTables[0].Len())
	require.Contains(t, store.enriched, "Shared 0:0")
	require.Contains(t, store.enriched, "OV 1")
	require.Contains(t, store.enriched, "GBM 1")

	// The stored module enrichment carries only records under the cutoff.
	_, hasWeak := store.enriched["OV 1"].Lookup("WeakPath")
	assert.False(t, hasWeak)
}

func TestWorkflow_Run_InvalidFormat(t *testing.T) {
	w, builder, _, _, _, _ := testWorkflow(t)
	w.Options.OverlapFormat = "csv"

	err := w.Run("OV", "GBM")
	var formatErr *overlap.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.False(t, builder.called, "the format is validated before any service work")
}

func TestWorkflow_Run_NoStore(t *testing.T) {
	w, _, _, _, _, _ := testWorkflow(t)
	w.Store = nil

	require.NoError(t, w.Run("OV", "GBM"))
}
