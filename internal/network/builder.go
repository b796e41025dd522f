// Package network wraps the ReactomeFI network build and cluster
// operations of the CyREST control plane.
package network

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/reactome-fi/fiflow/internal/gene"
	"github.com/reactome-fi/fiflow/internal/maf"
	"github.com/reactome-fi/fiflow/internal/rest"
	"github.com/reactome-fi/fiflow/internal/table"
)

// DefaultMinSampleCount is the default absolute minimum network sample
// count cutoff.
const DefaultMinSampleCount = 2

// fiVersion is the ReactomeFI network version used for network builds.
const fiVersion = "2016"

// Cluster table column names.
const (
	colModule   = "Module"
	colNodeList = "Node List"
)

// Options tune the per-cohort network preparation.
type Options struct {
	// Dir is the directory holding <cohort>.maf files.
	Dir string
	// MinSampleCount is the absolute minimum number of samples a gene
	// must be mutated in. Zero means DefaultMinSampleCount.
	MinSampleCount int
	// MinSampleProportion is the minimum proportion of total samples.
	MinSampleProportion float64
	// MaxModuleCount truncates the clustered modules. Zero means no limit.
	MaxModuleCount int
	// MinModuleSize drops modules with fewer genes. Zero means no limit.
	MinModuleSize int
}

// Builder loads mutation data into the network service and clusters the
// displayed network into gene modules.
type Builder struct {
	client *rest.Client
	logger *zap.Logger
}

// NewBuilder creates a builder over the given CyREST client.
func NewBuilder(client *rest.Client) *Builder {
	return &Builder{client: client, logger: zap.NewNop()}
}

// SetLogger sets the logger for build and cluster progress messages.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// ClearSession clears the current Cytoscape session, if any.
func (b *Builder) ClearSession() error {
	return b.client.Delete("session")
}

// Build loads the network for the given MAF file. The sample cutoff is
// the greater of the absolute minimum and proportion * total samples.
// The current session is always cleared first, so reruns are idempotent.
func (b *Builder) Build(mafFile string, minSampleCount int, minSampleProportion float64) error {
	if minSampleCount <= 0 {
		minSampleCount = DefaultMinSampleCount
	}

	if err := b.ClearSession(); err != nil {
		return err
	}

	sampleCount, err := maf.SampleCount(mafFile)
	if err != nil {
		return fmt.Errorf("count samples in %s: %w", mafFile, err)
	}
	b.logger.Debug("counted MAF samples",
		zap.String("file", mafFile),
		zap.Int("samples", sampleCount))

	cutoff := minSampleCount
	if proportional := int(minSampleProportion * float64(sampleCount)); proportional > cutoff {
		cutoff = proportional
	}

	b.logger.Info("building the FI network",
		zap.String("file", mafFile),
		zap.Int("sampleCutoff", cutoff))

	body := map[string]any{
		"fiVersion":          fiVersion,
		"format":             "MAF",
		"file":               mafFile,
		"enteredGenes":       "",
		"chooseHomoGenes":    false,
		"userLinkers":        false,
		"showUnLinked":       false,
		"fetchFIAnnotations": true,
		"sampleCutoffValue":  cutoff,
	}
	if err := b.client.PostData(nil, b.client.FIURL("buildFISubNetwork"), body); err != nil {
		return fmt.Errorf("build network for %s: %w", mafFile, err)
	}
	b.logger.Info("the FI network is loaded", zap.String("file", mafFile))
	return nil
}

// clusterSchema types the cluster table response.
var clusterSchema = table.Schema{
	{Name: colModule, Parse: table.ParseInt},
	{Name: colNodeList, Parse: table.ParseCommaList},
}

// Cluster clusters the currently displayed network into gene modules for
// the named cohort. Modules are ordered by descending gene-set size;
// modules with no genes are dropped.
func (b *Builder) Cluster(cohort string) (gene.Collection, error) {
	b.logger.Info("clustering the FI network", zap.String("cohort", cohort))

	parsed, err := b.client.GetTable(b.client.FIURL("cluster"), clusterSchema, colModule)
	if err != nil {
		return gene.Collection{}, fmt.Errorf("cluster the %s network: %w", cohort, err)
	}

	moduleCol, _ := parsed.Col(colModule)
	nodesCol, ok := parsed.Col(colNodeList)
	if !ok {
		return gene.Collection{}, fmt.Errorf("cluster the %s network: response is missing the %q column", cohort, colNodeList)
	}

	modules := make([]gene.Module, 0, parsed.Len())
	for _, row := range parsed.Rows {
		modules = append(modules, gene.Module{
			Number: row[moduleCol].Int(),
			Genes:  gene.NewSet(row[nodesCol].Strings()...),
		})
	}

	collection, err := gene.NewCollection(cohort, modules)
	if err != nil {
		return gene.Collection{}, fmt.Errorf("cluster the %s network: %w", cohort, err)
	}
	b.logger.Info("clustered the FI network",
		zap.String("cohort", cohort),
		zap.Int("modules", collection.Len()))
	return collection, nil
}

// Prepare builds and clusters the network for each cohort in order. Each
// cohort reads <dir>/<cohort>.maf; a missing file is reported as an
// InputNotFoundError without contacting the service.
func (b *Builder) Prepare(cohorts []string, opts Options) ([]gene.Collection, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	collections := make([]gene.Collection, 0, len(cohorts))
	for _, cohort := range cohorts {
		mafFile := filepath.Join(dir, cohort+".maf")
		if _, err := os.Stat(mafFile); err != nil {
			return nil, &maf.InputNotFoundError{Cohort: cohort, Path: mafFile}
		}

		if err := b.Build(mafFile, opts.MinSampleCount, opts.MinSampleProportion); err != nil {
			return nil, fmt.Errorf("cohort %s: %w", cohort, err)
		}
		collection, err := b.Cluster(cohort)
		if err != nil {
			return nil, err
		}
		if opts.MaxModuleCount > 0 {
			collection = collection.Limit(opts.MaxModuleCount)
		}
		if opts.MinModuleSize > 0 {
			collection = collection.FilterMinSize(opts.MinModuleSize)
		}
		collections = append(collections, collection)
	}
	return collections, nil
}
