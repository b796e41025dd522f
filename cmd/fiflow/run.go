package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reactome-fi/fiflow/internal/duckdb"
	"github.com/reactome-fi/fiflow/internal/enrichment"
	"github.com/reactome-fi/fiflow/internal/network"
	"github.com/reactome-fi/fiflow/internal/pathway"
	"github.com/reactome-fi/fiflow/internal/rest"
	"github.com/reactome-fi/fiflow/internal/workflow"
)

func newRunCmd() *cobra.Command {
	opts := workflow.DefaultOptions()
	var (
		serviceURL string
		resultsDB  string
	)

	cmd := &cobra.Command{
		Use:   "run <cohort> <cohort>",
		Short: "Compare two cancer cohorts' gene modules",
		Long: `Builds and clusters the FI network for each cohort from
<sandbox>/<cohort>.maf, computes the pairwise module overlap with
hypergeometric p-values and Benjamini-Hochberg FDR, partitions genes into
shared and unshared groups, enriches each group against Reactome pathways
and exports one distinct pathway diagram per cohort.`,
		Example: `  # Compare the ovarian and breast cancer cohorts
  fiflow run OV BRCA --sandbox /data/maf

  # Keep only highly significant overlaps and persist the result tables
  fiflow run OV BRCA --max-overlap-fdr 0.001 --results-db results.duckdb`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(args[0], args[1], opts, serviceURL, resultsDB)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Sandbox, "sandbox", "s", "", "directory holding MAF and diagram files (default is the working directory)")
	flags.StringVar(&serviceURL, "service-url", "", "the CyREST service url (default "+rest.DefaultBaseURL+")")
	flags.IntVar(&opts.BackgroundGenes, "background-genes", 0, "background gene population size (default is the FI network gene count)")
	flags.IntVar(&opts.MinSampleCount, "min-sample-count", 0, "absolute minimum number of mutated samples per gene")
	flags.Float64Var(&opts.MinSampleProportion, "min-sample-proportion", opts.MinSampleProportion, "minimum proportion of mutated samples per gene")
	flags.IntVar(&opts.MaxModuleCount, "max-module-count", opts.MaxModuleCount, "maximum number of cluster modules")
	flags.IntVar(&opts.MinModuleSize, "min-module-size", opts.MinModuleSize, "minimum cluster module size")
	flags.Float64Var(&opts.MaxOverlapFDR, "max-overlap-fdr", opts.MaxOverlapFDR, "overlap FDR cutoff")
	flags.Float64Var(&opts.MaxEnrichmentFDR, "max-enrichment-fdr", opts.MaxEnrichmentFDR, "enrichment FDR cutoff")
	flags.StringVar(&opts.OverlapFormat, "overlap-format", opts.OverlapFormat, "overlap table format: text or html")
	flags.StringVar(&resultsDB, "results-db", "", "persist result tables to this DuckDB file")

	return cmd
}

func runWorkflow(cohortA, cohortB string, opts workflow.Options, serviceURL, resultsDB string) error {
	if serviceURL == "" {
		serviceURL = viper.GetString("service.url")
	}
	if opts.Sandbox == "" {
		opts.Sandbox = viper.GetString("sandbox")
	}
	if opts.BackgroundGenes == 0 {
		opts.BackgroundGenes = viper.GetInt("background.genes")
	}

	client := rest.NewClient(rest.Config{BaseURL: serviceURL})
	client.SetLogger(logger)

	builder := network.NewBuilder(client)
	builder.SetLogger(logger)
	enricher := enrichment.NewClient(client)
	enricher.SetLogger(logger)
	exporter := pathway.NewClient(client)
	exporter.SetLogger(logger)

	wf := workflow.New(builder, enricher, exporter)
	wf.Options = opts
	wf.SetLogger(logger)

	if resultsDB != "" {
		store, err := duckdb.Open(resultsDB)
		if err != nil {
			return err
		}
		defer store.Close()
		wf.Store = store
	}

	return wf.Run(cohortA, cohortB)
}
