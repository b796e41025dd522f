// Package enrichment wraps the ReactomeFI pathway enrichment service and
// provides selection helpers over its results.
package enrichment

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/reactome-fi/fiflow/internal/gene"
	"github.com/reactome-fi/fiflow/internal/rest"
	"github.com/reactome-fi/fiflow/internal/table"
)

// Enrichment table column names.
const (
	colPathway      = "ReactomePathway"
	colPathwayRatio = "RatioOfProteinInPathway"
	colPathwayCount = "NumberOfProteinInPathway"
	colGeneSetCount = "ProteinFromGeneSet"
	colPValue       = "P-value"
	colFDR          = "FDR"
	colHitGenes     = "HitGenes"
)

// enrichmentSchema types the enrichment table response.
var enrichmentSchema = table.Schema{
	{Name: colPathway, Parse: table.ParseString},
	{Name: colPathwayRatio, Parse: table.ParseFloat},
	{Name: colPathwayCount, Parse: table.ParseInt},
	{Name: colGeneSetCount, Parse: table.ParseInt},
	{Name: colPValue, Parse: table.ParseFloat},
	{Name: colFDR, Parse: table.ParseFloat},
	{Name: colHitGenes, Parse: table.ParseCommaList},
}

// Record is the enrichment result for one pathway.
type Record struct {
	Pathway  string
	P        float64
	FDR      float64
	HitGenes []string
}

// Result is the enrichment table for one gene set, keyed by pathway name.
type Result struct {
	Records []Record
}

// Len returns the number of enriched pathways.
func (r *Result) Len() int {
	return len(r.Records)
}

// Lookup returns the record for the named pathway.
func (r *Result) Lookup(pathway string) (Record, bool) {
	for _, rec := range r.Records {
		if rec.Pathway == pathway {
			return rec, true
		}
	}
	return Record{}, false
}

// Pathways returns the enriched pathway names in table order.
func (r *Result) Pathways() []string {
	names := make([]string, len(r.Records))
	for i, rec := range r.Records {
		names[i] = rec.Pathway
	}
	return names
}

// FilterFDR returns the result restricted to records with FDR at most
// cutoff.
func (r *Result) FilterFDR(cutoff float64) *Result {
	kept := make([]Record, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.FDR <= cutoff {
			kept = append(kept, rec)
		}
	}
	return &Result{Records: kept}
}

// PrerequisiteError reports an enrichment call rejected because the
// Reactome pathway hierarchy has not been loaded into the service.
type PrerequisiteError struct {
	Err error
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("pathway enrichment unsuccessful: %v (was the Reactome pathway hierarchy loaded?)", e.Err)
}

func (e *PrerequisiteError) Unwrap() error { return e.Err }

// Client performs pathway enrichment through the ReactomeFI service.
type Client struct {
	rest   *rest.Client
	logger *zap.Logger
}

// NewClient creates an enrichment client over the given CyREST client.
func NewClient(c *rest.Client) *Client {
	return &Client{rest: c, logger: zap.NewNop()}
}

// SetLogger sets the logger for enrichment progress messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// EnrichGenes runs pathway enrichment analysis for one gene set. The
// service requires the Reactome hierarchy to be loaded; a rejected call
// surfaces as a PrerequisiteError.
func (c *Client) EnrichGenes(genes gene.Set) (*Result, error) {
	c.logger.Debug("enriching gene set", zap.Int("genes", genes.Len()))

	url := c.rest.FIURL("ReactomePathwayEnrichment")
	parsed, err := c.rest.PostRawTable(url, genes.Join(","), enrichmentSchema, colPathway)
	if err != nil {
		var status *rest.StatusError
		if errors.As(err, &status) {
			return nil, &PrerequisiteError{Err: err}
		}
		return nil, err
	}

	pathwayCol, _ := parsed.Col(colPathway)
	pCol, okP := parsed.Col(colPValue)
	fdrCol, okFDR := parsed.Col(colFDR)
	hitCol, okHits := parsed.Col(colHitGenes)
	if !okP || !okFDR {
		return nil, fmt.Errorf("enrichment response is missing the %q or %q column", colPValue, colFDR)
	}

	result := &Result{Records: make([]Record, 0, parsed.Len())}
	for _, row := range parsed.Rows {
		rec := Record{
			Pathway: row[pathwayCol].Str(),
			P:       row[pCol].Float(),
			FDR:     row[fdrCol].Float(),
		}
		if okHits {
			rec.HitGenes = row[hitCol].Strings()
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// EnrichSets enriches each gene set in order.
func (c *Client) EnrichSets(sets []gene.Set) ([]*Result, error) {
	results := make([]*Result, 0, len(sets))
	for _, s := range sets {
		r, err := c.EnrichGenes(s)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// ModuleResult pairs a module number with its enrichment result.
type ModuleResult struct {
	Module int
	Result *Result
}

// EnrichModules enriches every module of a collection in order.
func (c *Client) EnrichModules(collection gene.Collection) ([]ModuleResult, error) {
	results := make([]ModuleResult, 0, collection.Len())
	for _, m := range collection.Modules {
		r, err := c.EnrichGenes(m.Genes)
		if err != nil {
			return nil, fmt.Errorf("cohort %s module %d: %w", collection.Cohort, m.Number, err)
		}
		results = append(results, ModuleResult{Module: m.Number, Result: r})
	}
	return results, nil
}
