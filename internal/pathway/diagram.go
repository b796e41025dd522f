package pathway

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/reactome-fi/fiflow/internal/enrichment"
	"github.com/reactome-fi/fiflow/internal/gene"
)

// Enricher re-runs pathway enrichment; exporting a diagram needs the gene
// set enriched last so the service highlights the hit genes.
type Enricher interface {
	EnrichGenes(genes gene.Set) (*enrichment.Result, error)
}

// wordSeparator splits a pathway name into its words.
var wordSeparator = regexp.MustCompile(`[^0-9A-Za-z_]+`)

// DiagramFileName derives the exported file name from a pathway name:
// non-alphanumeric separators are stripped and each remaining word is
// capitalized, e.g. "DEK Binds TFAP2 Homodimers" becomes
// "DEKBindsTFAP2Homodimers.pdf".
func DiagramFileName(pathway string) string {
	var b strings.Builder
	for _, word := range wordSeparator.Split(pathway, -1) {
		if word == "" {
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	return b.String() + ".pdf"
}

// ExportDiagram exports the pathway's diagram PDF into outDir and returns
// the file path. The genes are re-enriched first for proper diagram
// highlighting.
func (c *Client) ExportDiagram(enricher Enricher, pathway string, dbID int64, genes gene.Set, outDir string) (string, error) {
	if _, err := enricher.EnrichGenes(genes); err != nil {
		return "", fmt.Errorf("re-enrich genes for pathway %q: %w", pathway, err)
	}
	if outDir == "" {
		outDir = "."
	}

	fileName := filepath.Join(outDir, DiagramFileName(pathway))
	body := map[string]any{
		"dbId":        dbID,
		"pathwayName": pathway,
		"fileName":    fileName,
	}
	if err := c.rest.PostData(nil, c.rest.FIURL("exportPathwayDiagram"), body); err != nil {
		return "", fmt.Errorf("export pathway %q: %w", pathway, err)
	}

	c.logger.Info("exported pathway diagram",
		zap.String("pathway", pathway),
		zap.String("file", fileName))
	return fileName, nil
}
