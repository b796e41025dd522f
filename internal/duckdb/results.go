package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/reactome-fi/fiflow/internal/enrichment"
	"github.com/reactome-fi/fiflow/internal/overlap"
)

// WriteOverlap batch-inserts the overlap table using the Appender API.
func (s *Store) WriteOverlap(t *overlap.Table) error {
	if t.Len() == 0 {
		return nil
	}

	appender, closeAppender, err := s.appender("module_overlap")
	if err != nil {
		return err
	}
	defer closeAppender()

	for _, r := range t.Records {
		if err := appender.AppendRow(
			t.CohortA, int32(r.ModuleA), t.CohortB, int32(r.ModuleB),
			r.Genes.Join(","), r.P, r.FDR,
		); err != nil {
			return fmt.Errorf("append overlap record: %w", err)
		}
	}

	return appender.Flush()
}

// WriteEnrichment batch-inserts one group's enrichment result.
func (s *Store) WriteEnrichment(group string, result *enrichment.Result) error {
	if result.Len() == 0 {
		return nil
	}

	appender, closeAppender, err := s.appender("pathway_enrichment")
	if err != nil {
		return err
	}
	defer closeAppender()

	for _, rec := range result.Records {
		if err := appender.AppendRow(group, rec.Pathway, rec.P, rec.FDR); err != nil {
			return fmt.Errorf("append enrichment record: %w", err)
		}
	}

	return appender.Flush()
}

// OverlapCount returns the number of persisted overlap records.
func (s *Store) OverlapCount() (int, error) {
	return s.count("module_overlap")
}

// EnrichmentCount returns the number of persisted enrichment records.
func (s *Store) EnrichmentCount() (int, error) {
	return s.count("pathway_enrichment")
}

func (s *Store) count(tableName string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM " + tableName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s rows: %w", tableName, err)
	}
	return n, nil
}

func (s *Store) appender(tableName string) (*goduckdb.Appender, func(), error) {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("get connection: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", tableName)
		return err
	}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create appender: %w", err)
	}

	closeAll := func() {
		appender.Close()
		conn.Close()
	}
	return appender, closeAll, nil
}
