package network

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactome-fi/fiflow/internal/maf"
	"github.com/reactome-fi/fiflow/internal/rest"
)

const testMAF = `#version 2.4
Hugo_Symbol	Tumor_Sample_Barcode
TP53	TCGA-13-0720
BRCA1	TCGA-13-0720
KRAS	TCGA-24-1103
EGFR	TCGA-25-1319
`

// fiService is a scripted CyREST double recording the build request.
type fiService struct {
	sessionCleared bool
	buildBody      map[string]any
	clusterJSON    string
}

func (s *fiService) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/session":
			s.sessionCleared = true
		case r.Method == http.MethodPost && r.URL.Path == "/reactomefiviz/v1/buildFISubNetwork":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&s.buildBody))
			fmt.Fprint(w, `{"data": null}`)
		case r.Method == http.MethodGet && r.URL.Path == "/reactomefiviz/v1/cluster":
			fmt.Fprint(w, s.clusterJSON)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})
}

func writeMAF(t *testing.T, dir, cohort string) string {
	t.Helper()
	path := filepath.Join(dir, cohort+".maf")
	require.NoError(t, os.WriteFile(path, []byte(testMAF), 0644))
	return path
}

func TestBuilder_Build_SampleCutoff(t *testing.T) {
	service := &fiService{}
	server := httptest.NewServer(service.handler(t))
	defer server.Close()

	mafFile := writeMAF(t, t.TempDir(), "A")
	b := NewBuilder(rest.NewClient(rest.Config{BaseURL: server.URL}))

	// 3 samples in the fixture; proportion 1.0 beats the absolute minimum.
	require.NoError(t, b.Build(mafFile, 2, 1.0))

	assert.True(t, service.sessionCleared, "the session must be cleared before building")
	assert.Equal(t, float64(3), service.buildBody["sampleCutoffValue"])
	assert.Equal(t, "MAF", service.buildBody["format"])
	assert.Equal(t, "2016", service.buildBody["fiVersion"])
	assert.Equal(t, true, service.buildBody["fetchFIAnnotations"])
}

func TestBuilder_Build_AbsoluteMinimumWins(t *testing.T) {
	service := &fiService{}
	server := httptest.NewServer(service.handler(t))
	defer server.Close()

	mafFile := writeMAF(t, t.TempDir(), "A")
	b := NewBuilder(rest.NewClient(rest.Config{BaseURL: server.URL}))

	require.NoError(t, b.Build(mafFile, 0, 0))
	assert.Equal(t, float64(DefaultMinSampleCount), service.buildBody["sampleCutoffValue"])
}

func TestBuilder_Cluster(t *testing.T) {
	service := &fiService{clusterJSON: `{"data": {
		"tableHeaders": ["Module", "Node List"],
		"tableContent": [
			["0", "TP53,BRCA1"],
			["1", "KRAS,EGFR,PTEN"],
			["2", ""]
		]
	}}`}
	server := httptest.NewServer(service.handler(t))
	defer server.Close()

	b := NewBuilder(rest.NewClient(rest.Config{BaseURL: server.URL}))
	collection, err := b.Cluster("OV")
	require.NoError(t, err)

	assert.Equal(t, "OV", collection.Cohort)
	// Module 2 has no genes and is dropped; the rest sort by size.
	assert.Equal(t, []int{1, 0}, collection.Numbers())
}

func TestBuilder_Cluster_EmptyResponse(t *testing.T) {
	service := &fiService{clusterJSON: `{"data": null}`}
	server := httptest.NewServer(service.handler(t))
	defer server.Close()

	b := NewBuilder(rest.NewClient(rest.Config{BaseURL: server.URL}))
	collection, err := b.Cluster("OV")
	require.NoError(t, err)
	assert.Equal(t, 0, collection.Len())
}

func TestBuilder_Prepare(t *testing.T) {
	service := &fiService{clusterJSON: `{"data": {
		"tableHeaders": ["Module", "Node List"],
		"tableContent": [
			["0", "TP53,BRCA1,KRAS"],
			["1", "EGFR,PTEN"],
			["2", "GATA3"]
		]
	}}`}
	server := httptest.NewServer(service.handler(t))
	defer server.Close()

	dir := t.TempDir()
	writeMAF(t, dir, "A")
	writeMAF(t, dir, "B")

	b := NewBuilder(rest.NewClient(rest.Config{BaseURL: server.URL}))
	collections, err := b.Prepare([]string{"A", "B"}, Options{
		Dir:            dir,
		MaxModuleCount: 2,
		MinModuleSize:  2,
	})
	require.NoError(t, err)
	require.Len(t, collections, 2)

	assert.Equal(t, "A", collections[0].Cohort)
	assert.Equal(t, "B", collections[1].Cohort)
	// Truncated to the 2 largest modules, then the size filter keeps both.
	assert.Equal(t, []int{0, 1}, collections[0].Numbers())
}

func TestBuilder_Prepare_MissingMAF(t *testing.T) {
	b := NewBuilder(rest.NewClient(rest.Config{BaseURL: "http://localhost:1"}))
	_, err := b.Prepare([]string{"A"}, Options{Dir: t.TempDir()})

	var notFound *maf.InputNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "A", notFound.Cohort)
}

func TestBuilder_Build_ServiceDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	mafFile := writeMAF(t, t.TempDir(), "A")
	b := NewBuilder(rest.NewClient(rest.Config{BaseURL: server.URL}))

	err := b.Build(mafFile, 0, 0)
	var connErr *rest.ConnectionError
	require.ErrorAs(t, err, &connErr)
}
