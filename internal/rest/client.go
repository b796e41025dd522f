// Package rest provides the CyREST client shared by the network, enrichment
// and pathway stages. URL layout follows the CyREST convention
// base[/app]/v1/segment..., with the ReactomeFI app mounted at
// reactomefiviz.
package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reactome-fi/fiflow/internal/table"
)

// DefaultBaseURL is the default CyREST endpoint.
const DefaultBaseURL = "http://localhost:1234"

// fiApp is the CyREST application name of the ReactomeFI plugin.
const fiApp = "reactomefiviz"

// Config carries the explicit client configuration. There is no
// package-level service URL; callers construct a client per endpoint.
type Config struct {
	BaseURL string
}

// Client issues requests against one CyREST endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the configured endpoint. An empty base
// URL falls back to DefaultBaseURL.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for request tracing.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// URL formats a core CyREST URL: base/v1/part1/part2...
func (c *Client) URL(parts ...string) string {
	return c.appURL("", parts)
}

// FIURL formats a ReactomeFI app URL: base/reactomefiviz/v1/part1...
func (c *Client) FIURL(parts ...string) string {
	return c.appURL(fiApp, parts)
}

func (c *Client) appURL(app string, parts []string) string {
	path := make([]string, 0, len(parts)+3)
	path = append(path, c.baseURL)
	if app != "" {
		path = append(path, app)
	}
	path = append(path, "v1")
	path = append(path, parts...)
	return strings.Join(path, "/")
}

// ConnectionError reports a transport-level failure reaching the service.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot reach the network service at %s: %v (is Cytoscape running with the ReactomeFI app?)", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx service response.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("service error %d from %s: %s", e.Status, e.URL, e.Body)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.logger.Debug("cyrest request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: req.URL.String(), Err: err}
	}
	return resp, nil
}

// Delete issues a DELETE against a core CyREST URL. A missing resource is
// not an error; only transport failures are reported.
func (c *Client) Delete(parts ...string) error {
	url := c.URL(parts...)
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// envelope is the CyREST response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// tablePayload is the tabular CyREST data object.
type tablePayload struct {
	TableHeaders []string   `json:"tableHeaders"`
	TableContent [][]string `json:"tableContent"`
}

// GetData decodes the `data` property of a GET response into out.
func (c *Client) GetData(out any, url string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.decodeData(req, out)
}

// PostData posts a JSON body and decodes the `data` property into out.
// out may be nil when the response is irrelevant.
func (c *Client) PostData(out any, url string, body any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.decodeData(req, out)
}

// PostRaw posts an unencoded text body and decodes the `data` property
// into out. The enrichment endpoint takes a comma-joined gene list rather
// than JSON.
func (c *Client) PostRaw(out any, url, body string) error {
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return err
	}
	return c.decodeData(req, out)
}

func (c *Client) decodeData(req *http.Request, out any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: req.URL.String(), Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response from %s: %w", req.URL, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data from %s: %w", req.URL, err)
	}
	return nil
}

// GetTable GETs a tabular endpoint and parses it with the schema. A
// response without data yields an empty table with the schema's columns.
func (c *Client) GetTable(url string, schema table.Schema, indexColumn string) (*table.Table, error) {
	var payload *tablePayload
	if err := c.GetData(&payload, url); err != nil {
		return nil, err
	}
	return parseTable(payload, schema, indexColumn)
}

// PostRawTable posts a text body to a tabular endpoint and parses the
// response with the schema.
func (c *Client) PostRawTable(url, body string, schema table.Schema, indexColumn string) (*table.Table, error) {
	var payload *tablePayload
	if err := c.PostRaw(&payload, url, body); err != nil {
		return nil, err
	}
	return parseTable(payload, schema, indexColumn)
}

func parseTable(payload *tablePayload, schema table.Schema, indexColumn string) (*table.Table, error) {
	if payload == nil {
		return table.Parse(nil, nil, schema, indexColumn)
	}
	return table.Parse(payload.TableHeaders, payload.TableContent, schema, indexColumn)
}
