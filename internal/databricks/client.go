// Package databricks is a minimal REST client for the two workspace APIs
// starspread needs: Unity Catalog table metadata and SQL statement execution.
// It implements the domain.SchemaFetcher and domain.PlanExecutor ports.
package databricks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"starspread/internal/domain"
)

const (
	tablesPath     = "/api/2.1/unity-catalog/tables/"
	statementsPath = "/api/2.0/sql/statements"

	// statementWaitTimeout is the synchronous wait passed to the statement
	// execution API; 50s is the maximum the API allows.
	statementWaitTimeout = "50s"
)

// Config holds client settings.
type Config struct {
	Host        string // workspace URL, e.g. https://company.cloud.databricks.com
	Token       string // personal access token
	WarehouseID string // SQL warehouse ID or HTTP path; optional
	// RequestsPerSecond caps outbound API calls. Zero means 10.
	RequestsPerSecond float64
	// HTTPClient overrides the default client (30s timeout). Used in tests.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one Databricks workspace.
type Client struct {
	host        string
	token       string
	warehouseID string
	http        *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// APIError is a non-2xx response from the workspace API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("databricks api: status %d: %s", e.Status, e.Message)
}

// New creates a workspace client.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("databricks host is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("databricks token is required")
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		host:        strings.TrimRight(cfg.Host, "/"),
		token:       cfg.Token,
		warehouseID: ExtractWarehouseID(cfg.WarehouseID),
		http:        httpClient,
		limiter:     rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		logger:      logger,
	}, nil
}

// ExtractWarehouseID accepts either a bare warehouse ID or the HTTP path form
// "/sql/1.0/warehouses/<id>" and returns the ID.
func ExtractWarehouseID(input string) string {
	if !strings.HasPrefix(input, "/sql/") && !strings.HasPrefix(input, "sql/") {
		return input
	}
	parts := strings.Split(input, "/")
	for i, p := range parts {
		if p == "warehouses" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return input
}

// tableResponse mirrors the fields of the Unity Catalog table GET response
// that matter here.
type tableResponse struct {
	Name    string `json:"name"`
	Columns []struct {
		Name     string `json:"name"`
		TypeText string `json:"type_text"`
		Nullable bool   `json:"nullable"`
	} `json:"columns"`
}

// TableColumns fetches the table's column metadata in declared order.
func (c *Client) TableColumns(ctx context.Context, ref domain.TableRef) ([]domain.ColumnMeta, error) {
	var resp tableResponse
	path := tablesPath + url.PathEscape(ref.FullName())
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch table %s: %w", ref.FullName(), err)
	}

	columns := make([]domain.ColumnMeta, len(resp.Columns))
	for i, col := range resp.Columns {
		columns[i] = domain.ColumnMeta{
			Name:     col.Name,
			TypeText: col.TypeText,
			Nullable: col.Nullable,
		}
	}
	return columns, nil
}

// statementRequest is the body for the statement execution API.
type statementRequest struct {
	Statement   string `json:"statement"`
	Catalog     string `json:"catalog,omitempty"`
	Schema      string `json:"schema,omitempty"`
	WarehouseID string `json:"warehouse_id,omitempty"`
	WaitTimeout string `json:"wait_timeout"`
}

// statementResponse mirrors the statement execution response.
type statementResponse struct {
	Status struct {
		State string `json:"state"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"status"`
	Result struct {
		DataArray [][]string `json:"data_array"`
	} `json:"result"`
}

// Explain runs EXPLAIN on the query and returns the plan text. The plan is
// the first column of each result row, newline-joined.
func (c *Client) Explain(ctx context.Context, query, catalog, schema string) (string, error) {
	req := statementRequest{
		Statement:   "EXPLAIN " + query,
		Catalog:     catalog,
		Schema:      schema,
		WarehouseID: c.warehouseID,
		WaitTimeout: statementWaitTimeout,
	}

	var resp statementResponse
	if err := c.do(ctx, http.MethodPost, statementsPath, req, &resp); err != nil {
		return "", fmt.Errorf("execute explain: %w", err)
	}

	if resp.Status.State == "FAILED" {
		msg := "unknown error"
		if resp.Status.Error != nil {
			msg = resp.Status.Error.Message
		}
		return "", fmt.Errorf("explain query failed: %s", msg)
	}

	if len(resp.Result.DataArray) == 0 {
		return "", fmt.Errorf("no explain output received")
	}

	lines := make([]string, 0, len(resp.Result.DataArray))
	for _, row := range resp.Result.DataArray {
		if len(row) > 0 {
			lines = append(lines, row[0])
		}
	}
	return strings.Join(lines, "\n"), nil
}

// do issues one API request, honoring the rate limit and decoding a JSON
// response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("databricks api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrNotFound("resource not found: %s", msg)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Ensure the ports are satisfied.
var (
	_ domain.SchemaFetcher = (*Client)(nil)
	_ domain.PlanExecutor  = (*Client)(nil)
)
