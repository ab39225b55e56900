package sheets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/config"
)

// SheetDBClient talks to a spreadsheet-as-a-database REST proxy: one base
// URL per spreadsheet, a sheet query parameter per tab, bearer-key auth,
// and row operations addressed by column/value path segments.
type SheetDBClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewSheetDBClient(cfg *config.Config, log *zap.Logger) *SheetDBClient {
	timeout := cfg.Sheets.SheetDB.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SheetDBClient{
		BaseURL: cfg.Sheets.SheetDB.URL,
		APIKey:  cfg.Sheets.SheetDB.APIKey,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

func (c *SheetDBClient) List(ctx context.Context, collection string) ([]Record, error) {
	var rows []Record
	if err := c.doJSON(ctx, "list", http.MethodGet, c.url("", collection, nil), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *SheetDBClient) Query(ctx context.Context, collection, field, value string) ([]Record, error) {
	var rows []Record
	err := c.doJSON(ctx, "search", http.MethodGet, c.url("/search", collection, url.Values{field: {value}}), nil, &rows)
	if err == nil {
		return rows, nil
	}

	// Some proxies have no server-side search; fall back to filtering the
	// full list client-side.
	var te *TransportError
	if errors.As(err, &te) && te.Status == http.StatusNotFound {
		all, listErr := c.List(ctx, collection)
		if listErr != nil {
			return nil, listErr
		}
		out := make([]Record, 0, len(all))
		for _, r := range all {
			if r.Str(field) == value {
				out = append(out, r)
			}
		}
		return out, nil
	}
	return nil, err
}

func (c *SheetDBClient) Insert(ctx context.Context, collection string, rows []Record) (int, error) {
	var out struct {
		Created int `json:"created"`
	}
	body := map[string]any{"data": rows}
	if err := c.doJSON(ctx, "insert", http.MethodPost, c.url("", collection, nil), body, &out); err != nil {
		return 0, err
	}
	return out.Created, nil
}

func (c *SheetDBClient) Update(ctx context.Context, collection, matchField, matchValue string, patch Record) (int, error) {
	var out struct {
		Updated int `json:"updated"`
	}
	path := "/" + url.PathEscape(matchField) + "/" + url.PathEscape(matchValue)
	body := map[string]any{"data": patch}
	if err := c.doJSON(ctx, "update", http.MethodPatch, c.url(path, collection, nil), body, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

func (c *SheetDBClient) Delete(ctx context.Context, collection, matchField, matchValue string) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	path := "/" + url.PathEscape(matchField) + "/" + url.PathEscape(matchValue)
	if err := c.doJSON(ctx, "delete", http.MethodDelete, c.url(path, collection, nil), nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *SheetDBClient) url(path, collection string, extra url.Values) string {
	q := url.Values{"sheet": {collection}}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return c.BaseURL + path + "?" + q.Encode()
}

func (c *SheetDBClient) doJSON(ctx context.Context, op, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			return &FormatError{Op: op, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Logger.Error("sheetdb request failed",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return &TransportError{Op: op, Status: resp.StatusCode}
	}

	if err := sonic.Unmarshal(respBody, out); err != nil {
		return &FormatError{Op: op, Err: err}
	}
	return nil
}
