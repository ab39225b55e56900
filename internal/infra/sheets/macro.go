package sheets

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/config"
)

// MacroClient talks to a spreadsheet macro web endpoint speaking
// action-keyed JSON: reads are GETs with action/sheet query parameters,
// writes are POSTs with an action-keyed body. The macro answers every call
// with the same envelope.
type MacroClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewMacroClient builds a MacroClient with a bounded timeout so a stuck
// store surfaces as an error instead of hanging the dashboard.
func NewMacroClient(cfg *config.Config, log *zap.Logger) *MacroClient {
	timeout := cfg.Sheets.Macro.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MacroClient{
		BaseURL: cfg.Sheets.Macro.URL,
		Token:   cfg.Sheets.Macro.Token,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

type macroEnvelope struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Count   int      `json:"count"`
	Data    []Record `json:"data"`
}

type macroWrite struct {
	Action     string   `json:"action"`
	Sheet      string   `json:"sheet"`
	Token      string   `json:"token,omitempty"`
	Rows       []Record `json:"rows,omitempty"`
	MatchField string   `json:"match_field,omitempty"`
	MatchValue string   `json:"match_value,omitempty"`
	Patch      Record   `json:"patch,omitempty"`
}

func (c *MacroClient) List(ctx context.Context, collection string) ([]Record, error) {
	q := url.Values{"action": {"list"}, "sheet": {collection}}
	env, err := c.get(ctx, "list", q)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *MacroClient) Query(ctx context.Context, collection, field, value string) ([]Record, error) {
	q := url.Values{
		"action": {"search"},
		"sheet":  {collection},
		"field":  {field},
		"value":  {value},
	}
	env, err := c.get(ctx, "search", q)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *MacroClient) Insert(ctx context.Context, collection string, rows []Record) (int, error) {
	return c.post(ctx, macroWrite{Action: "insert", Sheet: collection, Rows: rows})
}

func (c *MacroClient) Update(ctx context.Context, collection, matchField, matchValue string, patch Record) (int, error) {
	return c.post(ctx, macroWrite{
		Action:     "update",
		Sheet:      collection,
		MatchField: matchField,
		MatchValue: matchValue,
		Patch:      patch,
	})
}

func (c *MacroClient) Delete(ctx context.Context, collection, matchField, matchValue string) (int, error) {
	return c.post(ctx, macroWrite{
		Action:     "delete",
		Sheet:      collection,
		MatchField: matchField,
		MatchValue: matchValue,
	})
}

func (c *MacroClient) get(ctx context.Context, op string, q url.Values) (*macroEnvelope, error) {
	if c.Token != "" {
		q.Set("token", c.Token)
	}
	endpoint := c.BaseURL + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return c.do(op, httpReq)
}

func (c *MacroClient) post(ctx context.Context, w macroWrite) (int, error) {
	w.Token = c.Token
	body, err := sonic.Marshal(w)
	if err != nil {
		return 0, &FormatError{Op: w.Action, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return 0, &TransportError{Op: w.Action, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	env, err := c.do(w.Action, httpReq)
	if err != nil {
		return 0, err
	}
	return env.Count, nil
}

func (c *MacroClient) do(op string, httpReq *http.Request) (*macroEnvelope, error) {
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Logger.Error("macro store request failed",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, &TransportError{Op: op, Status: resp.StatusCode}
	}

	var env macroEnvelope
	if err := sonic.Unmarshal(respBody, &env); err != nil {
		return nil, &FormatError{Op: op, Err: err}
	}
	if env.Status != "success" {
		return nil, &StoreError{Op: op, Message: env.Message}
	}
	return &env, nil
}
