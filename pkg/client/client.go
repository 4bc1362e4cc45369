// Package client is the Go client for the journal API: trade CRUD, aggregate
// stats, signed upload tickets, and the direct media-host upload flow.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/fxjournal/journal-api/internal/journal"
	"github.com/fxjournal/journal-api/internal/types"
)

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// NormalizeBaseURL defaults the scheme to https and strips any trailing
// slashes.
func NormalizeBaseURL(raw string) string {
	if !schemePattern.MatchString(raw) {
		raw = "https://" + raw
	}
	for len(raw) > 0 && raw[len(raw)-1] == '/' {
		raw = raw[:len(raw)-1]
	}
	return raw
}

// Client talks to the journal API. A zero token is fine for read endpoints;
// mutating calls need Authenticate or SetToken first.
type Client struct {
	http           *resty.Client
	logger         zerolog.Logger
	mediaUploadURL string // overrides the media host URL, for tests
}

// New creates a journal API client against the given base URL.
func New(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(NormalizeBaseURL(baseURL)),
		logger: logger,
	}
}

// SetToken sets the bearer token used for authenticated endpoints.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// envelope is the server's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// apiError surfaces a non-success response as an error carrying the server's
// message when one is present.
func apiError(resp *resty.Response) error {
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err == nil {
		if env.Message != "" {
			return fmt.Errorf("%s", env.Message)
		}
		if env.Error != nil && env.Error.Message != "" {
			return fmt.Errorf("%s", env.Error.Message)
		}
	}
	return fmt.Errorf("operation failed with status %d", resp.StatusCode())
}

// decode unpacks the envelope's data into out.
func decode(resp *resty.Response, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Authenticate exchanges API credentials for a JWT and installs it on the
// client.
func (c *Client) Authenticate(ctx context.Context, apiKey, apiSecret string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"api_key": apiKey, "api_secret": apiSecret}).
		Post("/api/auth/token")
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}

	var token struct {
		Token string `json:"jwt_token"`
	}
	if err := decode(resp, &token); err != nil {
		return err
	}
	c.SetToken(token.Token)
	return nil
}

// CreateTradeRequest carries every trade field except the server-assigned
// identifier. Blank optional fields are omitted from the payload.
type CreateTradeRequest struct {
	Date           time.Time `json:"date"`
	Session        string    `json:"session"`
	Pair           string    `json:"pair"`
	TrendMain      string    `json:"trendMain"`
	TrendSecondary string    `json:"trendSecondary"`
	TFBlock        string    `json:"tfBlock"`
	TFEntry        string    `json:"tfEntry"`
	TradeType      string    `json:"tradeType"`
	Result         string    `json:"result"`
	RR             string    `json:"rr,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	ScreenshotURL  string    `json:"screenshotUrl,omitempty"`
	ScreenshotID   string    `json:"screenshotId,omitempty"`
}

// CreateTrade records a new trade and returns the created record with its
// server-assigned identifier and timestamps.
func (c *Client) CreateTrade(ctx context.Context, req CreateTradeRequest) (*types.Trade, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/trades")
	if err != nil {
		return nil, fmt.Errorf("create trade: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	var trade types.Trade
	if err := decode(resp, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// ListOptions narrows and orders the listing server-side. The zero value
// returns everything in the default order.
type ListOptions struct {
	Session   string
	Pair      string
	TradeType string
	Result    string
	From      *time.Time
	To        *time.Time
	Sort      journal.SortKey
}

// ListTrades fetches the trade collection.
func (c *Client) ListTrades(ctx context.Context, opts ListOptions) ([]types.Trade, error) {
	req := c.http.R().SetContext(ctx)
	setIfSet := func(name, value string) {
		if value != "" {
			req.SetQueryParam(name, value)
		}
	}
	setIfSet("session", opts.Session)
	setIfSet("pair", opts.Pair)
	setIfSet("trade_type", opts.TradeType)
	setIfSet("result", opts.Result)
	setIfSet("sort", string(opts.Sort))
	if opts.From != nil {
		req.SetQueryParam("from", opts.From.Format(time.RFC3339))
	}
	if opts.To != nil {
		req.SetQueryParam("to", opts.To.Format(time.RFC3339))
	}

	resp, err := req.Get("/api/trades")
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	var trades []types.Trade
	if err := decode(resp, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// GetTrade fetches a single trade by its identifier.
func (c *Client) GetTrade(ctx context.Context, tradeID string) (*types.Trade, error) {
	if tradeID == "" {
		return nil, fmt.Errorf("trade id is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Get("/api/trades/" + tradeID)
	if err != nil {
		return nil, fmt.Errorf("get trade: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	var trade types.Trade
	if err := decode(resp, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// UpdateTrade applies a partial update. The fields map may carry any subset
// of editable fields; server-owned fields are stripped server-side.
func (c *Client) UpdateTrade(ctx context.Context, tradeID string, fields map[string]interface{}) (*types.Trade, error) {
	if tradeID == "" {
		return nil, fmt.Errorf("trade id is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(fields).
		Patch("/api/trades/" + tradeID)
	if err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	var trade types.Trade
	if err := decode(resp, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// DeleteTrade removes a trade by its identifier. Resolves with no payload.
func (c *Client) DeleteTrade(ctx context.Context, tradeID string) error {
	if tradeID == "" {
		return fmt.Errorf("trade id is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/trades/" + tradeID)
	if err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// GetStats fetches the aggregate win/loss figures.
func (c *Client) GetStats(ctx context.Context) (types.StatsResponse, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/api/trades/stats")
	if err != nil {
		return types.StatsResponse{}, fmt.Errorf("get stats: %w", err)
	}
	if resp.IsError() {
		return types.StatsResponse{}, apiError(resp)
	}

	var stats types.StatsResponse
	if err := decode(resp, &stats); err != nil {
		return types.StatsResponse{}, err
	}
	return stats, nil
}

// SignatureParams selects what the upload ticket covers.
type SignatureParams struct {
	Folder     string
	PublicID   string
	Overwrite  bool
	Invalidate bool
}

// GetUploadSignature requests a signed upload ticket from the backend.
func (c *Client) GetUploadSignature(ctx context.Context, params SignatureParams) (types.SignatureResponse, error) {
	req := c.http.R().SetContext(ctx)
	if params.Folder != "" {
		req.SetQueryParam("folder", params.Folder)
	}
	if params.PublicID != "" {
		req.SetQueryParam("public_id", params.PublicID)
		req.SetQueryParam("overwrite", strconv.FormatBool(params.Overwrite))
		req.SetQueryParam("invalidate", strconv.FormatBool(params.Invalidate))
	}

	resp, err := req.Get("/api/trades/signature")
	if err != nil {
		return types.SignatureResponse{}, fmt.Errorf("get upload signature: %w", err)
	}
	if resp.IsError() {
		return types.SignatureResponse{}, apiError(resp)
	}

	var sig types.SignatureResponse
	if err := decode(resp, &sig); err != nil {
		return types.SignatureResponse{}, err
	}
	return sig, nil
}
