package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is returned for non-2xx gateway responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Message)
}

// Client talks to the remote data gateway over HTTP/JSON.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// New returns a Client for baseURL. Each request is bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ActivityTypes(ctx context.Context) (Catalog, error) {
	var out Catalog
	err := c.do(ctx, http.MethodGet, "/activity-types", nil, nil, &out)
	return out, err
}

func (c *Client) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	err := c.do(ctx, http.MethodGet, "/get-summary", nil, nil, &out)
	return out, err
}

// Emissions lists records for period, optionally restricted to one type.
func (c *Client) Emissions(ctx context.Context, period, activity string) (EmissionList, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	if activity != "" {
		q.Set("type", activity)
	}
	var out EmissionList
	err := c.do(ctx, http.MethodGet, "/get-emissions", q, nil, &out)
	return out, err
}

func (c *Client) Predict(ctx context.Context, days int) (Forecast, error) {
	q := url.Values{"days": {strconv.Itoa(days)}}
	var out Forecast
	err := c.do(ctx, http.MethodGet, "/predict-emissions", q, nil, &out)
	return out, err
}

func (c *Client) Recommendations(ctx context.Context) ([]Recommendation, error) {
	var out struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	err := c.do(ctx, http.MethodGet, "/get-recommendations", nil, nil, &out)
	return out.Recommendations, err
}

func (c *Client) LogEmission(ctx context.Context, e Entry) (LogResult, error) {
	var out LogResult
	err := c.do(ctx, http.MethodPost, "/log-emission", nil, e, &out)
	return out, err
}

func (c *Client) DeleteEmission(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/delete-emission/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ExportData(ctx context.Context) (Export, error) {
	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/export-data", nil, nil, &out); err != nil {
		return Export{}, err
	}
	exp := Export{Data: out.Data}
	var records []Record
	if err := json.Unmarshal(out.Data, &records); err == nil {
		exp.Records = records
	}
	return exp, nil
}

func (c *Client) Stats(ctx context.Context) (Statistics, error) {
	var out Statistics
	err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fallback
}
