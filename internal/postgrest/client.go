// Package postgrest implements the data source contract against a hosted
// PostgREST endpoint such as Supabase's REST API.
package postgrest

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

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/pqui/archstudio/internal/datasource"
)

// Options configures a Client.
type Options struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	RetryMax int
	Logger   logrus.FieldLogger
}

// Client talks to PostgREST. Reads go through retryablehttp; with the
// default RetryMax of 0 a failed read is reported without retrying.
type Client struct {
	base   *url.URL
	apiKey string
	http   *retryablehttp.Client
}

var _ datasource.Backend = (*Client)(nil)

// New builds a Client for the REST root, e.g. https://x.supabase.co/rest/v1.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse postgrest url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("postgrest url %q: scheme must be http or https", opts.BaseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.HTTPClient.Timeout = opts.Timeout
	// Hand the final response back so PostgREST's error body can be read.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Logger != nil {
		rc.Logger = leveledLogger{opts.Logger}
	} else {
		rc.Logger = nil
	}
	return &Client{base: base, apiKey: opts.APIKey, http: rc}, nil
}

// Error is a non-2xx answer from PostgREST.
type Error struct {
	Status  int
	Code    string
	Message string
	Hint    string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("postgrest: status %d", e.Status)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Hint != "" {
		msg += "; hint: " + e.Hint
	}
	return msg
}

// Query reads a collection. Expansions become embedded resources using the
// local key as the foreign key hint, e.g. author:team_members!author_id(*).
func (c *Client) Query(ctx context.Context, q datasource.Query) ([]datasource.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.collectionURL(q.Collection, encodeQuery(q)), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req.Header)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", q.Collection, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, parseError(resp.StatusCode, body)
	}

	rows := []datasource.Row{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", q.Collection, err)
	}
	return rows, nil
}

// Insert posts one row. Writes are never retried.
func (c *Client) Insert(ctx context.Context, collection string, row datasource.Row) error {
	if err := datasource.ValidateRow(collection, row); err != nil {
		return err
	}
	payload, err := json.Marshal([]datasource.Row{row})
	if err != nil {
		return fmt.Errorf("encode %s row: %w", collection, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.collectionURL(collection, nil), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.authorize(req.Header)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return parseError(resp.StatusCode, body)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.HTTPClient.CloseIdleConnections()
	return nil
}

func (c *Client) collectionURL(collection string, query url.Values) string {
	u := *c.base
	u.Path = u.Path + "/" + collection
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) authorize(h http.Header) {
	if c.apiKey == "" {
		return
	}
	h.Set("apikey", c.apiKey)
	h.Set("Authorization", "Bearer "+c.apiKey)
}

func encodeQuery(q datasource.Query) url.Values {
	v := url.Values{}
	sel := "*"
	for _, e := range q.Expand {
		sel += fmt.Sprintf(",%s:%s!%s(*)", e.As, e.Collection, e.LocalKey)
	}
	v.Set("select", sel)
	for _, f := range q.Filters {
		v.Add(f.Field, "eq."+formatValue(f.Value))
	}
	if q.Order.Field != "" {
		v.Set("order", q.Order.Field+"."+q.Order.Direction.String())
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.FormatUint(q.Limit, 10))
	}
	return v
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

func parseError(status int, body []byte) error {
	e := &Error{Status: status}
	if gjson.ValidBytes(body) {
		res := gjson.GetManyBytes(body, "code", "message", "hint")
		e.Code, e.Message, e.Hint = res[0].String(), res[1].String(), res[2].String()
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}

// leveledLogger lets retryablehttp log through logrus.
type leveledLogger struct {
	log logrus.FieldLogger
}

func (l leveledLogger) fields(kv []interface{}) logrus.FieldLogger {
	entry := l.log
	for i := 0; i+1 < len(kv); i += 2 {
		entry = entry.WithField(fmt.Sprint(kv[i]), kv[i+1])
	}
	return entry
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.fields(kv).Error(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.fields(kv).Debug(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.fields(kv).Debug(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.fields(kv).Warn(msg) }
