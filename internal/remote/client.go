package remote

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/session"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Client talks to the hosted row store over its REST interface. Every call
// is a single request; failures are returned, never retried.
type Client struct {
	baseURL string
	anonKey string
	httpc   HTTPClient
	log     *slog.Logger
	m       *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Client)

func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.m = m } }

func WithTracer(t trace.Tracer) Option { return func(c *Client) { c.tracer = t } }

func New(baseURL, anonKey string, httpc HTTPClient, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpc:   httpc,
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("horizon-crm/remote")
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// call is one row-store request. body is JSON-encoded when non-nil and the
// response decoded into out when non-nil.
type call struct {
	method string
	table  string
	op     string
	query  url.Values
	body   any
	out    any
}

func (c *Client) rest(ctx context.Context, k call) (err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "rowstore."+k.op, trace.WithAttributes(
		attribute.String("db.table", k.table),
		attribute.String("http.method", k.method),
	))
	defer func() {
		c.m.ObserveRemote(k.table, k.op, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.log.Error("row store call failed",
				slog.String("table", k.table), slog.String("op", k.op), slog.String("err", err.Error()))
		}
		span.End()
	}()

	u := c.baseURL + "/rest/v1/" + k.table
	if len(k.query) > 0 {
		u += "?" + k.query.Encode()
	}
	var headers map[string]string
	if k.method != http.MethodGet {
		headers = map[string]string{"Prefer": "return=minimal"}
	}
	return c.send(ctx, k.method, u, headers, k.body, k.out)
}

func (c *Client) send(ctx context.Context, method, u string, headers map[string]string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	bearer := session.AccessToken(ctx)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeRemote, "row store unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperr.Wrap(&StatusError{Status: resp.StatusCode, Body: string(b)},
			apperr.CodeRemote, backendMessage(b, resp.Status))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(err, apperr.CodeRemote, "decode row store response")
	}
	return nil
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string { return fmt.Sprintf("non-2xx: %d body=%s", e.Status, e.Body) }

// backendMessage pulls the human readable message out of an error body.
// The row store and the auth endpoint use different field names.
func backendMessage(body []byte, fallback string) string {
	var e struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
			if s != "" {
				return s
			}
		}
	}
	return fallback
}

func eq(v string) string { return "eq." + v }

func ownerQuery(userID string) url.Values {
	return url.Values{"user_id": {eq(userID)}}
}

func rowQuery(userID, id string) url.Values {
	return url.Values{"id": {eq(id)}, "user_id": {eq(userID)}}
}

func list[T any](ctx context.Context, c *Client, table, userID string) ([]T, error) {
	q := ownerQuery(userID)
	q.Set("select", "*")
	q.Set("order", "created_timestamp.desc")
	var rows []T
	if err := c.rest(ctx, call{method: http.MethodGet, table: table, op: "select", query: q, out: &rows}); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return rows, nil
}

func (c *Client) insert(ctx context.Context, table string, body any) error {
	if err := c.rest(ctx, call{method: http.MethodPost, table: table, op: "insert", body: body}); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (c *Client) update(ctx context.Context, table, userID, id string, patch any) error {
	if err := c.rest(ctx, call{method: http.MethodPatch, table: table, op: "update", query: rowQuery(userID, id), body: patch}); err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	return nil
}

func (c *Client) delete(ctx context.Context, table, userID, id string) error {
	if err := c.rest(ctx, call{method: http.MethodDelete, table: table, op: "delete", query: rowQuery(userID, id)}); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}
