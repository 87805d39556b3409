// Package kylin talks to the Kylin Network market-data API.
package kylin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/GoPolymarket/kylingate/internal/pkg/logger"
	"github.com/GoPolymarket/kylingate/internal/signer"
	"resty.dev/v3"
)

const (
	DefaultBaseURL = "https://api.kylin.network"
	HeaderAPIKey   = "APIKEY"

	defaultTimeout = 10 * time.Second
	// Upstream bodies quoted in error messages are cut to this length.
	maxErrorBody = 512
)

// Client signs and sends requests to the upstream. It is safe for concurrent use.
type Client struct {
	apiKey       string
	baseURL      string
	signer       *signer.Signer
	http         *resty.Client
	now          func() time.Time
	debugSigning bool
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithClock overrides the source of the timestamp parameter.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDebugSigning logs the canonical string of every request at debug level.
func WithDebugSigning(enabled bool) Option {
	return func(c *Client) {
		c.debugSigning = enabled
	}
}

func NewClient(apiKey, apiSecret string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("kylin: api key is empty")
	}
	s, err := signer.NewSigner(apiSecret)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		signer:  s,
		http:    httpClient,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Close() error {
	return c.http.Close()
}

// SignedParams returns a copy of params carrying the timestamp and the signature over both.
func (c *Client) SignedParams(ctx context.Context, params map[string]string) map[string]string {
	signed := make(map[string]string, len(params)+2)
	maps.Copy(signed, params)
	delete(signed, signer.ParamSignature)
	signed[signer.ParamTimestamp] = strconv.FormatInt(c.now().UnixMilli(), 10)

	canonical, signature := c.signer.SignParams(signed)
	if c.debugSigning && logger.DebugEnabled(ctx) {
		logger.Debug("signing upstream request", "canonical", canonical, "secret", c.signer.Redacted())
	}
	signed[signer.ParamSignature] = signature
	return signed
}

// Invoke sends one signed call and returns the JSON text of the response's data field.
func (c *Client) Invoke(ctx context.Context, method, url string, params map[string]string) (string, error) {
	if method != http.MethodPost {
		return "", apperrors.New(apperrors.ErrInternal, fmt.Sprintf("unsupported upstream method %s", method), nil)
	}

	signed := c.SignedParams(ctx, params)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(HeaderAPIKey, c.apiKey).
		SetBody(signed).
		Post(url)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", apperrors.New(apperrors.ErrUpstreamTimeout, "upstream request timed out", err)
		}
		return "", apperrors.NewUpstream("upstream request failed", err)
	}

	body := resp.Bytes()
	if resp.StatusCode() != http.StatusOK {
		return "", apperrors.NewUpstream(
			fmt.Sprintf("upstream returned status %d: %s", resp.StatusCode(), truncate(body, maxErrorBody)), nil)
	}

	data, err := UnwrapData(body)
	if err != nil {
		return "", apperrors.NewUpstream("unexpected upstream response", err)
	}
	return data, nil
}

// UnwrapData extracts the data field of an upstream envelope as compact JSON text.
func UnwrapData(body []byte) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	raw, ok := envelope["data"]
	if !ok {
		return "", errors.New("response has no data field")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("compact data: %w", err)
	}
	return buf.String(), nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
