package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/GoPolymarket/kylingate/internal/model"
	"resty.dev/v3"
)

// ElasticsearchAuditSink indexes each record as a new document in one index.
type ElasticsearchAuditSink struct {
	client   *resty.Client
	endpoint string
}

// NewElasticsearchAuditSink accepts host as "host:port" or a full URL.
func NewElasticsearchAuditSink(host, index string, timeout time.Duration) (*ElasticsearchAuditSink, error) {
	host = strings.TrimSpace(host)
	if host == "" || index == "" {
		return nil, fmt.Errorf("elasticsearch host and index are required")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	base, err := url.Parse(strings.TrimRight(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid elasticsearch host: %w", err)
	}

	client := resty.New().SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &ElasticsearchAuditSink{
		client:   client,
		endpoint: base.String() + "/" + url.PathEscape(index) + "/_doc",
	}, nil
}

func (s *ElasticsearchAuditSink) Name() string {
	return "elasticsearch"
}

func (s *ElasticsearchAuditSink) Endpoint() string {
	return s.endpoint
}

func (s *ElasticsearchAuditSink) Write(ctx context.Context, entry *model.AuditRecord) error {
	if entry == nil {
		return nil
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(entry).
		Post(s.endpoint)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("elasticsearch returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *ElasticsearchAuditSink) Close() error {
	return s.client.Close()
}
