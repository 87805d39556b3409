package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/GoPolymarket/kylingate/internal/kylin"
	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/GoPolymarket/kylingate/internal/pkg/logger"
	"github.com/GoPolymarket/kylingate/internal/pkg/metrics"
	"github.com/google/uuid"
)

// Invoker performs one signed upstream call. *kylin.Client implements it.
type Invoker interface {
	Invoke(ctx context.Context, method, url string, params map[string]string) (string, error)
}

// Auditor receives a summary of every dispatch once its outcome is known.
type Auditor interface {
	Record(ctx context.Context, call CallSummary) error
}

// Dispatcher resolves logical commands to upstream calls.
type Dispatcher struct {
	client  Invoker
	baseURL string
	audit   Auditor
}

// NewDispatcher builds a dispatcher. audit may be nil to disable audit logging.
func NewDispatcher(client Invoker, baseURL string, audit Auditor) *Dispatcher {
	return &Dispatcher{client: client, baseURL: baseURL, audit: audit}
}

// Dispatch runs command name with the caller's params and returns the upstream data payload.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params map[string]string) (string, error) {
	start := time.Now()
	result, err := d.dispatch(ctx, name, params)
	end := time.Now()

	metrics.UpstreamRequests.WithLabelValues(metricCommand(name), outcome(err)).Inc()

	if d.audit != nil {
		call := CallSummary{
			RequestID:     uuid.New().String(),
			CorrelationID: RequestIDFrom(ctx),
			Command:       name,
			RequestBody:   encodeParams(params),
			ResponseBody:  result,
			Start:         start,
			End:           end,
			Err:           err,
		}
		// The audit write outlives a cancelled inbound request so failures are still recorded.
		if auditErr := d.audit.Record(context.WithoutCancel(ctx), call); auditErr != nil {
			logger.LogError(ctx, auditErr, "audit record dropped",
				"command", name, "audit_id", call.RequestID, "request_id", call.CorrelationID)
		}
	}
	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, params map[string]string) (string, error) {
	cmd, ok := kylin.Lookup(name)
	if !ok {
		return "", apperrors.NewUnknownCommand(name)
	}
	sent, err := cmd.Prepare(params)
	if err != nil {
		return "", err
	}

	start := time.Now()
	result, err := d.client.Invoke(ctx, cmd.Method, d.baseURL+cmd.Path, sent)
	metrics.UpstreamLatency.WithLabelValues(cmd.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return result, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperrors.IsValidation(err):
		return "invalid"
	case apperrors.TypeOf(err) == apperrors.ErrUpstreamTimeout:
		return "timeout"
	default:
		return "upstream_error"
	}
}

// metricCommand keeps label cardinality bounded when callers send arbitrary names.
func metricCommand(name string) string {
	if _, ok := kylin.Lookup(name); ok {
		return name
	}
	return "unknown"
}

func encodeParams(params map[string]string) string {
	if len(params) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(redactParams(params))
	if err != nil {
		return ""
	}
	return string(raw)
}

type requestIDKey struct{}

// WithRequestID attaches the inbound request id. Audit records carry it as their correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
