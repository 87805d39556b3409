package service

import (
	"context"
	"io"
	"time"

	"github.com/GoPolymarket/kylingate/internal/model"
	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/GoPolymarket/kylingate/internal/pkg/metrics"
)

const defaultAuditTimeout = 3 * time.Second

// AuditSink is an append-only receiver of audit records.
type AuditSink interface {
	Name() string
	Write(ctx context.Context, entry *model.AuditRecord) error
}

// CallSummary is what the dispatcher knows about a call once it has finished.
type CallSummary struct {
	RequestID     string
	CorrelationID string
	Command       string
	RequestBody   string
	ResponseBody  string
	Start         time.Time
	End           time.Time
	Err           error
}

// AuditService writes one record per dispatch, synchronously and best-effort.
type AuditService struct {
	sink    AuditSink
	timeout time.Duration
}

func NewAuditService(sink AuditSink, timeout time.Duration) *AuditService {
	if timeout <= 0 {
		timeout = defaultAuditTimeout
	}
	return &AuditService{sink: sink, timeout: timeout}
}

// Record builds the record for call and performs a single sink write bounded by the service timeout.
// The returned error is always an AUDIT_SINK_ERROR and never affects the call itself.
func (s *AuditService) Record(ctx context.Context, call CallSummary) error {
	entry := NewAuditRecord(call)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sink.Write(ctx, entry); err != nil {
		metrics.AuditWrites.WithLabelValues(s.sink.Name(), "error").Inc()
		return apperrors.New(apperrors.ErrAuditSink, "write audit record to "+s.sink.Name(), err)
	}
	metrics.AuditWrites.WithLabelValues(s.sink.Name(), "ok").Inc()
	return nil
}

func (s *AuditService) Close() error {
	if c, ok := s.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func NewAuditRecord(call CallSummary) *model.AuditRecord {
	entry := &model.AuditRecord{
		RequestID:       call.RequestID,
		CorrelationID:   call.CorrelationID,
		Command:         call.Command,
		RequestTime:     call.Start.UTC(),
		ResponseTime:    call.End.UTC(),
		LatencyMs:       call.End.Sub(call.Start).Milliseconds(),
		RequestBody:     call.RequestBody,
		ResponseContent: call.ResponseBody,
		Status:          model.AuditStatusOK,
	}
	if call.Err != nil {
		entry.Status = model.AuditStatusError
		entry.Error = call.Err.Error()
	}
	return entry
}
