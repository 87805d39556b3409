package repository

import (
	"context"
	"fmt"

	"github.com/GoPolymarket/kylingate/internal/config"
	"github.com/GoPolymarket/kylingate/internal/service"
)

// NewAuditSink connects the sink selected by cfg.Sink.
func NewAuditSink(ctx context.Context, cfg config.AuditConfig) (service.AuditSink, error) {
	switch cfg.Sink {
	case config.SinkElasticsearch, "":
		sink, err := NewElasticsearchAuditSink(cfg.Host, cfg.Index, cfg.Timeout())
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.SinkRedis:
		client, err := NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return NewRedisAuditSink(client, cfg.Index, cfg.RedisListMax), nil
	case config.SinkPostgres:
		db, err := NewDB(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		sink, err := NewPostgresAuditSink(ctx, db, cfg.Index)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown audit sink %q", cfg.Sink)
	}
}
