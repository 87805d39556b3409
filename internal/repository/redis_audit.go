package repository

import (
	"context"
	"encoding/json"

	"github.com/GoPolymarket/kylingate/internal/model"
)

// RedisAuditSink pushes records onto a capped list, newest first.
type RedisAuditSink struct {
	client  *RedisClient
	listKey string
	listMax int
}

func NewRedisAuditSink(client *RedisClient, listKey string, listMax int) *RedisAuditSink {
	if listKey == "" {
		listKey = "kylin_access_tracking"
	}
	if listMax <= 0 {
		listMax = 10000
	}
	return &RedisAuditSink{
		client:  client,
		listKey: listKey,
		listMax: listMax,
	}
}

func (r *RedisAuditSink) Name() string {
	return "redis"
}

func (r *RedisAuditSink) Write(ctx context.Context, entry *model.AuditRecord) error {
	if entry == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := r.client.Client.TxPipeline()
	pipe.LPush(ctx, r.listKey, payload)
	pipe.LTrim(ctx, r.listKey, 0, int64(r.listMax-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisAuditSink) Close() error {
	return r.client.Close()
}
