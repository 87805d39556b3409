package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/GoPolymarket/kylingate/internal/model"
	"gorm.io/gorm"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresAuditSink inserts records into a table named after the audit index.
type PostgresAuditSink struct {
	db    *gorm.DB
	table string
}

func NewPostgresAuditSink(ctx context.Context, db *gorm.DB, table string) (*PostgresAuditSink, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid audit table name %q", table)
	}
	if err := db.WithContext(ctx).Table(table).AutoMigrate(&model.AuditRecord{}); err != nil {
		return nil, fmt.Errorf("migrate audit table: %w", err)
	}
	return &PostgresAuditSink{db: db, table: table}, nil
}

func (r *PostgresAuditSink) Name() string {
	return "postgres"
}

func (r *PostgresAuditSink) Write(ctx context.Context, entry *model.AuditRecord) error {
	if entry == nil {
		return nil
	}
	return r.db.WithContext(ctx).
		Table(r.table).
		Create(entry).Error
}

func (r *PostgresAuditSink) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
