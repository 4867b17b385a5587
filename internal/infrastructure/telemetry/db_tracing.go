package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls GORM span export
type DBTracingConfig struct {
	Enabled bool
	// DBName is recorded as db.name on every span
	DBName string
	// IncludeVariables puts bound values into db.statement; keep off outside development
	IncludeVariables bool
	SlowQueryThresh  time.Duration
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm plus a callback that flags slow statements on their span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.IncludeVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		markSlowQuery(tx, cfg.SlowQueryThresh, logger)
	}

	cb := db.Callback()
	registrations := []struct {
		name     string
		register func(string, func(*gorm.DB)) error
	}{
		{"create_before", cb.Create().Before("gorm:create").Register},
		{"query_before", cb.Query().Before("gorm:query").Register},
		{"update_before", cb.Update().Before("gorm:update").Register},
		{"delete_before", cb.Delete().Before("gorm:delete").Register},
		{"row_before", cb.Row().Before("gorm:row").Register},
		{"raw_before", cb.Raw().Before("gorm:raw").Register},
	}
	for _, r := range registrations {
		if err := r.register("slow_query:"+r.name, before); err != nil {
			return err
		}
	}

	afterRegistrations := []struct {
		name     string
		register func(string, func(*gorm.DB)) error
	}{
		{"create_after", cb.Create().After("gorm:create").Register},
		{"query_after", cb.Query().After("gorm:query").Register},
		{"update_after", cb.Update().After("gorm:update").Register},
		{"delete_after", cb.Delete().After("gorm:delete").Register},
		{"row_after", cb.Row().After("gorm:row").Register},
		{"raw_after", cb.Raw().After("gorm:raw").Register},
	}
	for _, r := range afterRegistrations {
		if err := r.register("slow_query:"+r.name, after); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

// markSlowQuery reports whether the statement ran past threshold
func markSlowQuery(tx *gorm.DB, threshold time.Duration, logger *zap.Logger) bool {
	ctx := tx.Statement.Context
	if ctx == nil {
		return false
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return false
	}
	elapsed := time.Since(start)
	if elapsed < threshold {
		return false
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
	)
	logger.Warn("Slow query",
		zap.String("table", tx.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.String("trace_id", span.SpanContext().TraceID().String()))
	return true
}
