package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLoggerConfig configures the GORM zap logger.
type GormLoggerConfig struct {
	Level     gormlogger.LogLevel
	SlowQuery time.Duration
	// Expected reports errors the caller turns into a client response, such
	// as uniqueness violations surfacing as 409. They are logged at Debug.
	Expected func(error) bool
}

// GormLogger routes GORM statements through the request-scoped zap logger.
// Bound values are never logged.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	if cfg.Level == 0 {
		cfg.Level = gormlogger.Warn
	}
	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = defaultSlowQuery
	}
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cfg := l.cfg
	cfg.Level = level
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Info, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Warn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) message(ctx context.Context, at gormlogger.LogLevel, msg string, data []any) {
	if l.cfg.Level < at {
		return
	}
	if ce := FromContext(ctx).Check(zapLevel(at), msg); ce != nil {
		ce.Write(zap.String("component", "gorm"), zap.Any("data", data))
	}
}

// Trace logs failed and slow statements. Other statements are only logged
// when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	level, ok := l.statementLevel(elapsed, err)
	if !ok {
		return
	}
	log := FromContext(ctx)
	ce := log.Check(level, "db.query")
	if ce == nil {
		return
	}

	sql, rows := fc()
	op, table := describeSQL(sql)
	fields := []zap.Field{
		zap.String("component", "gorm"),
		zap.String("operation", op),
		zap.String("table", table),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

func (l *GormLogger) statementLevel(elapsed time.Duration, err error) (zapcore.Level, bool) {
	switch {
	case err != nil && errors.Is(err, gormlogger.ErrRecordNotFound):
		return zapcore.DebugLevel, l.cfg.Level >= gormlogger.Info
	case err != nil && l.cfg.Expected != nil && l.cfg.Expected(err):
		return zapcore.DebugLevel, l.cfg.Level >= gormlogger.Error
	case err != nil:
		return zapcore.ErrorLevel, l.cfg.Level >= gormlogger.Error
	case elapsed > l.cfg.SlowQuery:
		return zapcore.WarnLevel, l.cfg.Level >= gormlogger.Warn
	default:
		return zapcore.DebugLevel, l.cfg.Level >= gormlogger.Info
	}
}

func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

func zapLevel(level gormlogger.LogLevel) zapcore.Level {
	switch level {
	case gormlogger.Error:
		return zapcore.ErrorLevel
	case gormlogger.Warn:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// describeSQL returns the statement verb and the table it targets.
func describeSQL(sql string) (string, string) {
	tokens := strings.Fields(sql)
	if len(tokens) == 0 {
		return "UNKNOWN", ""
	}
	op := strings.ToUpper(tokens[0])
	var marker string
	switch op {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(tokens) > 1 {
			return op, unquote(tokens[1])
		}
		return op, ""
	default:
		return "UNKNOWN", ""
	}
	for i := 1; i+1 < len(tokens); i++ {
		if strings.EqualFold(tokens[i], marker) {
			return op, unquote(tokens[i+1])
		}
	}
	return op, ""
}

func unquote(ident string) string {
	return strings.Trim(ident, "\"`();")
}

var _ gormlogger.Interface = (*GormLogger)(nil)
