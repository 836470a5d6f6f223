package db

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	dbLogger "gorm.io/gorm/logger"
)

var _ dbLogger.Interface = (*logger)(nil)

const slowQueryThreshold = 200 * time.Millisecond

var levels = map[dbLogger.LogLevel]zapcore.Level{
	dbLogger.Silent: zapcore.FatalLevel,
	dbLogger.Error:  zapcore.ErrorLevel,
	dbLogger.Warn:   zapcore.WarnLevel,
	dbLogger.Info:   zapcore.InfoLevel,
}

// logger bridges gorm to zap. Its own level gates gorm output on top of the
// root logger's level, which it never changes.
type logger struct {
	logger *zap.Logger
	root   *zap.AtomicLevel
	level  zapcore.Level
}

func (l logger) LogMode(level dbLogger.LogLevel) dbLogger.Interface {
	if zl, ok := levels[level]; ok {
		l.level = zl
	}

	return l
}

func (l logger) enabled(level zapcore.Level) bool {
	return level >= l.level && l.root.Enabled(level)
}

func (l logger) Info(ctx context.Context, s string, i ...interface{}) {
	if l.enabled(zapcore.InfoLevel) {
		l.logger.Info(s, interfacesToFields(i...)...)
	}
}

func (l logger) Warn(ctx context.Context, s string, i ...interface{}) {
	if l.enabled(zapcore.WarnLevel) {
		l.logger.Warn(s, interfacesToFields(i...)...)
	}
}

func (l logger) Error(ctx context.Context, s string, i ...interface{}) {
	if l.enabled(zapcore.ErrorLevel) {
		l.logger.Error(s, interfacesToFields(i...)...)
	}
}

func (l logger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.enabled(zapcore.DebugLevel):
		sql, rows := fc()
		l.logger.Debug("query failed", zap.String("sql", sql), zap.Int64("rows_affected", rows), zap.Duration("elapsed", elapsed), zap.Error(err))
	case elapsed > slowQueryThreshold && l.enabled(zapcore.WarnLevel):
		sql, rows := fc()
		l.logger.Warn("slow query", zap.String("sql", sql), zap.Int64("rows_affected", rows), zap.Duration("elapsed", elapsed))
	case l.root.Enabled(zapcore.DebugLevel) && l.level <= zapcore.InfoLevel:
		sql, rows := fc()
		l.logger.Debug("trace", zap.String("sql", sql), zap.Int64("rows_affected", rows), zap.Duration("elapsed", elapsed))
	}
}

func newLogger(zlog *zap.Logger, root *zap.AtomicLevel) *logger {
	return &logger{logger: zlog, root: root, level: zapcore.WarnLevel}
}

func interfacesToFields(i ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(i))
	for idx, v := range i {
		fields = append(fields, zap.Any(strconv.Itoa(idx), v))
	}
	return fields
}
