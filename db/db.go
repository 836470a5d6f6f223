package db

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gorm/caches/v4"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.lumeweb.com/accountd/config"
	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/db/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const maxLockRetries = 10

var ErrUnsupportedDatabase = errors.New("unsupported database type")

// NewDatabase opens the configured database and returns the context options
// that migrate it on startup and close it on exit.
func NewDatabase(ctx core.Context) (*gorm.DB, []core.ContextBuilderOption, error) {
	cfg := ctx.Config()
	rootLogger := ctx.Logger()

	db, err := Open(cfg.Config().Core.DB, cfg.ConfigDir(), rootLogger)
	if err != nil {
		return nil, nil, err
	}

	if err := UseCache(db, cfg.Config().Core.DB.Cache); err != nil {
		return nil, nil, err
	}

	ctxOpts := []core.ContextBuilderOption{
		core.ContextWithStartupFunc(func(ctx core.Context) error {
			return Migrate(db)
		}),
		core.ContextWithDB(db),
		core.ContextWithExitFunc(func(ctx core.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}),
	}

	return db, ctxOpts, nil
}

// Open connects to the database described by cfg. Relative sqlite paths are
// resolved against configDir.
func Open(cfg config.DatabaseConfig, configDir string, rootLogger *core.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case config.DatabaseTypeMySQL:
		dialector = mysql.Open(mysqlDSN(cfg))
	case config.DatabaseTypePostgres:
		dialector = postgres.Open(postgresDSN(cfg))
	case config.DatabaseTypeSQLite, "":
		dialector = sqlite.Open(sqliteDSN(cfg.File, configDir))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDatabase, cfg.Type)
	}

	if rootLogger == nil {
		rootLogger = core.NewNopLogger()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger(rootLogger.Named("db").Logger, rootLogger.Level()),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	rootLogger.Debug("database opened", zap.String("type", cfg.Type))

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.GetModels()...)
}

func mysqlDSN(cfg config.DatabaseConfig) string {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.DefaultPort()))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.Local

	if cfg.Charset != "" {
		mc.Params = map[string]string{"charset": cfg.Charset}
	}

	return mc.FormatDSN()
}

func postgresDSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Host, cfg.Username, cfg.Password, cfg.Name, cfg.DefaultPort(), sslMode)
}

func sqliteDSN(file string, configDir string) string {
	if file == "" {
		file = "accountd.db"
	}

	if file != ":memory:" && !filepath.IsAbs(file) {
		file = filepath.Join(configDir, file)
	}

	if strings.Contains(file, "?") {
		return file
	}

	return file + "?_busy_timeout=5000"
}

// UseCache installs the query cache plugin for the configured mode.
func UseCache(db *gorm.DB, cfg *config.CacheConfig) error {
	cacher, err := getCacher(cfg)
	if err != nil {
		return err
	}

	if cacher == nil {
		return nil
	}

	return db.Use(&caches.Caches{Conf: &caches.Config{
		Cacher: cacher,
	}})
}

func getCacher(cfg *config.CacheConfig) (caches.Cacher, error) {
	if cfg == nil {
		return nil, nil
	}

	switch cfg.Mode {
	case "", config.CacheModeNone:
		return nil, nil
	case config.CacheModeMemory:
		return newMemoryCacher(cfg.TTL), nil
	case config.CacheModeRedis:
		if cfg.Redis == nil {
			return nil, errors.New("redis cache requires core.db.cache.redis")
		}
		return newRedisCacher(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), cfg.TTL), nil
	default:
		return nil, fmt.Errorf("invalid cache mode: %s", cfg.Mode)
	}
}

// RetryOnLock reruns operation with jittered exponential backoff while the
// database reports lock contention, up to maxLockRetries attempts.
func RetryOnLock(db *gorm.DB, operation func(*gorm.DB) *gorm.DB) error {
	initialBackoff := 100 * time.Millisecond
	maxBackoff := 10 * time.Second

	var err error

	for attempt := 0; attempt < maxLockRetries; attempt++ {
		result := operation(db)
		if result.Error == nil {
			return nil
		}

		err = result.Error

		if !isLockError(err) {
			return err
		}

		backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))
		jitter := rand.Float64() * float64(initialBackoff)
		time.Sleep(time.Duration(math.Min(backoff+jitter, float64(maxBackoff))))
	}

	return err
}

func RetryableTransaction(ctx core.Context, db *gorm.DB, operation func(*gorm.DB) *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return RetryOnLock(tx, operation)
	})
}

// isLockError checks if the given error is a database lock error
func isLockError(err error) bool {
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "deadlock") ||
		strings.Contains(errMsg, "lock wait timeout") ||
		strings.Contains(errMsg, "database is locked") ||
		strings.Contains(errMsg, "too many connections")
}
