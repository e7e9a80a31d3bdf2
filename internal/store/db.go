// Package store persists SkillBridge records through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	// ErrNotFound is returned when a record does not exist or is not owned by the caller.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a versioned write lost a race.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// Config selects and locates the database.
type Config struct {
	Driver   string
	DSN      string
	MaxRetry time.Duration
}

// Open connects to the database, retrying with exponential backoff until
// MaxRetry elapses, and migrates the schema.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := gormConfig()

	var db *gorm.DB
	operation := func() error {
		conn, err := gorm.Open(dialector, gormCfg)
		if err != nil {
			log.Warn("database connect failed, retrying", zap.String("driver", cfg.Driver), zap.Error(err))
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			log.Warn("database ping failed, retrying", zap.String("driver", cfg.Driver), zap.Error(err))
			return err
		}
		db = conn
		return nil
	}

	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = cfg.MaxRetry
	if err := backoff.Retry(operation, backoff.WithContext(retry, ctx)); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("database ready", zap.String("driver", cfg.Driver))
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		return postgres.Open(cfg.DSN), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Resume{},
		&model.Analysis{},
		&model.AnalysisHistory{},
		&model.LearningGoal{},
		&model.ChatTurn{},
		&model.UserContext{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

func newID() string {
	return model.NewID()
}
