package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cbi/config"
	"cbi/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connector hands out a session bound to one request. Connections go back to the pool after
// every statement or transaction, whatever the outcome.
type Connector interface {
	Conn(ctx context.Context) *gorm.DB
}

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Options selects the driver and pool behaviour.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// OptionsFromConfig maps application configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		LogLevel:        logger.Silent,
	}
}

// MemoryDSN names a private in-memory sqlite database.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(name))
}

// Open establishes the connection pool and runs migrations.
func Open(opts Options) (*DbInstance, error) {
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Driver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}

	if isSQLite(opts.Driver) {
		// one writer; an in-memory database also disappears with its last connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := runMigrations(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &DbInstance{Db: db}, nil
}

// Conn returns a fresh session scoped to ctx.
func (d *DbInstance) Conn(ctx context.Context) *gorm.DB {
	return d.Db.WithContext(ctx)
}

// Ping checks that the datastore is reachable.
func (d *DbInstance) Ping(ctx context.Context) error {
	sqlDB, err := d.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool.
func (d *DbInstance) Close() error {
	sqlDB, err := d.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(mysqlDSN(dsn)), nil
	case "sqlite", "sqlite3":
		if dsn == "" {
			dsn = "file:cbi.db"
		}
		return sqlite.Open(withQueryParam(dsn, "_foreign_keys", "on")), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func isSQLite(driver string) bool {
	d := strings.ToLower(driver)
	return d == "sqlite" || d == "sqlite3"
}

// mysqlDSN makes sure DATETIME columns come back as UTC time.Time values.
func mysqlDSN(dsn string) string {
	dsn = withQueryParam(dsn, "parseTime", "true")
	return withQueryParam(dsn, "loc", "UTC")
}

func withQueryParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Submission{},
		&models.KPI{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
