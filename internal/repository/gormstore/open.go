package gormstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	defaultSQLitePath = "airops.db"
	sqliteForeignKeys = "_pragma=foreign_keys(1)"
)

// Open connects to the database named by dsn. Accepted forms are
// postgres:// or postgresql:// URLs, mysql://<go-sql-driver dsn>,
// sqlite://<path>, or a bare SQLite path. SQLite pools are capped at one
// connection so writers never see SQLITE_BUSY, and every SQLite connection
// enforces foreign keys.
func Open(ctx context.Context, dsn string) (*gorm.DB, func() error, string, error) {
	driver, target, err := ResolveDriver(dsn)
	if err != nil {
		return nil, nil, "", err
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	var db *gorm.DB
	switch driver {
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(target), cfg)
	case DriverMySQL:
		db, err = gorm.Open(mysql.Open(target), cfg)
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(target), cfg)
	default:
		return nil, nil, "", fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, "", fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, "", err
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, driver, nil
}

// ResolveDriver returns the GORM dialect for dsn and the connection string
// that dialect expects.
func ResolveDriver(dsn string) (string, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		target := strings.TrimPrefix(dsn, "mysql://")
		if target == "" {
			return "", "", fmt.Errorf("empty mysql dsn")
		}
		if !strings.Contains(target, "parseTime=") {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + "parseTime=true"
		}
		return DriverMySQL, target, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "/" {
			path = defaultSQLitePath
		}
		return resolveSQLite(path)
	}
	return resolveSQLite(dsn)
}

func resolveSQLite(dsn string) (string, string, error) {
	path, query, _ := strings.Cut(dsn, "?")
	sqlitePath, err := normalizeSQLitePath(path)
	if err != nil {
		return "", "", err
	}
	return DriverSQLite, withForeignKeys(sqlitePath, query), nil
}

// withForeignKeys turns on SQLite foreign key enforcement unless the query
// already sets that pragma.
func withForeignKeys(path, query string) string {
	if strings.Contains(query, "foreign_keys") {
		return path + "?" + query
	}
	if query == "" {
		return path + "?" + sqliteForeignKeys
	}
	return path + "?" + query + "&" + sqliteForeignKeys
}

func normalizeSQLitePath(path string) (string, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if path == ":memory:" {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(".", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create sqlite directory: %w", err)
	}
	return path, nil
}
