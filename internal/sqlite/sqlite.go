package sqlite

import (
	"context"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/random"
	"log/slog"
	"strings"
	"time"

	_ "embed"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
)

//go:embed schema.sql
var schemaDefinition string

type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database and creates the schema if it doesn't exist yet.
//
// File databases get two connection pools, one for read/write operations and one for read-only operations.
// This is a best practice mentioned in https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database. In-memory
// databases use a single connection for both, since the database lives only as long as its connections.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		err         error
		readWriteDB *sqlx.DB
		readDB      *sqlx.DB
	)

	commonConfig := strings.Join([]string{
		// Avoids SQLITE_BUSY errors when database is under load.
		"_busy_timeout=5000",
		// Enables foreign key constraints.
		"_foreign_keys=on",
		// Performance enhancement by storing temporary tables indices in memory instead of files.
		"_temp_store=memory",
	}, "&")

	// For parallel tests, we need to use a different database for each test to avoid sharing data.
	// See https://www.sqlite.org/inmemorydb.html.
	if strings.Contains(url, ":memory:") {
		var (
			randomID     string
			dbNameLength uint = 20
		)
		if randomID, err = random.Letters(dbNameLength); err != nil {
			return nil, errors.Wrap(err, "generate random ID")
		}
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_txlock=immediate&%s", randomID, commonConfig)
		if readWriteDB, err = sqlx.ConnectContext(ctx, "sqlite3", dsn); err != nil {
			return nil, errors.Wrap(err, "open in-memory database")
		}
		readWriteDB.SetMaxOpenConns(1)
		readWriteDB.SetMaxIdleConns(1)
		// Closing the last connection drops the database.
		readWriteDB.SetConnMaxLifetime(0)
		readWriteDB.SetConnMaxIdleTime(0)
		if _, err = readWriteDB.ExecContext(ctx, schemaDefinition); err != nil {
			return nil, errors.Wrap(err, "create schema")
		}
		readDB = readWriteDB
	} else {
		// The options prefixed with underscore '_' are SQLite pragmas documented at https://www.sqlite.org/pragma.html.
		// The options without leading underscore are SQLite URI parameters documented at https://www.sqlite.org/uri.html.
		fileConfig := commonConfig + "&_journal_mode=wal&_synchronous=normal"
		readConfig := fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s", url, fileConfig)
		readWriteConfig := fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s", url, fileConfig)

		if readWriteDB, err = sqlx.ConnectContext(ctx, "sqlite3", readWriteConfig); err != nil {
			return nil, errors.Wrap(err, "open read-write database", slog.String("url", url))
		}
		readWriteDB.SetMaxOpenConns(1)
		readWriteDB.SetMaxIdleConns(1)
		readWriteDB.SetConnMaxLifetime(time.Hour)
		readWriteDB.SetConnMaxIdleTime(time.Hour)

		// The schema must exist before the read-only pool connects.
		if _, err = readWriteDB.ExecContext(ctx, schemaDefinition); err != nil {
			return nil, errors.Wrap(err, "create schema")
		}

		if readDB, err = sqlx.ConnectContext(ctx, "sqlite3", readConfig); err != nil {
			return nil, errors.Wrap(err, "open read database", slog.String("url", url))
		}
		maxReadConns := 10
		readDB.SetMaxOpenConns(maxReadConns)
		readDB.SetMaxIdleConns(maxReadConns)
		readDB.SetConnMaxLifetime(time.Hour)
		readDB.SetConnMaxIdleTime(time.Hour)
	}

	return &Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readDB,
		logger:    logger,
	}, nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	var errs []error
	if err := db.ReadWrite.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "close read-write database"))
	}
	if db.ReadOnly != db.ReadWrite {
		if err := db.ReadOnly.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "close read database"))
		}
	}
	return errors.Join(errs...)
}
