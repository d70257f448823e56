package recordstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	devenv "untis-scraper/dev/env"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

func init() {
	// neither driver is known to sqlx, both take ? placeholders
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	sqlx.BindDriver("libsql", sqlx.QUESTION)
}

// Config picks the database, a remote libsql database when Url is set,
// otherwise a local sqlite file.
type Config struct {
	// may start with <dev_state>, ":memory:" keeps everything in memory
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func Open(ctx context.Context, config Config) (Store, error) {
	var (
		db  *sql.DB
		err error
	)
	driver := "sqlite"
	if config.Url != "" {
		driver = "libsql"
		db, err = openLibsql(config)
	} else {
		db, err = openSqlite(config)
	}
	if err != nil {
		return Store{}, err
	}

	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return Store{db: sqlx.NewDb(db, driver)}, nil
}

func openLibsql(config Config) (*sql.DB, error) {
	dsn, err := url.Parse(config.Url)
	if err != nil {
		return nil, err
	}
	if config.AuthToken != "" {
		query := dsn.Query()
		query.Set("authToken", config.AuthToken)
		dsn.RawQuery = query.Encode()
	}
	return sql.Open("libsql", dsn.String())
}

func openSqlite(config Config) (*sql.DB, error) {
	if config.File == "" {
		return nil, fmt.Errorf("a database file was not specified")
	}
	dbpath, err := devenv.ResolvePath(config.File)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// sqlite only supports one writer at a time, with more connections
	// writes fail with SQLITE_BUSY instead of waiting
	db.SetMaxOpenConns(1)
	if dbpath != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
