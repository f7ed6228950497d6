package metadata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/client/migrations"
	"github.com/dmitrijs2005/gophtodo/internal/filex"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded migrations for the given dialect.
func RunMigrations(ctx context.Context, db *sql.DB, d Dialect) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	var gooseDialect, dir string
	switch d.Name {
	case SQLite.Name:
		gooseDialect, dir = "sqlite3", migrations.SQLiteDir
	case Postgres.Name:
		gooseDialect, dir = "postgres", migrations.PostgresDir
	default:
		return fmt.Errorf("no migrations for dialect %q", d.Name)
	}

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, dir)
}

// OpenSQLite opens (creating if needed) the local database file and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	if filex.IsPlainFile(dsn) {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases consistent and serialises writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, SQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenPostgres connects through pgx, verifies the connection and migrates.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := RunMigrations(ctx, db, Postgres); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
